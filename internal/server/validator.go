package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/go-playground/validator/v10"
)

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	validate := validator.New()

	// report wire names (json/form/query tags), not Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	return &requestValidator{validate: validate}
}

func (v *requestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return apperr.Validation(fmt.Sprintf("Campo '%s' inválido (%s)", first.Field(), first.Tag()))
	}

	return apperr.Validation("Datos de entrada inválidos")
}
