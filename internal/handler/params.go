package handler

import (
	"strconv"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/labstack/echo/v4"
)

func uintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.Validation("Identificador inválido")
	}
	return uint(id), nil
}
