package server

import (
	"net/http"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// newHTTPErrorHandler renders every error as the {"detail", "success"}
// envelope the frontend expects. Internal causes stay in the logs.
func newHTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := "Error interno del servidor"

		if e, ok := apperr.As(err); ok {
			status = e.HTTPStatus()
			detail = e.Message
		} else if httpErr, ok := err.(*echo.HTTPError); ok {
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				detail = msg
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, map[string]interface{}{
				"detail":  detail,
				"success": false,
			})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("could not write error response")
		}
	}
}
