package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GlobalErrorHandler renders errors as the JSON body Restless clients expect
func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"message": ve.Error(), "title": "validation error"})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"message": msg})
			return
		}

		var ce *ConfigError
		if errors.As(err, &ce) {
			slog.Error("Configuration error", "error", err, "path", c.Path())
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"message": ce.Message, "title": "configuration error"})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"message": "internal server error"})
	}
}
