package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/wasmrev/internal/mixer"
	"github.com/samcharles93/wasmrev/internal/recovery"
	"github.com/samcharles93/wasmrev/pkg/wasmscan"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// ResponseError is the body of every non-2xx response.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Index   *int   `json:"index,omitempty"`
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}

// writeRecoveryError maps scanner, driver and inverter failures to statuses.
func writeRecoveryError(c *echo.Context, err error) error {
	var ie *mixer.InversionError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, wasmscan.ErrTooLarge):
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", err.Error())
	case errors.Is(err, wasmscan.ErrFormat):
		return writeError(c, http.StatusBadRequest, "format_error", err.Error())
	case errors.Is(err, recovery.ErrInsufficientData):
		return writeError(c, http.StatusBadRequest, "insufficient_data", err.Error())
	case errors.As(err, &ie):
		idx := ie.Index
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error": ResponseError{
				Message: err.Error(),
				Type:    "inversion_error",
				Index:   &idx,
			},
		})
	case errors.Is(err, mixer.ErrInversion):
		return writeError(c, http.StatusUnprocessableEntity, "inversion_error", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}
