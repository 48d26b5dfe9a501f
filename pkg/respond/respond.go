// Package respond implements the API response envelope shared by every
// endpoint: {success, message, data?, error?}.
package respond

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func Err(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message, Error: message})
}

// unique_violation
const pgUniqueViolation = "23505"

// StatusFor maps a service error to an HTTP status code. Conflicts map
// to 400 rather than 409: clients treat every rejected write the same
// way and key off the envelope message.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindDependency:
		return http.StatusInternalServerError
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func messageFor(err error, status int) string {
	if msg := apperr.MessageOf(err); msg != "" {
		return msg
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return "record not found"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return "duplicate record"
	}
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// ErrorHandler returns an echo HTTPErrorHandler that renders every error
// through the envelope. Unclassified errors are logged and surfaced as a
// generic 500 so internals never leak to clients.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := StatusFor(err)
		message := messageFor(err, status)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, Envelope{Success: false, Message: message, Error: message})
	}
}
