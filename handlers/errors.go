package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/storage"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

var errorCases = []ErrorCase{
	{Err: models.ErrInvalidID, Status: http.StatusBadRequest, Message: "Invalid ID format"},
	{Err: models.ErrImageNotFound, Status: http.StatusNotFound, Message: "Image not found in property"},
	{Err: models.ErrNotFound, Status: http.StatusNotFound, Message: "Resource not found"},
	{Err: models.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid email or password"},
	{Err: models.ErrAccountLocked, Status: http.StatusLocked, Message: "Account is temporarily locked due to too many failed login attempts. Please try again later."},
	{Err: models.ErrAccountInactive, Status: http.StatusUnauthorized, Message: "Account is deactivated. Please contact support."},
	{Err: models.ErrTokenRevoked, Status: http.StatusUnauthorized, Message: "Token has been revoked"},
	{Err: models.ErrUnauthorized, Status: http.StatusUnauthorized, Message: "Access denied. Invalid token."},
	{Err: models.ErrForbidden, Status: http.StatusForbidden, Message: "Access denied. Admin privileges required."},
	{Err: storage.ErrInvalidImage, Status: http.StatusBadRequest, Message: "Invalid file type. Only image files are allowed."},
}

const serverErrorMessage = "Server error"

// ResolveError turns any handler error into a status and envelope.
func ResolveError(err error) (int, models.Response) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, models.Fail(verr.Message, verr.Fields)
	}

	for _, cs := range errorCases {
		if errors.Is(err, cs.Err) {
			return cs.Status, models.Fail(cs.Message, nil)
		}
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		msg := http.StatusText(herr.Code)
		if m, ok := herr.Message.(string); ok && m != "" {
			msg = m
		} else if herr.Message != nil {
			msg = fmt.Sprint(herr.Message)
		}
		return herr.Code, models.Fail(msg, nil)
	}

	return http.StatusInternalServerError, models.Fail(serverErrorMessage, nil)
}

// NewHTTPErrorHandler logs server-side failures and writes the shared envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := ResolveError(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}

func notFound(message string) error {
	return echo.NewHTTPError(http.StatusNotFound, message)
}
