package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/utils"
)

const (
	currentUserKey = "current_user"
	tokenClaimsKey = "token_claims"
)

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *utils.JWTClaims, error)
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
			}

			user, claims, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			setIdentity(c, user, claims)
			return next(c)
		}
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous or badly authenticated requests through untouched.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c.Request()); ok {
				user, claims, err := auth.Authenticate(c.Request().Context(), token)
				if err == nil {
					setIdentity(c, user, claims)
				} else if !isAuthFailure(err) {
					return err
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return models.ErrUnauthorized
			}
			if !user.IsAdmin() {
				return models.ErrForbidden
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(currentUserKey).(*models.User)
	return user
}

func TokenClaims(c echo.Context) *utils.JWTClaims {
	claims, _ := c.Get(tokenClaimsKey).(*utils.JWTClaims)
	return claims
}

// IsAdmin is false for anonymous callers.
func IsAdmin(c echo.Context) bool {
	user := CurrentUser(c)
	return user != nil && user.IsAdmin()
}

func setIdentity(c echo.Context, user *models.User, claims *utils.JWTClaims) {
	c.Set(currentUserKey, user)
	c.Set(tokenClaimsKey, claims)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func isAuthFailure(err error) bool {
	return errors.Is(err, models.ErrUnauthorized) ||
		errors.Is(err, models.ErrTokenRevoked) ||
		errors.Is(err, models.ErrAccountInactive)
}
