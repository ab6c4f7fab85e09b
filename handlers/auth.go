package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wisdomairey/real-estate-listings-app/middleware"
	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/utils"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Logout(ctx context.Context, claims *utils.JWTClaims) error
	ChangePassword(ctx context.Context, userID primitive.ObjectID, req models.ChangePasswordRequest) error
}

type AuthController struct {
	auth AuthService
	log  zerolog.Logger
}

func NewAuthController(auth AuthService, log zerolog.Logger) *AuthController {
	return &AuthController{auth: auth, log: log.With().Str("handler", "auth").Logger()}
}

type userBody struct {
	User interface{} `json:"user"`
}

type tokenUser struct {
	ID       string          `json:"id"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	FullName string          `json:"fullName"`
}

func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return models.BadRequest("Invalid request body")
	}
	req.Email = models.NormalizeEmail(req.Email)
	if err := c.Validate(req); err != nil {
		return err
	}

	resp, err := ac.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK("Login successful", resp))
}

func (ac *AuthController) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return notFound("User not found")
	}
	return c.JSON(http.StatusOK, models.OK("", userBody{User: user.View()}))
}

// Logout always succeeds for an authenticated caller; a denylist failure
// only means the token stays usable until it expires.
func (ac *AuthController) Logout(c echo.Context) error {
	if err := ac.auth.Logout(c.Request().Context(), middleware.TokenClaims(c)); err != nil {
		ac.log.Warn().Err(err).Msg("token revocation failed")
	}
	return c.JSON(http.StatusOK, models.OK("Logout successful. Please remove the token from client storage.", nil))
}

func (ac *AuthController) Verify(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return models.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, models.OK("Token is valid", userBody{User: tokenUser{
		ID:       user.ID.Hex(),
		Email:    user.Email,
		Role:     user.Role,
		FullName: user.FullName(),
	}}))
}

func (ac *AuthController) ChangePassword(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return models.ErrUnauthorized
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return models.BadRequest("Invalid request body")
	}
	if err := ac.auth.ChangePassword(c.Request().Context(), user.ID, req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK("Password changed successfully", nil))
}
