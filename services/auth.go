package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/utils"
)

const (
	DefaultMaxLoginAttempts = 5
	DefaultLockDuration     = 2 * time.Hour
	MinPasswordLength       = 6
)

// UserStore is the persistence the auth flows need. IncrementLoginAttempts
// must be atomic and return the post-increment value.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	IncrementLoginAttempts(ctx context.Context, id primitive.ObjectID) (int, error)
	Lock(ctx context.Context, id primitive.ObjectID, until time.Time) error
	ResetLoginAttempts(ctx context.Context, id primitive.ObjectID) error
	RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// TokenDenylist remembers logged-out token ids until they expire.
type TokenDenylist interface {
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthOptions struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
}

type AuthService struct {
	users    UserStore
	signer   *utils.TokenSigner
	denylist TokenDenylist
	opts     AuthOptions
	now      func() time.Time
	log      zerolog.Logger
}

func NewAuthService(users UserStore, signer *utils.TokenSigner, denylist TokenDenylist, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.MaxLoginAttempts <= 0 {
		opts.MaxLoginAttempts = DefaultMaxLoginAttempts
	}
	if opts.LockDuration <= 0 {
		opts.LockDuration = DefaultLockDuration
	}
	return &AuthService{
		users:    users,
		signer:   signer,
		denylist: denylist,
		opts:     opts,
		now:      time.Now,
		log:      log.With().Str("service", "auth").Logger(),
	}
}

// WithClock overrides the service clock, used in tests.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Login checks are ordered: unknown user, lock, inactive, password. A locked
// account is refused even when the password is right.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	if user.IsLocked(now) {
		s.log.Warn().Str("user_id", user.ID.Hex()).Time("lock_until", *user.LockUntil).Msg("login refused, account locked")
		return nil, models.ErrAccountLocked
	}

	if !user.IsActive {
		return nil, models.ErrAccountInactive
	}

	if user.LockLapsed(now) {
		if err := s.users.ResetLoginAttempts(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	if err := utils.CheckPassword(user.Password, password); err != nil {
		return nil, s.recordFailure(ctx, user, now)
	}

	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLogin = &now

	token, _, err := s.signer.GenerateJWT(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.Hex()).Msg("login succeeded")
	return &models.LoginResponse{Token: token, User: user.View()}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, user *models.User, now time.Time) error {
	attempts, err := s.users.IncrementLoginAttempts(ctx, user.ID)
	if err != nil {
		return err
	}
	if attempts >= s.opts.MaxLoginAttempts {
		if err := s.users.Lock(ctx, user.ID, now.Add(s.opts.LockDuration)); err != nil {
			return err
		}
		s.log.Warn().Str("user_id", user.ID.Hex()).Int("attempts", attempts).Msg("account locked after failed logins")
	}
	return models.ErrInvalidCredentials
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *utils.JWTClaims, error) {
	claims, err := s.signer.ValidateJWT(token)
	if err != nil {
		return nil, nil, models.ErrUnauthorized
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Error().Err(err).Msg("token denylist lookup failed")
		} else if revoked {
			return nil, nil, models.ErrTokenRevoked
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, models.ErrAccountInactive
	}
	return user, claims, nil
}

// Logout denies the token for the rest of its lifetime. Without a denylist
// it is a no-op.
func (s *AuthService) Logout(ctx context.Context, claims *utils.JWTClaims) error {
	if s.denylist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.denylist.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req models.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return models.BadRequest("Current password and new password are required")
	}
	if len(strings.TrimSpace(req.NewPassword)) < MinPasswordLength {
		return models.NewValidationError([]models.FieldError{{
			Field:   "newPassword",
			Message: fmt.Sprintf("New password must be at least %d characters long", MinPasswordLength),
		}})
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := utils.CheckPassword(user.Password, req.CurrentPassword); err != nil {
		return models.BadRequest("Current password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID.Hex()).Msg("password changed")
	return nil
}
