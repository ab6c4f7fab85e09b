package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidToken = errors.New("invalid token")

type JWTClaims struct {
	UserID primitive.ObjectID `json:"id"`
	Role   string             `json:"role"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies the bearer tokens handed out at login.
type TokenSigner struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenSigner(secret string, expiry time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// WithClock overrides the signer clock, used in tests.
func (s *TokenSigner) WithClock(clock func() time.Time) *TokenSigner {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *TokenSigner) GenerateJWT(userID primitive.ObjectID, role string) (string, *JWTClaims, error) {
	if len(s.secret) == 0 {
		return "", nil, errors.New("JWT secret not set")
	}

	now := s.now()
	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, claims, nil
}

func (s *TokenSigner) ValidateJWT(tokenString string) (*JWTClaims, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("JWT secret not set")
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
