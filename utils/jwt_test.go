package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner("secret", 7*24*time.Hour)
	id := primitive.NewObjectID()

	token, issued, err := signer.GenerateJWT(id, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := signer.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenSigner_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signer := NewTokenSigner("secret", time.Hour).WithClock(func() time.Time { return issuedAt })
	token, _, err := signer.GenerateJWT(primitive.NewObjectID(), "user")
	require.NoError(t, err)

	signer.WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	_, err = signer.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	token, _, err := NewTokenSigner("one", time.Hour).GenerateJWT(primitive.NewObjectID(), "user")
	require.NoError(t, err)

	_, err = NewTokenSigner("two", time.Hour).ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenSigner("one", time.Hour).ValidateJWT("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_MissingSecret(t *testing.T) {
	_, _, err := NewTokenSigner("", time.Hour).GenerateJWT(primitive.NewObjectID(), "user")
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.Error(t, CheckPassword(hash, "hunter23"))
}
