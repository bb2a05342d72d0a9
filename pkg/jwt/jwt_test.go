package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", "stocksy", time.Hour)
	userID := uuid.New()

	token, err := m.Generate(userID, "alice@example.com", "v1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "v1", claims.TokenVersion)
	assert.Equal(t, "stocksy", claims.Issuer)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", "stocksy", time.Hour).Generate(uuid.New(), "a@b.com", "v1")
	require.NoError(t, err)

	_, err = NewManager("secret-b", "stocksy", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", "stocksy", -time.Minute)
	token, err := m.Generate(uuid.New(), "a@b.com", "v1")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", "stocksy", time.Hour)
	_, err := m.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
