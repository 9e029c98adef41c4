package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndValidate(t *testing.T) {
	m, err := NewManager("secret", "auth-service", time.Hour)
	require.NoError(t, err)

	token, err := m.Sign(Claims{UserID: "u1", UID: 1001, Username: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, int64(1001), claims.UID)
	assert.Equal(t, "Alice", claims.Username)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer, _ := NewManager("one", "", time.Hour)
	verifier, _ := NewManager("two", "", time.Hour)

	token, err := issuer.Sign(Claims{UserID: "u1"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m, _ := NewManager("secret", "", -time.Minute)
	m.duration = -time.Minute

	token, err := m.Sign(Claims{UserID: "u1"})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", "", time.Hour)
	assert.Error(t, err)
}
