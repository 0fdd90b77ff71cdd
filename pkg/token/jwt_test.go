package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", 1)
	tok, err := m.GenerateToken("sid-1", 42, "student")
	require.NoError(t, err)

	claims, err := m.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewJWTManager("secret", 1).GenerateToken("sid", 1, "admin")
	require.NoError(t, err)

	_, err = NewJWTManager("other", 1).VerifyToken(tok)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", 1)
	issued := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }
	tok, err := m.GenerateToken("sid", 1, "admin")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.VerifyToken(tok)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSessionID(t *testing.T) {
	m := NewJWTManager("secret", 1)
	tok, err := m.GenerateToken("", 1, "admin")
	require.NoError(t, err)

	_, err = m.VerifyToken(tok)
	assert.Error(t, err)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	m := NewJWTManager("secret", 1)
	raw := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{SessionID: "sid"})
	tok, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.VerifyToken(tok)
	assert.Error(t, err)
}
