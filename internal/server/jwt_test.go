package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-tracker/internal/config"
)

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
		ExpirationHours: expirationHours,
		Issuer:          "candidate-tracker",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken("priya")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "priya", claims.Recruiter)
	assert.Equal(t, "priya", claims.Subject)
	assert.Equal(t, "candidate-tracker", claims.Issuer)
	assert.Equal(t, "priya", claims.GetRecruiter())
}

func TestJWTService_GenerateToken_RequiresRecruiter(t *testing.T) {
	_, err := setupTestJWTService(t, 24).GenerateToken("")
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := service.GenerateToken("priya")
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := setupTestJWTService(t, 24).GenerateToken("priya")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "a-different-secret-entirely", ExpirationHours: 24, Issuer: "candidate-tracker"})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_ValidateToken_WrongIssuer(t *testing.T) {
	service := setupTestJWTService(t, 24)
	token, err := NewJWTService(&config.JWTConfig{
		Secret:          service.config.Secret,
		ExpirationHours: 24,
		Issuer:          "someone-else",
	}).GenerateToken("priya")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	service := setupTestJWTService(t, 24)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Recruiter: "priya"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestJWTService(t, 24)

	_, err := service.ValidateToken("")
	assert.Error(t, err)

	_, err = service.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed token")
}
