package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

func TestJWTService_RoundTripIdentity(t *testing.T) {
	// Arrange
	svc, err := NewJWTService("test-secret")
	require.NoError(t, err)
	identity := entity.Identity{UserID: 7, CompanyID: 10, Role: entity.RoleEmployee}

	token, err := svc.GenerateToken(identity, time.Hour)
	require.NoError(t, err)

	// Act
	parsed, err := svc.ParseToken(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(7), parsed.UserID)
	assert.Equal(t, uint(10), parsed.CompanyID)
	assert.Equal(t, entity.RoleEmployee, parsed.Role)
	assert.Equal(t, token, parsed.Token, "Исходный токен нужен для вызова справочника")
}

func TestJWTService_ParseToken_Expired(t *testing.T) {
	svc, _ := NewJWTService("test-secret")
	token, err := svc.GenerateToken(entity.Identity{UserID: 1, CompanyID: 1, Role: entity.RoleAdmin}, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)

	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestJWTService_ParseToken_WrongSecret(t *testing.T) {
	issuer, _ := NewJWTService("other-secret")
	token, _ := issuer.GenerateToken(entity.Identity{UserID: 1, CompanyID: 1, Role: entity.RoleAdmin}, time.Hour)
	svc, _ := NewJWTService("test-secret")

	_, err := svc.ParseToken(token)

	assert.True(t, errors.Is(err, ErrTokenInvalid))
}

func TestJWTService_ParseToken_Malformed(t *testing.T) {
	svc, _ := NewJWTService("test-secret")

	_, err := svc.ParseToken("not-a-token")

	assert.True(t, errors.Is(err, ErrTokenMalformed))
}

func TestJWTService_ParseToken_MissingCompany(t *testing.T) {
	svc, _ := NewJWTService("test-secret")
	claims := &IdentityClaims{
		UserID: 1,
		Role:   entity.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ParseToken(token)

	assert.True(t, errors.Is(err, ErrClaimsMissing))
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService("")
	assert.Error(t, err)
}
