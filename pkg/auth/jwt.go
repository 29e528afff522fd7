package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// Ошибки разбора токена
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenInvalid   = errors.New("token validation failed")
	ErrClaimsMissing  = errors.New("token is missing identity claims")
)

// IdentityClaims - поля идентичности, которые выдает сервис пользователей
type IdentityClaims struct {
	UserID    uint   `json:"userId"`
	CompanyID uint   `json:"companyId"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService проверяет подпись токенов (HS256) и извлекает идентичность
type JWTService struct {
	secret []byte
}

// NewJWTService создает новый сервис JWT и возвращает ошибку при проблемах
func NewJWTService(secret string) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTService")
	}
	return &JWTService{secret: []byte(secret)}, nil
}

// GenerateToken подписывает токен с заданной идентичностью
func (s *JWTService) GenerateToken(identity entity.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &IdentityClaims{
		UserID:    identity.UserID,
		CompanyID: identity.CompanyID,
		Role:      identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken проверяет токен и возвращает идентичность вызывающего
func (s *JWTService) ParseToken(tokenString string) (*entity.Identity, error) {
	claims := &IdentityClaims{}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Printf("[JWT] Неожиданный метод подписи: %v", token.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}

	if _, err := jwt.ParseWithClaims(tokenString, claims, keyFunc); err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, ErrTokenMalformed
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				log.Printf("[JWT] Токен истек для пользователя ID=%d", claims.UserID)
				return nil, ErrTokenExpired
			}
		}
		log.Printf("[JWT] Ошибка при разборе токена: %v", err)
		return nil, ErrTokenInvalid
	}

	if claims.UserID == 0 || claims.CompanyID == 0 || claims.Role == "" {
		return nil, ErrClaimsMissing
	}

	return &entity.Identity{
		UserID:    claims.UserID,
		CompanyID: claims.CompanyID,
		Role:      claims.Role,
		Token:     tokenString,
	}, nil
}
