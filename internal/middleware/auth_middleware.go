package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/pkg/auth"
)

// IdentityContextKey - ключ, под которым в контексте Gin хранится entity.Identity
const IdentityContextKey = "identity"

// TokenParser извлекает идентичность из bearer-токена
type TokenParser interface {
	ParseToken(tokenString string) (*entity.Identity, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	parser TokenParser
}

// NewAuthMiddleware создает middleware поверх парсера токенов
func NewAuthMiddleware(parser TokenParser) *AuthMiddleware {
	return &AuthMiddleware{parser: parser}
}

// RequireAuth проверяет заголовок Authorization и кладет Identity в контекст
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		// Проверяем формат заголовка Bearer {token}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		identity, err := m.parser.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			errorType := "token_invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errorType = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errorType})
			return
		}

		c.Set(IdentityContextKey, *identity)
		c.Next()
	}
}

// RequireRole пропускает только вызывающих с одной из перечисленных ролей
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		log.Printf("[AuthMiddleware] Отказано в доступе: user=%d role=%s path=%s", identity.UserID, identity.Role, c.FullPath())
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	}
}

// GetIdentity возвращает идентичность, установленную RequireAuth
func GetIdentity(c *gin.Context) (entity.Identity, bool) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return entity.Identity{}, false
	}
	identity, ok := value.(entity.Identity)
	return identity, ok
}
