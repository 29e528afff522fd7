package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam создает middleware для извлечения и валидации числового параметра URL.
// paramName - имя параметра в URL (например, "id").
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
// Ноль отклоняется: идентификаторы в БД начинаются с 1.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			return
		}
		c.Set(contextKey, uint(id))
		c.Next()
	}
}

// GetUintParam читает значение, сохраненное ExtractUintParam
func GetUintParam(c *gin.Context, contextKey string) (uint, bool) {
	value, exists := c.Get(contextKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
