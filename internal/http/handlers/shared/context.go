package shared

import (
	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/http/response"
)

// GetContextUint reads a uint value set by middleware, answering the
// request with a uniform error when it is missing or malformed.
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, key+" invalid", nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, key+" invalid", nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, key+" has unexpected type", nil)
		return 0, false
	}
}

// GetContextString reads a string value set by middleware.
func GetContextString(c *gin.Context, key string) string {
	if value, ok := c.Get(key); ok {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}
