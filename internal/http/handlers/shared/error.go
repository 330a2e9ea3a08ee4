// Package shared holds helpers common to the public and admin handlers.
package shared

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/logger"
)

// RequestLog returns a logger carrying the request id when present.
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError writes an error envelope and logs the cause when given.
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}
