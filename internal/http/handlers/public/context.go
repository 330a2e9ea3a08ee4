package public

import (
	"github.com/gin-gonic/gin"

	handlershared "github.com/swadeshika/storefront/internal/http/handlers/shared"
	"github.com/swadeshika/storefront/internal/http/response"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondBadRequest(c *gin.Context, err error) {
	respondError(c, response.CodeBadRequest, "invalid request body", err)
}
