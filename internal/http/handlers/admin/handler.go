// Package admin serves the back-office APIs.
package admin

import (
	"github.com/gin-gonic/gin"

	handlershared "github.com/swadeshika/storefront/internal/http/handlers/shared"
	"github.com/swadeshika/storefront/internal/provider"
)

// Handler is the entry point for all admin endpoints.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
