// Package public serves the storefront, guest and customer APIs.
package public

import "github.com/swadeshika/storefront/internal/provider"

// Handler is the entry point for all public endpoints.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
