package admin

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/service"
)

// SendTestEmailRequest fires a test message through the SMTP config.
type SendTestEmailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendTestEmail verifies the SMTP configuration end to end.
func (h *Handler) SendTestEmail(c *gin.Context) {
	var req SendTestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	err := h.EmailService.SendCustomEmail(req.To, req.Subject, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceDisabled):
			respondError(c, response.CodeBadRequest, "email sending disabled", nil)
		case errors.Is(err, service.ErrEmailServiceNotConfigured):
			respondError(c, response.CodeBadRequest, "email service not configured", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "recipient email invalid", nil)
		case errors.Is(err, service.ErrEmailRecipientRejected):
			respondError(c, response.CodeBadRequest, "recipient rejected by server", nil)
		default:
			respondError(c, response.CodeInternal, "test email failed", err)
		}
		return
	}

	response.Success(c, gin.H{"sent": true})
}
