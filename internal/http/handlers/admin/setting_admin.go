package admin

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/http/response"
)

// Keys the settings endpoints accept. Everything else lives in config.
var updatableSettingKeys = map[string]bool{
	"free_shipping_threshold": true,
	"flat_shipping_rate":      true,
	"tax_percent":             true,
	"tax_on_discounted":       true,
	"payment_expire_minutes":  true,
	"currency":                true,
}

// GetStoreSettings returns the effective store settings.
func (h *Handler) GetStoreSettings(c *gin.Context) {
	settings, err := h.SettingService.GetStoreSettings(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}

	response.Success(c, gin.H{
		"free_shipping_threshold": settings.FreeShippingThreshold,
		"flat_shipping_rate":      settings.FlatShippingRate,
		"tax_percent":             settings.TaxPercent,
		"tax_on_discounted":       settings.TaxOnDiscounted,
		"currency":                settings.Currency,
		"payment_expire_minutes":  settings.PaymentExpireMinutes,
	})
}

// UpdateSettingRequest sets one store setting.
type UpdateSettingRequest struct {
	Key   string      `json:"key" binding:"required"`
	Value interface{} `json:"value" binding:"required"`
}

// UpdateSetting upserts one store setting override.
func (h *Handler) UpdateSetting(c *gin.Context) {
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	key := strings.ToLower(strings.TrimSpace(req.Key))
	if !updatableSettingKeys[key] {
		respondError(c, response.CodeBadRequest, "setting key unknown", nil)
		return
	}

	if err := h.SettingService.Update(c.Request.Context(), key, req.Value); err != nil {
		respondError(c, response.CodeInternal, "setting update failed", err)
		return
	}

	response.Success(c, gin.H{"updated": true})
}
