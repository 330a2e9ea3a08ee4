package public

import (
	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/http/response"
)

// GetCaptcha issues an image challenge for captcha-guarded scenes.
func (h *Handler) GetCaptcha(c *gin.Context) {
	if !h.CaptchaService.RequiredForScene(constants.CaptchaSceneGuestCreateOrder) {
		response.Success(c, gin.H{"required": false})
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generation failed", err)
		return
	}

	response.Success(c, gin.H{
		"required":     true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
