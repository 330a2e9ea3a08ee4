package service

import (
	"strings"
	"sync"
	"time"

	"github.com/swadeshika/storefront/internal/config"
	"github.com/swadeshika/storefront/internal/constants"

	"github.com/mojocn/base64Captcha"
)

// CaptchaVerifyPayload is the client's captcha answer.
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge is a generated image captcha.
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService guards abuse-prone endpoints with image captchas.
// Scene toggles decide which endpoints require one.
type CaptchaService struct {
	cfg config.CaptchaConfig

	mu         sync.Mutex
	imageStore base64Captcha.Store
}

// NewCaptchaService creates a captcha service.
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{cfg: cfg}
}

// RequiredForScene reports whether the scene demands a captcha.
func (s *CaptchaService) RequiredForScene(scene string) bool {
	if strings.TrimSpace(s.cfg.Provider) == "" || s.cfg.Provider == "none" {
		return false
	}
	switch scene {
	case constants.CaptchaSceneGuestCreateOrder:
		return s.cfg.Scenes.GuestCreateOrder
	default:
		return false
	}
}

// GenerateImageChallenge creates a new image captcha.
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	driver := base64Captcha.NewDriverString(
		s.imageHeight(),
		s.imageWidth(),
		s.cfg.Image.NoiseCount,
		s.cfg.Image.ShowLine,
		s.imageLength(),
		"0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, s.ensureStore())
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{CaptchaID: id, ImageBase64: b64s}, nil
}

// Verify checks the captcha answer for a scene. Scenes without a
// captcha requirement always pass.
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	if !s.RequiredForScene(scene) {
		return nil
	}
	id := strings.TrimSpace(payload.CaptchaID)
	code := strings.TrimSpace(payload.CaptchaCode)
	if id == "" || code == "" {
		return ErrCaptchaRequired
	}
	if !s.ensureStore().Verify(id, code, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) ensureStore() base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imageStore == nil {
		maxStore := s.cfg.Image.MaxStore
		if maxStore <= 0 {
			maxStore = base64Captcha.GCLimitNumber
		}
		expire := time.Duration(s.cfg.Image.ExpireSeconds) * time.Second
		if expire <= 0 {
			expire = 5 * time.Minute
		}
		s.imageStore = base64Captcha.NewMemoryStore(maxStore, expire)
	}
	return s.imageStore
}

func (s *CaptchaService) imageHeight() int {
	if s.cfg.Image.Height > 0 {
		return s.cfg.Image.Height
	}
	return 60
}

func (s *CaptchaService) imageWidth() int {
	if s.cfg.Image.Width > 0 {
		return s.cfg.Image.Width
	}
	return 200
}

func (s *CaptchaService) imageLength() int {
	if s.cfg.Image.Length > 0 {
		return s.cfg.Image.Length
	}
	return 5
}
