// Package razorpay settles prepaid orders through the Razorpay Orders
// API. Checkout callbacks are authenticated with an HMAC-SHA256
// signature over "gatewayOrderId|paymentId"; webhooks sign the raw
// body with a separate secret.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/payment"
)

var (
	ErrConfigInvalid    = errors.New("razorpay config invalid")
	ErrRequestFailed    = errors.New("razorpay request failed")
	ErrResponseInvalid  = errors.New("razorpay response invalid")
	ErrMissingParam     = errors.New("razorpay callback param missing")
	ErrInvalidSignature = errors.New("razorpay signature invalid")
)

const defaultBaseURL = "https://api.razorpay.com"

// Config holds the merchant credentials.
type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

// Gateway implements payment.Gateway against the Razorpay REST API.
type Gateway struct {
	cfg    Config
	client *http.Client
}

// New builds a gateway from config.
func New(cfg Config) (*Gateway, error) {
	if strings.TrimSpace(cfg.KeyID) == "" {
		return nil, fmt.Errorf("%w: key_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, fmt.Errorf("%w: key_secret is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Method returns the method name.
func (g *Gateway) Method() string {
	return constants.PaymentMethodRazorpay
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateIntent opens a gateway order. The amount is sent in the minor
// unit (paise).
func (g *Gateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   req.Amount.Paise(),
		Currency: req.Currency,
		Receipt:  req.OrderNo,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal order: %v", ErrRequestFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrResponseInvalid, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var gatewayOrder createOrderResponse
	if err := json.Unmarshal(respBody, &gatewayOrder); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrResponseInvalid, err)
	}
	if gatewayOrder.ID == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrResponseInvalid)
	}

	raw := map[string]interface{}{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		raw = map[string]interface{}{"id": gatewayOrder.ID}
	}

	return &payment.Intent{
		GatewayOrderID: gatewayOrder.ID,
		Method:         g.Method(),
		KeyID:          g.cfg.KeyID,
		Raw:            raw,
	}, nil
}

// VerifyCallback checks the checkout callback signature. The signature
// is HMAC-SHA256 over "gatewayOrderId|paymentId" keyed with the
// merchant secret, hex encoded, compared in constant time.
func (g *Gateway) VerifyCallback(req payment.CallbackRequest) error {
	if req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return ErrMissingParam
	}
	expected := SignCallback(req.GatewayOrderID, req.PaymentID, g.cfg.KeySecret)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyWebhook checks the X-Razorpay-Signature header against the raw
// webhook body using the webhook secret.
func (g *Gateway) VerifyWebhook(body []byte, signature string) error {
	if strings.TrimSpace(signature) == "" {
		return ErrMissingParam
	}
	if strings.TrimSpace(g.cfg.WebhookSecret) == "" {
		return fmt.Errorf("%w: webhook_secret is required", ErrConfigInvalid)
	}
	mac := hmac.New(sha256.New, []byte(g.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// SignCallback computes the checkout callback signature.
func SignCallback(gatewayOrderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
