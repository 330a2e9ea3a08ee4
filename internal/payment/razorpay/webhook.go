package razorpay

import (
	"encoding/json"
	"fmt"
)

// EventPaymentCaptured is the only webhook event we act on.
const EventPaymentCaptured = "payment.captured"

// WebhookEvent is the subset of the webhook payload the settlement
// flow needs.
type WebhookEvent struct {
	Type           string
	GatewayOrderID string
	PaymentID      string
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes a webhook body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode webhook: %v", ErrResponseInvalid, err)
	}
	if envelope.Event == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrResponseInvalid)
	}
	return &WebhookEvent{
		Type:           envelope.Event,
		GatewayOrderID: envelope.Payload.Payment.Entity.OrderID,
		PaymentID:      envelope.Payload.Payment.Entity.ID,
	}, nil
}

// SignForCallback computes the checkout callback signature with this
// gateway's merchant secret.
func (g *Gateway) SignForCallback(gatewayOrderID, paymentID string) string {
	return SignCallback(gatewayOrderID, paymentID, g.cfg.KeySecret)
}
