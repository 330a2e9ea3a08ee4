package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/payment"
)

func testGateway(t *testing.T, baseURL string) *Gateway {
	t.Helper()
	gw, err := New(Config{
		KeyID:         "rzp_test_key",
		KeySecret:     "key-secret",
		WebhookSecret: "webhook-secret",
		BaseURL:       baseURL,
	})
	if err != nil {
		t.Fatalf("new gateway failed: %v", err)
	}
	return gw
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Config{KeySecret: "x"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing key id want ErrConfigInvalid got %v", err)
	}
	if _, err := New(Config{KeyID: "x"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing key secret want ErrConfigInvalid got %v", err)
	}
}

func TestVerifyCallbackSignature(t *testing.T) {
	gw := testGateway(t, "")

	signature := SignCallback("order_123", "pay_456", "key-secret")
	if err := gw.VerifyCallback(payment.CallbackRequest{
		GatewayOrderID: "order_123",
		PaymentID:      "pay_456",
		Signature:      signature,
	}); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	if err := gw.VerifyCallback(payment.CallbackRequest{
		GatewayOrderID: "order_123",
		PaymentID:      "pay_456",
		Signature:      SignCallback("order_123", "pay_456", "other-secret"),
	}); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("forged signature want ErrInvalidSignature got %v", err)
	}

	// Signature computed over a different payment id must not verify.
	if err := gw.VerifyCallback(payment.CallbackRequest{
		GatewayOrderID: "order_123",
		PaymentID:      "pay_789",
		Signature:      signature,
	}); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("replayed signature want ErrInvalidSignature got %v", err)
	}

	if err := gw.VerifyCallback(payment.CallbackRequest{}); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("empty callback want ErrMissingParam got %v", err)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	gw := testGateway(t, "")
	body := []byte(`{"event":"payment.captured"}`)

	mac := hmac.New(sha256.New, []byte("webhook-secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	if err := gw.VerifyWebhook(body, signature); err != nil {
		t.Fatalf("valid webhook signature rejected: %v", err)
	}
	if err := gw.VerifyWebhook(body, "deadbeef"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("forged webhook signature want ErrInvalidSignature got %v", err)
	}
	if err := gw.VerifyWebhook(body, ""); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("blank webhook signature want ErrMissingParam got %v", err)
	}
}

func TestParseWebhookEvent(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_9","order_id":"order_9","status":"captured"}}}}`)
	event, err := ParseWebhookEvent(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if event.Type != EventPaymentCaptured {
		t.Fatalf("event type want payment.captured got %s", event.Type)
	}
	if event.GatewayOrderID != "order_9" || event.PaymentID != "pay_9" {
		t.Fatalf("event ids unexpected: %+v", event)
	}

	if _, err := ParseWebhookEvent([]byte(`{}`)); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("missing event want ErrResponseInvalid got %v", err)
	}
	if _, err := ParseWebhookEvent([]byte(`not-json`)); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("bad json want ErrResponseInvalid got %v", err)
	}
}

func TestCreateIntentSendsMinorUnitAmount(t *testing.T) {
	var received createOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("path want /v1/orders got %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "key-secret" {
			t.Errorf("basic auth not forwarded")
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"id":"order_srv","amount":63664,"currency":"INR","status":"created"}`)); err != nil {
			t.Errorf("write response failed: %v", err)
		}
	}))
	defer server.Close()

	gw := testGateway(t, server.URL)
	amount, err := models.NewMoneyFromString("636.64")
	if err != nil {
		t.Fatalf("parse amount failed: %v", err)
	}
	intent, err := gw.CreateIntent(context.Background(), payment.IntentRequest{
		OrderNo:  "SW123",
		Amount:   amount,
		Currency: "INR",
		Notes:    map[string]string{"order_no": "SW123"},
	})
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}
	if received.Amount != 63664 {
		t.Fatalf("amount want 63664 paise got %d", received.Amount)
	}
	if received.Receipt != "SW123" {
		t.Fatalf("receipt want SW123 got %s", received.Receipt)
	}
	if intent.GatewayOrderID != "order_srv" {
		t.Fatalf("gateway order id want order_srv got %s", intent.GatewayOrderID)
	}
	if intent.Synchronous {
		t.Fatalf("razorpay intent must not be synchronous")
	}
	if intent.KeyID != "rzp_test_key" {
		t.Fatalf("key id not exposed to client, got %q", intent.KeyID)
	}
}

func TestCreateIntentRejectsGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		if _, err := w.Write([]byte(`{"error":{"description":"amount too small"}}`)); err != nil {
			t.Errorf("write response failed: %v", err)
		}
	}))
	defer server.Close()

	gw := testGateway(t, server.URL)
	amount, err := models.NewMoneyFromString("0.50")
	if err != nil {
		t.Fatalf("parse amount failed: %v", err)
	}
	if _, err := gw.CreateIntent(context.Background(), payment.IntentRequest{
		OrderNo: "SW124", Amount: amount, Currency: "INR",
	}); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("gateway error want ErrRequestFailed got %v", err)
	}
}
