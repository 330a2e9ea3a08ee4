package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/payment"
	"github.com/swadeshika/storefront/internal/payment/cod"
	"github.com/swadeshika/storefront/internal/payment/razorpay"
	"github.com/swadeshika/storefront/internal/repository"

	"gorm.io/gorm"
)

const (
	testKeySecret     = "test-key-secret"
	testWebhookSecret = "test-webhook-secret"
)

func setupPaymentServiceTest(t *testing.T) (*PaymentService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t, "payment_service_"+t.Name(),
		&models.Order{}, &models.OrderItem{}, &models.Payment{},
		&models.ProductVariant{}, &models.Coupon{}, &models.CouponUsage{},
		&models.CartItem{}, &models.Address{},
	)
	models.DB = db

	gateway, err := razorpay.New(razorpay.Config{
		KeyID:         "rzp_test_key",
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
	})
	if err != nil {
		t.Fatalf("razorpay gateway failed: %v", err)
	}

	svc := NewPaymentService(
		repository.NewOrderRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewCartRepository(db),
		payment.NewRegistry(cod.New(), gateway),
		nil,
		gateway,
	)
	return svc, db
}

func seedPendingOrder(t *testing.T, db *gorm.DB, gatewayOrderID string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:           "SW" + gatewayOrderID,
		UserID:            1,
		Status:            constants.OrderStatusPendingPayment,
		Currency:          "INR",
		TotalAmount:       money(t, "500.00"),
		PaymentMethod:     constants.PaymentMethodRazorpay,
		GatewayOrderID:    gatewayOrderID,
		ShippingAddressID: 1,
		BillingAddressID:  1,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	row := &models.Payment{
		OrderID:        order.ID,
		Method:         constants.PaymentMethodRazorpay,
		Amount:         order.TotalAmount,
		Currency:       "INR",
		Status:         constants.PaymentStatusInitiated,
		GatewayOrderID: gatewayOrderID,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed payment row failed: %v", err)
	}
	return order
}

func TestVerifyPaymentSettlesOrder(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	seedPendingOrder(t, db, "order_A1")

	settled, err := svc.VerifyPayment(VerifyPaymentInput{
		GatewayOrderID: "order_A1",
		PaymentID:      "pay_001",
		Signature:      razorpay.SignCallback("order_A1", "pay_001", testKeySecret),
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if settled.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want confirmed got %s", settled.Status)
	}
	if settled.PaymentID != "pay_001" {
		t.Fatalf("payment id want pay_001 got %q", settled.PaymentID)
	}
	if settled.PaidAt == nil {
		t.Fatalf("paid_at not stamped")
	}

	var row models.Payment
	if err := db.Where("gateway_order_id = ?", "order_A1").First(&row).Error; err != nil {
		t.Fatalf("load payment row failed: %v", err)
	}
	if row.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment row status want success got %s", row.Status)
	}
	if row.PaymentRef != "pay_001" {
		t.Fatalf("payment ref want pay_001 got %q", row.PaymentRef)
	}
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order := seedPendingOrder(t, db, "order_B1")

	_, err := svc.VerifyPayment(VerifyPaymentInput{
		GatewayOrderID: "order_B1",
		PaymentID:      "pay_002",
		Signature:      razorpay.SignCallback("order_B1", "pay_002", "wrong-secret"),
	})
	if !errors.Is(err, ErrPaymentVerifyFailed) {
		t.Fatalf("bad signature want ErrPaymentVerifyFailed got %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusPendingPayment {
		t.Fatalf("order must stay pending, got %s", reloaded.Status)
	}
}

func TestVerifyPaymentMissingParams(t *testing.T) {
	svc, _ := setupPaymentServiceTest(t)
	if _, err := svc.VerifyPayment(VerifyPaymentInput{}); !errors.Is(err, ErrPaymentVerifyFailed) {
		t.Fatalf("empty input want ErrPaymentVerifyFailed got %v", err)
	}
}

func TestVerifyPaymentUnknownGatewayOrder(t *testing.T) {
	svc, _ := setupPaymentServiceTest(t)
	_, err := svc.VerifyPayment(VerifyPaymentInput{
		GatewayOrderID: "order_missing",
		PaymentID:      "pay_003",
		Signature:      razorpay.SignCallback("order_missing", "pay_003", testKeySecret),
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("unknown gateway order want ErrOrderNotFound got %v", err)
	}
}

func TestVerifyPaymentDuplicateCallbacks(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	seedPendingOrder(t, db, "order_C1")

	first := VerifyPaymentInput{
		GatewayOrderID: "order_C1",
		PaymentID:      "pay_004",
		Signature:      razorpay.SignCallback("order_C1", "pay_004", testKeySecret),
	}
	if _, err := svc.VerifyPayment(first); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}

	// Replay with the same payment id succeeds idempotently.
	settled, err := svc.VerifyPayment(first)
	if err != nil {
		t.Fatalf("duplicate verify failed: %v", err)
	}
	if settled.Status != constants.OrderStatusConfirmed {
		t.Fatalf("duplicate verify status want confirmed got %s", settled.Status)
	}

	// A valid signature carrying a different payment id is rejected.
	_, err = svc.VerifyPayment(VerifyPaymentInput{
		GatewayOrderID: "order_C1",
		PaymentID:      "pay_005",
		Signature:      razorpay.SignCallback("order_C1", "pay_005", testKeySecret),
	})
	if !errors.Is(err, ErrPaymentAlreadySettled) {
		t.Fatalf("second payment id want ErrPaymentAlreadySettled got %v", err)
	}
}

func TestVerifyPaymentDuplicateAfterFulfilment(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order := seedPendingOrder(t, db, "order_G1")

	input := VerifyPaymentInput{
		GatewayOrderID: "order_G1",
		PaymentID:      "pay_009",
		Signature:      razorpay.SignCallback("order_G1", "pay_009", testKeySecret),
	}
	if _, err := svc.VerifyPayment(input); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}

	// Fulfilment moves the order on before the gateway retries the callback.
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", constants.OrderStatusProcessing).Error; err != nil {
		t.Fatalf("advance order failed: %v", err)
	}

	settled, err := svc.VerifyPayment(input)
	if err != nil {
		t.Fatalf("replay after fulfilment failed: %v", err)
	}
	if settled.Status != constants.OrderStatusProcessing {
		t.Fatalf("replay must not rewind fulfilment, got %s", settled.Status)
	}
	if settled.PaymentID != "pay_009" {
		t.Fatalf("payment id want pay_009 got %q", settled.PaymentID)
	}

	// A different payment id against the settled order is still rejected.
	_, err = svc.VerifyPayment(VerifyPaymentInput{
		GatewayOrderID: "order_G1",
		PaymentID:      "pay_010",
		Signature:      razorpay.SignCallback("order_G1", "pay_010", testKeySecret),
	})
	if !errors.Is(err, ErrPaymentAlreadySettled) {
		t.Fatalf("mismatched payment id want ErrPaymentAlreadySettled got %v", err)
	}
}

func signWebhookBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBody(event, gatewayOrderID, paymentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":%q,"payload":{"payment":{"entity":{"id":%q,"order_id":%q,"status":"captured"}}}}`,
		event, paymentID, gatewayOrderID,
	))
}

func TestHandleWebhookSettlesCapturedPayment(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order := seedPendingOrder(t, db, "order_D1")

	body := webhookBody("payment.captured", "order_D1", "pay_006")
	if err := svc.HandleWebhook(body, signWebhookBody(body)); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusConfirmed {
		t.Fatalf("webhook should confirm order, got %s", reloaded.Status)
	}

	// Redelivery of the same webhook is acknowledged without error.
	if err := svc.HandleWebhook(body, signWebhookBody(body)); err != nil {
		t.Fatalf("webhook redelivery failed: %v", err)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	seedPendingOrder(t, db, "order_E1")

	body := webhookBody("payment.captured", "order_E1", "pay_007")
	if err := svc.HandleWebhook(body, "deadbeef"); !errors.Is(err, ErrPaymentVerifyFailed) {
		t.Fatalf("bad webhook signature want ErrPaymentVerifyFailed got %v", err)
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order := seedPendingOrder(t, db, "order_F1")

	body := webhookBody("payment.failed", "order_F1", "pay_008")
	if err := svc.HandleWebhook(body, signWebhookBody(body)); err != nil {
		t.Fatalf("non-captured event should be acknowledged, got %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusPendingPayment {
		t.Fatalf("order must stay pending after ignored event, got %s", reloaded.Status)
	}
}
