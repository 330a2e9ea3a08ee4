package service

import (
	"errors"
	"strings"
	"time"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/logger"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/payment"
	"github.com/swadeshika/storefront/internal/payment/razorpay"
	"github.com/swadeshika/storefront/internal/repository"

	"gorm.io/gorm"
)

// PaymentService settles gateway callbacks against orders.
type PaymentService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	cartRepo    repository.CartRepository
	gateways    *payment.Registry
	orderSvc    *OrderService
	razorpayGw  *razorpay.Gateway
}

// NewPaymentService creates a payment service. razorpayGw may be nil
// when the gateway is not configured.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	cartRepo repository.CartRepository,
	gateways *payment.Registry,
	orderSvc *OrderService,
	razorpayGw *razorpay.Gateway,
) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		cartRepo:    cartRepo,
		gateways:    gateways,
		orderSvc:    orderSvc,
		razorpayGw:  razorpayGw,
	}
}

// VerifyPaymentInput is the client-side proof of payment.
type VerifyPaymentInput struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

// VerifyPayment checks the callback signature and confirms the order.
// A duplicate callback carrying the same payment id is answered with
// success; one carrying a different payment id is rejected.
func (s *PaymentService) VerifyPayment(input VerifyPaymentInput) (*models.Order, error) {
	gatewayOrderID := strings.TrimSpace(input.GatewayOrderID)
	paymentID := strings.TrimSpace(input.PaymentID)
	signature := strings.TrimSpace(input.Signature)
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return nil, ErrPaymentVerifyFailed
	}

	var settled *models.Order
	var transitioned bool
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByGatewayOrderIDForUpdate(gatewayOrderID)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if order == nil {
			return ErrOrderNotFound
		}

		gateway, err := s.gateways.Get(order.PaymentMethod)
		if err != nil {
			return ErrPaymentMethodInvalid
		}
		if err := gateway.VerifyCallback(payment.CallbackRequest{
			GatewayOrderID: gatewayOrderID,
			PaymentID:      paymentID,
			Signature:      signature,
		}); err != nil {
			return ErrPaymentVerifyFailed
		}

		if order.Status != constants.OrderStatusPendingPayment {
			// Duplicate delivery of a callback we already settled.
			// The order may have moved on through fulfilment, so the
			// check is on the recorded payment, not on the status.
			if order.PaidAt != nil && order.PaymentID == paymentID {
				settled = order
				return nil
			}
			return ErrPaymentAlreadySettled
		}

		now := time.Now()
		updates := map[string]interface{}{
			"payment_id": paymentID,
			"updated_at": now,
		}
		if order.PaidAt == nil {
			updates["paid_at"] = now
		}
		if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusConfirmed, updates); err != nil {
			return ErrOrderUpdateFailed
		}

		paymentRepo := s.paymentRepo.WithTx(tx)
		row, err := paymentRepo.GetByGatewayOrderID(gatewayOrderID)
		if err != nil {
			return err
		}
		if row != nil {
			row.Status = constants.PaymentStatusSuccess
			row.PaymentRef = paymentID
			row.PaidAt = &now
			row.CallbackAt = &now
			if err := paymentRepo.Update(row); err != nil {
				return err
			}
		}

		order.Status = constants.OrderStatusConfirmed
		order.PaymentID = paymentID
		if order.PaidAt == nil {
			order.PaidAt = &now
		}
		order.UpdatedAt = now
		settled = order
		transitioned = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrPaymentVerifyFailed) ||
			errors.Is(err, ErrPaymentAlreadySettled) || errors.Is(err, ErrPaymentMethodInvalid) ||
			errors.Is(err, ErrOrderFetchFailed) {
			return nil, err
		}
		logger.Errorw("payment_verify_failed", "gateway_order_id", gatewayOrderID, "error", err)
		return nil, ErrOrderUpdateFailed
	}

	if transitioned {
		if settled.UserID != 0 {
			_ = s.cartRepo.ClearByUser(settled.UserID)
		}
		if s.orderSvc != nil {
			s.orderSvc.enqueueStatusEmail(settled.ID, constants.OrderStatusConfirmed)
		}
	}
	return settled, nil
}

// HandleWebhook settles a payment reported by the gateway's webhook.
// The signature covers the raw body with the webhook secret.
func (s *PaymentService) HandleWebhook(body []byte, signature string) error {
	if s.razorpayGw == nil {
		return ErrGatewayUnavailable
	}
	if err := s.razorpayGw.VerifyWebhook(body, signature); err != nil {
		return ErrPaymentVerifyFailed
	}

	event, err := razorpay.ParseWebhookEvent(body)
	if err != nil {
		return ErrPaymentVerifyFailed
	}
	if event.Type != razorpay.EventPaymentCaptured {
		return nil
	}
	if event.GatewayOrderID == "" || event.PaymentID == "" {
		return ErrPaymentVerifyFailed
	}

	// The webhook already authenticated the whole payload, so settle
	// with a freshly computed callback signature.
	_, err = s.VerifyPayment(VerifyPaymentInput{
		GatewayOrderID: event.GatewayOrderID,
		PaymentID:      event.PaymentID,
		Signature:      s.razorpayGw.SignForCallback(event.GatewayOrderID, event.PaymentID),
	})
	if errors.Is(err, ErrPaymentAlreadySettled) {
		return nil
	}
	return err
}

// GetPaymentByOrder returns the latest payment attempt for an order.
func (s *PaymentService) GetPaymentByOrder(orderID uint) (*models.Payment, error) {
	row, err := s.paymentRepo.GetLatestByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrPaymentNotFound
	}
	return row, nil
}
