package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/logger"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/payment"
	"github.com/swadeshika/storefront/internal/queue"
	"github.com/swadeshika/storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService owns the settlement flow: it turns cart lines into a
// priced, persisted order and drives the status machine afterwards.
type OrderService struct {
	orderRepo       repository.OrderRepository
	variantRepo     repository.ProductVariantRepository
	couponRepo      repository.CouponRepository
	couponUsageRepo repository.CouponUsageRepository
	cartRepo        repository.CartRepository
	paymentRepo     repository.PaymentRepository
	addressService  *AddressService
	couponService   *CouponService
	settingService  *SettingService
	pricing         *PricingEngine
	gateways        *payment.Registry
	queueClient     *queue.Client
}

// NewOrderService creates an order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	variantRepo repository.ProductVariantRepository,
	couponRepo repository.CouponRepository,
	couponUsageRepo repository.CouponUsageRepository,
	cartRepo repository.CartRepository,
	paymentRepo repository.PaymentRepository,
	addressService *AddressService,
	couponService *CouponService,
	settingService *SettingService,
	gateways *payment.Registry,
	queueClient *queue.Client,
) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		variantRepo:     variantRepo,
		couponRepo:      couponRepo,
		couponUsageRepo: couponUsageRepo,
		cartRepo:        cartRepo,
		paymentRepo:     paymentRepo,
		addressService:  addressService,
		couponService:   couponService,
		settingService:  settingService,
		pricing:         NewPricingEngine(),
		gateways:        gateways,
		queueClient:     queueClient,
	}
}

// CreateOrderItem is one requested line.
type CreateOrderItem struct {
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderInput creates an order for a signed-in user.
type CreateOrderInput struct {
	UserID          uint
	Items           []CreateOrderItem
	CouponCode      string
	PaymentMethod   string
	ShippingAddress AddressInput
	BillingAddress  *AddressInput
	Remark          string
	ClientIP        string
}

// CreateGuestOrderInput creates an order for a guest identified by
// email only.
type CreateGuestOrderInput struct {
	Email           string
	Items           []CreateOrderItem
	CouponCode      string
	PaymentMethod   string
	ShippingAddress AddressInput
	BillingAddress  *AddressInput
	Remark          string
	ClientIP        string
}

type orderCreateParams struct {
	UserID          uint
	GuestEmail      string
	Items           []CreateOrderItem
	CouponCode      string
	PaymentMethod   string
	ShippingAddress AddressInput
	BillingAddress  *AddressInput
	Remark          string
	ClientIP        string
	IsGuest         bool
}

// OrderResult is the created order plus what the client needs to pay.
type OrderResult struct {
	Order  *models.Order   `json:"order"`
	Intent *payment.Intent `json:"payment_intent,omitempty"`
}

// OrderPreview is the settlement quote without persistence.
type OrderPreview struct {
	Quote Quote              `json:"quote"`
	Items []OrderPreviewItem `json:"items"`
}

// OrderPreviewItem is one quoted line.
type OrderPreviewItem struct {
	VariantID      uint         `json:"variant_id"`
	ProductID      uint         `json:"product_id"`
	Title          string       `json:"title"`
	SKU            string       `json:"sku"`
	UnitPrice      models.Money `json:"unit_price"`
	Quantity       int          `json:"quantity"`
	TotalPrice     models.Money `json:"total_price"`
	CouponDiscount models.Money `json:"coupon_discount"`
}

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPendingPayment: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusReturned: true,
	},
	constants.OrderStatusReturned: {
		constants.OrderStatusRefunded: true,
	},
}

func isTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// CreateOrder creates an order for a signed-in user.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidOrderItem
	}
	return s.createOrder(ctx, orderCreateParams{
		UserID:          input.UserID,
		Items:           input.Items,
		CouponCode:      input.CouponCode,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		Remark:          input.Remark,
		ClientIP:        input.ClientIP,
	})
}

// CreateGuestOrder creates an order for a guest buyer.
func (s *OrderService) CreateGuestOrder(ctx context.Context, input CreateGuestOrderInput) (*OrderResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrGuestEmailRequired
	}
	return s.createOrder(ctx, orderCreateParams{
		GuestEmail:      email,
		Items:           input.Items,
		CouponCode:      input.CouponCode,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		Remark:          input.Remark,
		ClientIP:        input.ClientIP,
		IsGuest:         true,
	})
}

// PreviewOrder quotes an order without persisting anything.
func (s *OrderService) PreviewOrder(ctx context.Context, input CreateOrderInput) (*OrderPreview, error) {
	build, err := s.buildOrder(ctx, orderCreateParams{
		UserID:     input.UserID,
		Items:      input.Items,
		CouponCode: input.CouponCode,
	})
	if err != nil {
		return nil, err
	}
	items := make([]OrderPreviewItem, 0, len(build.Items))
	for _, item := range build.Items {
		items = append(items, OrderPreviewItem{
			VariantID:      item.VariantID,
			ProductID:      item.ProductID,
			Title:          item.Title,
			SKU:            item.SKU,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			TotalPrice:     item.TotalPrice,
			CouponDiscount: item.CouponDiscount,
		})
	}
	return &OrderPreview{Quote: build.Quote, Items: items}, nil
}

type orderBuildResult struct {
	Lines    []PriceLine
	Items    []models.OrderItem
	Quote    Quote
	Coupon   *models.Coupon
	Settings StoreSettings
}

func (s *OrderService) buildOrder(ctx context.Context, input orderCreateParams) (*orderBuildResult, error) {
	items, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrInvalidOrderItem
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariantID)
	}
	variants, err := s.variantRepo.ListByIDs(ids)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	variantByID := make(map[uint]*models.ProductVariant, len(variants))
	for i := range variants {
		variantByID[variants[i].ID] = &variants[i]
	}

	lines := make([]PriceLine, 0, len(items))
	for _, item := range items {
		variant := variantByID[item.VariantID]
		if variant == nil || !variant.IsActive {
			return nil, ErrProductNotAvailable
		}
		if variant.Product == nil || variant.Product.Status != constants.ProductStatusActive {
			return nil, ErrProductNotAvailable
		}
		if variant.Stock < item.Quantity {
			return nil, ErrStockInsufficient
		}
		title := variant.Product.Title
		if variant.Title != "" {
			title = title + " / " + variant.Title
		}
		lines = append(lines, PriceLine{
			ProductID:  variant.ProductID,
			VariantID:  variant.ID,
			CategoryID: variant.Product.CategoryID,
			Title:      title,
			SKU:        variant.SKU,
			UnitPrice:  variant.Price,
			Quantity:   item.Quantity,
		})
	}

	settings, err := s.settingService.GetStoreSettings(ctx)
	if err != nil {
		return nil, err
	}

	discount := models.NewMoneyFromDecimal(decimal.Zero)
	var coupon *models.Coupon
	if strings.TrimSpace(input.CouponCode) != "" {
		discount, coupon, err = s.couponService.ApplyCoupon(input.CouponCode, couponUserKey{
			UserID:     input.UserID,
			GuestEmail: input.GuestEmail,
		}, lines)
		if err != nil {
			return nil, err
		}
	}

	quote := s.pricing.Price(lines, discount, settings)
	orderItems := buildOrderItems(lines, discount)
	return &orderBuildResult{
		Lines:    lines,
		Items:    orderItems,
		Quote:    quote,
		Coupon:   coupon,
		Settings: settings,
	}, nil
}

func (s *OrderService) createOrder(ctx context.Context, input orderCreateParams) (*OrderResult, error) {
	if input.IsGuest && input.GuestEmail == "" {
		return nil, ErrGuestEmailRequired
	}

	method := strings.TrimSpace(strings.ToLower(input.PaymentMethod))
	gateway, err := s.gateways.Get(method)
	if err != nil {
		return nil, ErrPaymentMethodInvalid
	}

	// Addresses resolve before pricing: each stage feeds the next.
	shipping, err := s.addressService.Resolve(input.UserID, input.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billing := shipping
	if input.BillingAddress != nil {
		billing, err = s.addressService.Resolve(input.UserID, *input.BillingAddress)
		if err != nil {
			return nil, err
		}
	}

	build, err := s.buildOrder(ctx, input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	// Synchronous methods (COD) are confirmed from the first insert so
	// a crash can never leave a placed order looking unpaid.
	synchronous := payment.IsSynchronous(gateway)
	status := constants.OrderStatusPendingPayment
	var expiresAt *time.Time
	if synchronous {
		status = constants.OrderStatusConfirmed
	} else {
		deadline := now.Add(time.Duration(build.Settings.PaymentExpireMinutes) * time.Minute)
		expiresAt = &deadline
	}
	order := &models.Order{
		OrderNo:           generateOrderNo(),
		UserID:            input.UserID,
		GuestEmail:        input.GuestEmail,
		Status:            status,
		Currency:          build.Quote.Currency,
		Subtotal:          build.Quote.Subtotal,
		ShippingFee:       build.Quote.ShippingFee,
		TaxAmount:         build.Quote.TaxAmount,
		DiscountAmount:    build.Quote.Discount,
		TotalAmount:       build.Quote.Total,
		PaymentMethod:     method,
		ShippingAddressID: shipping.ID,
		BillingAddressID:  billing.ID,
		Remark:            strings.TrimSpace(input.Remark),
		ClientIP:          strings.TrimSpace(input.ClientIP),
		ExpiresAt:         expiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if build.Coupon != nil {
		order.CouponID = &build.Coupon.ID
		order.CouponCode = build.Coupon.Code
	}

	persistOrder := func() error {
		return models.DB.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			variantRepo := s.variantRepo.WithTx(tx)

			for _, line := range build.Lines {
				ok, err := variantRepo.DecrementStock(line.VariantID, line.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return ErrStockInsufficient
				}
			}

			if err := orderRepo.Create(order, build.Items); err != nil {
				return err
			}

			if build.Coupon != nil {
				usageRepo := s.couponUsageRepo.WithTx(tx)
				couponRepo := s.couponRepo.WithTx(tx)
				usage := &models.CouponUsage{
					CouponID:       build.Coupon.ID,
					UserID:         input.UserID,
					GuestEmail:     input.GuestEmail,
					OrderID:        order.ID,
					DiscountAmount: build.Quote.Discount,
					CreatedAt:      now,
				}
				inserted, err := usageRepo.Create(usage)
				if err != nil {
					return err
				}
				if !inserted {
					return ErrCouponInvalid
				}
				bumped, err := couponRepo.IncrementUsedCount(build.Coupon.ID)
				if err != nil {
					return err
				}
				if !bumped {
					return ErrCouponUsageLimit
				}
			}
			return nil
		})
	}

	err = persistOrder()
	if isOrderNoCollision(err) {
		// The time+random heuristic can collide; regenerate once.
		logger.Warnw("order_no_collision", "order_no", order.OrderNo)
		order.ID = 0
		order.OrderNo = generateOrderNo()
		for i := range build.Items {
			build.Items[i].ID = 0
			build.Items[i].OrderID = 0
		}
		err = persistOrder()
	}
	if err != nil {
		if errors.Is(err, ErrStockInsufficient) || errors.Is(err, ErrCouponUsageLimit) || errors.Is(err, ErrCouponInvalid) {
			return nil, err
		}
		logger.Errorw("order_create_failed", "order_no", order.OrderNo, "error", err)
		return nil, ErrOrderCreateFailed
	}

	result := &OrderResult{Order: order}
	intent, err := gateway.CreateIntent(ctx, payment.IntentRequest{
		OrderNo:  order.OrderNo,
		Amount:   order.TotalAmount,
		Currency: order.Currency,
		Notes:    map[string]string{"order_no": order.OrderNo},
	})
	if err != nil {
		// The order stays pending_payment and payable later; the
		// payment may still be initialized on retry, and the expiry
		// task reconciles abandonment.
		logger.Errorw("order_payment_intent_failed",
			"order_no", order.OrderNo,
			"method", method,
			"error", err,
		)
		if enqueueErr := s.queueClient.EnqueueOrderExpireCancel(queue.OrderExpireCancelPayload{
			OrderID: order.ID,
		}, time.Duration(build.Settings.PaymentExpireMinutes)*time.Minute); enqueueErr != nil {
			logger.Warnw("order_enqueue_expire_cancel_failed", "order_no", order.OrderNo, "error", enqueueErr)
		}
		return result, ErrGatewayUnavailable
	}
	result.Intent = intent

	paymentRow := &models.Payment{
		OrderID:        order.ID,
		Method:         method,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		Status:         constants.PaymentStatusInitiated,
		GatewayOrderID: intent.GatewayOrderID,
	}

	if synchronous {
		paymentRow.Status = constants.PaymentStatusPending
	} else {
		if err := s.orderRepo.SetGatewayOrderID(order.ID, intent.GatewayOrderID); err != nil {
			logger.Errorw("order_set_gateway_id_failed", "order_no", order.OrderNo, "error", err)
			return nil, ErrOrderUpdateFailed
		}
		order.GatewayOrderID = intent.GatewayOrderID
	}
	if err := s.paymentRepo.Create(paymentRow); err != nil {
		logger.Errorw("order_payment_row_failed", "order_no", order.OrderNo, "error", err)
	}

	if synchronous {
		s.enqueueStatusEmail(order.ID, constants.OrderStatusConfirmed)
		if input.UserID != 0 {
			_ = s.cartRepo.ClearByUser(input.UserID)
		}
	} else {
		if err := s.queueClient.EnqueueOrderExpireCancel(queue.OrderExpireCancelPayload{
			OrderID: order.ID,
		}, time.Duration(build.Settings.PaymentExpireMinutes)*time.Minute); err != nil {
			logger.Warnw("order_enqueue_expire_cancel_failed", "order_no", order.OrderNo, "error", err)
		}
	}

	full, err := s.orderRepo.GetByOrderNo(order.OrderNo)
	if err == nil && full != nil {
		result.Order = full
	}
	return result, nil
}

// UpdateOrderStatus applies an admin status transition. Setting the
// current status again is a no-op success. Timestamps are stamped only
// the first time a status is reached.
func (s *OrderService) UpdateOrderStatus(orderNo, targetStatus string) (*models.Order, error) {
	target := strings.TrimSpace(strings.ToLower(targetStatus))
	if target == "" {
		return nil, ErrOrderStatusInvalid
	}

	var updated *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByOrderNoForUpdate(orderNo)
		if err != nil {
			return ErrOrderFetchFailed
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status == target {
			updated = order
			return nil
		}
		if !isTransitionAllowed(order.Status, target) {
			return ErrOrderStatusInvalid
		}

		now := time.Now()
		updates := map[string]interface{}{"updated_at": now}
		stampStatusTimestamp(order, target, now, updates)

		if target == constants.OrderStatusCancelled {
			if err := s.releaseOrderResources(tx, order, now); err != nil {
				return err
			}
		}
		if err := orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
			return ErrOrderUpdateFailed
		}
		order.Status = target
		applyStatusTimestamp(order, target, now)
		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrOrderStatusInvalid) || errors.Is(err, ErrOrderFetchFailed) {
			return nil, err
		}
		return nil, ErrOrderUpdateFailed
	}

	s.enqueueStatusEmail(updated.ID, updated.Status)
	return updated, nil
}

// stampStatusTimestamp records the first time a status is reached.
func stampStatusTimestamp(order *models.Order, target string, now time.Time, updates map[string]interface{}) {
	switch target {
	case constants.OrderStatusConfirmed:
		if order.PaidAt == nil {
			updates["paid_at"] = now
		}
	case constants.OrderStatusShipped:
		if order.ShippedAt == nil {
			updates["shipped_at"] = now
		}
	case constants.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			updates["delivered_at"] = now
		}
	case constants.OrderStatusCancelled:
		if order.CancelledAt == nil {
			updates["cancelled_at"] = now
		}
	case constants.OrderStatusReturned:
		if order.ReturnedAt == nil {
			updates["returned_at"] = now
		}
	case constants.OrderStatusRefunded:
		if order.RefundedAt == nil {
			updates["refunded_at"] = now
		}
	}
}

func applyStatusTimestamp(order *models.Order, target string, now time.Time) {
	switch target {
	case constants.OrderStatusConfirmed:
		if order.PaidAt == nil {
			order.PaidAt = &now
		}
	case constants.OrderStatusShipped:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	case constants.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	case constants.OrderStatusCancelled:
		if order.CancelledAt == nil {
			order.CancelledAt = &now
		}
	case constants.OrderStatusReturned:
		if order.ReturnedAt == nil {
			order.ReturnedAt = &now
		}
	case constants.OrderStatusRefunded:
		if order.RefundedAt == nil {
			order.RefundedAt = &now
		}
	}
}

// releaseOrderResources restores stock and rolls back coupon usage
// inside the caller's transaction.
func (s *OrderService) releaseOrderResources(tx *gorm.DB, order *models.Order, now time.Time) error {
	variantRepo := s.variantRepo.WithTx(tx)
	for _, item := range order.Items {
		if err := variantRepo.RestoreStock(item.VariantID, item.Quantity); err != nil {
			return err
		}
	}
	if order.CouponID != nil {
		usageRepo := s.couponUsageRepo.WithTx(tx)
		couponRepo := s.couponRepo.WithTx(tx)
		if err := usageRepo.DeleteByOrderID(order.ID); err != nil {
			return err
		}
		if err := couponRepo.DecrementUsedCount(*order.CouponID); err != nil {
			return err
		}
	}
	return nil
}

// cancelOrderInternal cancels an order, releasing stock and coupon
// usage. notify skips the buyer email when false.
func (s *OrderService) cancelOrderInternal(order *models.Order, notify bool) error {
	now := time.Now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		locked, err := orderRepo.GetByOrderNoForUpdate(order.OrderNo)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		if locked.Status == constants.OrderStatusCancelled {
			return nil
		}
		if locked.Status != constants.OrderStatusPendingPayment && locked.Status != constants.OrderStatusConfirmed {
			return ErrOrderCancelNotAllowed
		}
		if err := s.releaseOrderResources(tx, locked, now); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"cancelled_at": now,
			"updated_at":   now,
		}
		return orderRepo.UpdateStatus(locked.ID, constants.OrderStatusCancelled, updates)
	})
	if err != nil {
		return err
	}
	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	if notify {
		s.enqueueStatusEmail(order.ID, constants.OrderStatusCancelled)
	}
	return nil
}

// CancelOrder cancels a user's own order before fulfilment starts.
func (s *OrderService) CancelOrder(orderNo string, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPendingPayment && order.Status != constants.OrderStatusConfirmed {
		return nil, ErrOrderCancelNotAllowed
	}
	if err := s.cancelOrderInternal(order, true); err != nil {
		if errors.Is(err, ErrOrderCancelNotAllowed) {
			return nil, ErrOrderCancelNotAllowed
		}
		return nil, ErrOrderUpdateFailed
	}
	return order, nil
}

// CancelGuestOrder cancels a guest order before fulfilment starts.
func (s *OrderService) CancelGuestOrder(orderNo, email string) (*models.Order, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndGuest(orderNo, normalized)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPendingPayment && order.Status != constants.OrderStatusConfirmed {
		return nil, ErrOrderCancelNotAllowed
	}
	if err := s.cancelOrderInternal(order, true); err != nil {
		if errors.Is(err, ErrOrderCancelNotAllowed) {
			return nil, ErrOrderCancelNotAllowed
		}
		return nil, ErrOrderUpdateFailed
	}
	return order, nil
}

// CancelExpiredOrder cancels an unpaid order once its payment window
// has passed. Called by the queue worker; already-settled orders are
// left alone.
func (s *OrderService) CancelExpiredOrder(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPendingPayment {
		return order, nil
	}
	if order.ExpiresAt == nil || order.ExpiresAt.After(time.Now()) {
		return order, nil
	}
	if err := s.cancelOrderInternal(order, true); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelExpiredOrders sweeps expired unpaid orders, as a backstop for
// missed queue tasks.
func (s *OrderService) CancelExpiredOrders(limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	orders, err := s.orderRepo.ListExpired(time.Now(), limit)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range orders {
		if err := s.cancelOrderInternal(&orders[i], true); err != nil {
			logger.Warnw("order_expire_sweep_cancel_failed",
				"order_no", orders[i].OrderNo,
				"error", err,
			)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *OrderService) ensureOrderCancelledIfExpired(order *models.Order) {
	if order == nil || order.Status != constants.OrderStatusPendingPayment {
		return
	}
	if order.ExpiresAt == nil || order.ExpiresAt.After(time.Now()) {
		return
	}
	if err := s.cancelOrderInternal(order, true); err != nil {
		logger.Warnw("order_lazy_expire_cancel_failed", "order_no", order.OrderNo, "error", err)
	}
}

// GetOrderByUser returns a user's order by number.
func (s *OrderService) GetOrderByUser(orderNo string, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndUser(strings.TrimSpace(orderNo), userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.ensureOrderCancelledIfExpired(order)
	return order, nil
}

// GetOrderByGuest returns a guest order by number and email.
func (s *OrderService) GetOrderByGuest(orderNo, email string) (*models.Order, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndGuest(strings.TrimSpace(orderNo), normalized)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.ensureOrderCancelledIfExpired(order)
	return order, nil
}

// ListOrdersByUser returns a user's order page.
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrOrderFetchFailed
	}
	orders, total, err := s.orderRepo.ListByUser(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	for i := range orders {
		s.ensureOrderCancelledIfExpired(&orders[i])
	}
	return orders, total, nil
}

// ListOrdersForAdmin returns the admin order page.
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// GetOrderForAdmin returns any order by number.
func (s *OrderService) GetOrderForAdmin(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(strings.TrimSpace(orderNo))
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) enqueueStatusEmail(orderID uint, status string) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_enqueue_status_email_failed",
			"order_id", orderID,
			"status", status,
			"error", err,
		)
	}
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", constants.OrderNoPrefix, now, randNumeric(6))
}

// isOrderNoCollision matches unique-index violations on orders.order_no
// across the postgres and sqlite drivers.
func isOrderNoCollision(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique") && !strings.Contains(msg, "duplicate") {
		return false
	}
	return strings.Contains(msg, "order_no")
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String()
}

// mergeCreateOrderItems folds duplicate variant lines into one.
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	merged := make([]CreateOrderItem, 0, len(items))
	indexMap := make(map[uint]int)
	for _, item := range items {
		if item.VariantID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		if idx, ok := indexMap[item.VariantID]; ok {
			merged[idx].Quantity += item.Quantity
			continue
		}
		indexMap[item.VariantID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// buildOrderItems snapshots the priced lines and spreads the coupon
// discount proportionally, pushing any rounding remainder onto the
// last line.
func buildOrderItems(lines []PriceLine, discount models.Money) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(lineTotal(line))
	}

	allocated := decimal.Zero
	for i, line := range lines {
		total := lineTotal(line)
		share := decimal.Zero
		if discount.Decimal.GreaterThan(decimal.Zero) && subtotal.GreaterThan(decimal.Zero) {
			if i == len(lines)-1 {
				share = discount.Decimal.Sub(allocated)
			} else {
				share = discount.Decimal.Mul(total).Div(subtotal).Round(2)
				allocated = allocated.Add(share)
			}
		}
		items = append(items, models.OrderItem{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			Title:          line.Title,
			SKU:            line.SKU,
			UnitPrice:      line.UnitPrice,
			Quantity:       line.Quantity,
			TotalPrice:     models.NewMoneyFromDecimal(total),
			CouponDiscount: models.NewMoneyFromDecimal(normalizeOrderAmount(share)),
		})
	}
	return items
}

func normalizeOrderAmount(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}
