package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/payment"
	"github.com/swadeshika/storefront/internal/payment/cod"
	"github.com/swadeshika/storefront/internal/queue"
	"github.com/swadeshika/storefront/internal/repository"

	"gorm.io/gorm"
)

// asyncStubGateway stands in for a redirect-style gateway so orders
// stay pending_payment after creation.
type asyncStubGateway struct {
	failIntent bool
}

func (g *asyncStubGateway) Method() string { return "testpay" }

func (g *asyncStubGateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	if g.failIntent {
		return nil, errors.New("gateway down")
	}
	return &payment.Intent{
		GatewayOrderID: "gw_" + req.OrderNo,
		Method:         g.Method(),
	}, nil
}

func (g *asyncStubGateway) VerifyCallback(req payment.CallbackRequest) error {
	if req.Signature != "valid" {
		return errors.New("bad signature")
	}
	return nil
}

type orderTestEnv struct {
	db          *gorm.DB
	variantRepo repository.ProductVariantRepository
	couponRepo  repository.CouponRepository
	usageRepo   repository.CouponUsageRepository
	paymentRepo repository.PaymentRepository
	stub        *asyncStubGateway
}

func setupOrderServiceTest(t *testing.T) (*OrderService, *orderTestEnv) {
	t.Helper()
	db := openTestDB(t, "order_service_"+t.Name(),
		&models.User{}, &models.Address{}, &models.Category{}, &models.Product{},
		&models.ProductVariant{}, &models.Coupon{}, &models.CouponUsage{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{},
		&models.CartItem{}, &models.Setting{},
	)
	models.DB = db

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}

	env := &orderTestEnv{
		db:          db,
		variantRepo: repository.NewProductVariantRepository(db),
		couponRepo:  repository.NewCouponRepository(db),
		usageRepo:   repository.NewCouponUsageRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		stub:        &asyncStubGateway{},
	}

	couponSvc := NewCouponService(env.couponRepo, env.usageRepo)
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		env.variantRepo,
		env.couponRepo,
		env.usageRepo,
		repository.NewCartRepository(db),
		env.paymentRepo,
		NewAddressService(repository.NewAddressRepository(db)),
		couponSvc,
		NewSettingService(repository.NewSettingRepository(db), nil),
		payment.NewRegistry(cod.New(), env.stub),
		queueClient,
	)
	return svc, env
}

func seedVariant(t *testing.T, db *gorm.DB, sku string, price string, stock int) *models.ProductVariant {
	t.Helper()
	category := models.Category{Slug: "spices-" + sku, Name: "Spices"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		CategoryID: category.ID,
		Slug:       "pepper-" + sku,
		Title:      "Malabar Pepper",
		Status:     constants.ProductStatusActive,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	variant := models.ProductVariant{
		ProductID: product.ID,
		SKU:       sku,
		Title:     "100g",
		Price:     money(t, price),
		Stock:     stock,
		IsActive:  true,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return &variant
}

func variantStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var variant models.ProductVariant
	if err := db.First(&variant, id).Error; err != nil {
		t.Fatalf("load variant failed: %v", err)
	}
	return variant.Stock
}

func codOrderInput(variantID uint, quantity int) CreateOrderInput {
	return CreateOrderInput{
		UserID:        1,
		Items:         []CreateOrderItem{{VariantID: variantID, Quantity: quantity}},
		PaymentMethod: constants.PaymentMethodCOD,
		ShippingAddress: AddressInput{
			Name: "Asha Rao", Phone: "9876543210",
			Line1: "12 MG Road", City: "Bengaluru",
			State: "Karnataka", PostalCode: "560001",
		},
	}
}

func TestCreateOrderCODConfirmsImmediately(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-100", "249.00", 10)

	result, err := svc.CreateOrder(context.Background(), codOrderInput(variant.ID, 2))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	order := result.Order
	if !strings.HasPrefix(order.OrderNo, constants.OrderNoPrefix) {
		t.Fatalf("order no %q missing prefix %q", order.OrderNo, constants.OrderNoPrefix)
	}
	if order.Status != constants.OrderStatusConfirmed {
		t.Fatalf("cod order status want confirmed got %s", order.Status)
	}
	if order.ExpiresAt != nil {
		t.Fatalf("cod order must not expire, got %v", order.ExpiresAt)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("order items unexpected: %+v", order.Items)
	}
	assertMoney(t, "subtotal", order.Subtotal, "498.00")
	assertMoney(t, "shipping", order.ShippingFee, "49.00")
	assertMoney(t, "tax", order.TaxAmount, "89.64")
	assertMoney(t, "total", order.TotalAmount, "636.64")

	if got := variantStock(t, env.db, variant.ID); got != 8 {
		t.Fatalf("stock after order want 8 got %d", got)
	}

	row, err := env.paymentRepo.GetLatestByOrderID(order.ID)
	if err != nil || row == nil {
		t.Fatalf("payment row missing: %v", err)
	}
	if row.Status != constants.PaymentStatusPending {
		t.Fatalf("cod payment row status want pending got %s", row.Status)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-101", "249.00", 3)

	input := codOrderInput(variant.ID, 1)
	input.PaymentMethod = "cheque"
	if _, err := svc.CreateOrder(context.Background(), input); !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("unknown method want ErrPaymentMethodInvalid got %v", err)
	}

	input = codOrderInput(variant.ID, 0)
	if _, err := svc.CreateOrder(context.Background(), input); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("zero quantity want ErrInvalidOrderItem got %v", err)
	}

	input = codOrderInput(variant.ID, 1)
	input.Items = nil
	if _, err := svc.CreateOrder(context.Background(), input); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("empty items want ErrInvalidOrderItem got %v", err)
	}

	if _, err := svc.CreateOrder(context.Background(), codOrderInput(variant.ID, 4)); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("oversell want ErrStockInsufficient got %v", err)
	}

	input = codOrderInput(variant.ID, 1)
	input.ShippingAddress.City = ""
	if _, err := svc.CreateOrder(context.Background(), input); !errors.Is(err, ErrAddressInvalid) {
		t.Fatalf("bad address want ErrAddressInvalid got %v", err)
	}
}

func TestCreateOrderInactiveProductRejected(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-102", "249.00", 5)
	if err := env.db.Model(&models.Product{}).Where("id = ?", variant.ProductID).
		Update("status", constants.ProductStatusInactive).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	if _, err := svc.CreateOrder(context.Background(), codOrderInput(variant.ID, 1)); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("inactive product want ErrProductNotAvailable got %v", err)
	}
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-103", "100.00", 10)

	input := codOrderInput(variant.ID, 1)
	input.Items = []CreateOrderItem{
		{VariantID: variant.ID, Quantity: 1},
		{VariantID: variant.ID, Quantity: 2},
	}
	result, err := svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(result.Order.Items) != 1 {
		t.Fatalf("merged items want 1 line got %d", len(result.Order.Items))
	}
	if result.Order.Items[0].Quantity != 3 {
		t.Fatalf("merged quantity want 3 got %d", result.Order.Items[0].Quantity)
	}
	if got := variantStock(t, env.db, variant.ID); got != 7 {
		t.Fatalf("stock want 7 got %d", got)
	}
}

func TestCreateOrderWithCouponRecordsUsage(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-104", "600.00", 10)
	coupon := &models.Coupon{
		Code: "FLAT100", Type: constants.CouponTypeFixed,
		Value: money(t, "100.00"), ScopeType: constants.CouponScopeAll,
		IsActive: true,
	}
	if err := env.db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	input := codOrderInput(variant.ID, 1)
	input.CouponCode = "FLAT100"
	result, err := svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	order := result.Order
	assertMoney(t, "discount", order.DiscountAmount, "100.00")
	if order.CouponCode != "FLAT100" || order.CouponID == nil {
		t.Fatalf("coupon not recorded on order: %+v", order)
	}

	usage, err := env.usageRepo.GetByOrderID(order.ID)
	if err != nil || usage == nil {
		t.Fatalf("usage row missing: %v", err)
	}
	reloaded, err := env.couponRepo.GetByID(coupon.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("used_count want 1 got %d", reloaded.UsedCount)
	}
}

func TestCreateGuestOrderNormalizesEmail(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-105", "249.00", 5)

	result, err := svc.CreateGuestOrder(context.Background(), CreateGuestOrderInput{
		Email:         "  Guest@Example.COM ",
		Items:         []CreateOrderItem{{VariantID: variant.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCOD,
		ShippingAddress: AddressInput{
			Name: "Guest Buyer", Phone: "9876543210",
			Line1: "1 Beach Road", City: "Chennai",
			State: "Tamil Nadu", PostalCode: "600001",
		},
	})
	if err != nil {
		t.Fatalf("guest order failed: %v", err)
	}
	if result.Order.GuestEmail != "guest@example.com" {
		t.Fatalf("guest email want guest@example.com got %q", result.Order.GuestEmail)
	}
	if result.Order.UserID != 0 {
		t.Fatalf("guest order must have no user, got %d", result.Order.UserID)
	}

	if _, err := svc.CreateGuestOrder(context.Background(), CreateGuestOrderInput{
		Email:         "not-an-email",
		Items:         []CreateOrderItem{{VariantID: variant.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCOD,
	}); !errors.Is(err, ErrGuestEmailRequired) {
		t.Fatalf("bad guest email want ErrGuestEmailRequired got %v", err)
	}
}

func TestPreviewOrderDoesNotPersist(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-106", "500.00", 5)

	preview, err := svc.PreviewOrder(context.Background(), CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItem{{VariantID: variant.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	assertMoney(t, "preview subtotal", preview.Quote.Subtotal, "500.00")
	assertMoney(t, "preview shipping", preview.Quote.ShippingFee, "49.00")
	if len(preview.Items) != 1 {
		t.Fatalf("preview items want 1 got %d", len(preview.Items))
	}

	var orders int64
	if err := env.db.Model(&models.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orders != 0 {
		t.Fatalf("preview persisted %d orders", orders)
	}
	if got := variantStock(t, env.db, variant.ID); got != 5 {
		t.Fatalf("preview touched stock: want 5 got %d", got)
	}
}

func TestUpdateOrderStatusFlow(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-107", "249.00", 5)

	result, err := svc.CreateOrder(context.Background(), codOrderInput(variant.ID, 1))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	orderNo := result.Order.OrderNo

	if _, err := svc.UpdateOrderStatus(orderNo, "delivered"); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("skipping states want ErrOrderStatusInvalid got %v", err)
	}

	order, err := svc.UpdateOrderStatus(orderNo, constants.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("confirmed->processing failed: %v", err)
	}
	if order.Status != constants.OrderStatusProcessing {
		t.Fatalf("status want processing got %s", order.Status)
	}

	order, err = svc.UpdateOrderStatus(orderNo, constants.OrderStatusShipped)
	if err != nil {
		t.Fatalf("processing->shipped failed: %v", err)
	}
	if order.ShippedAt == nil {
		t.Fatalf("shipped_at not stamped")
	}
	firstShipped := *order.ShippedAt

	// Re-applying the current status is a no-op and keeps the original
	// timestamp.
	again, err := svc.UpdateOrderStatus(orderNo, constants.OrderStatusShipped)
	if err != nil {
		t.Fatalf("shipped->shipped no-op failed: %v", err)
	}
	if again.ShippedAt == nil {
		t.Fatalf("shipped_at lost on no-op update")
	}
	if drift := again.ShippedAt.Sub(firstShipped); drift < -time.Second || drift > time.Second {
		t.Fatalf("shipped_at restamped: want %v got %v", firstShipped, again.ShippedAt)
	}

	order, err = svc.UpdateOrderStatus(orderNo, constants.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("shipped->delivered failed: %v", err)
	}
	if order.DeliveredAt == nil {
		t.Fatalf("delivered_at not stamped")
	}

	order, err = svc.UpdateOrderStatus(orderNo, constants.OrderStatusReturned)
	if err != nil {
		t.Fatalf("delivered->returned failed: %v", err)
	}
	if order.ReturnedAt == nil {
		t.Fatalf("returned_at not stamped")
	}

	order, err = svc.UpdateOrderStatus(orderNo, constants.OrderStatusRefunded)
	if err != nil {
		t.Fatalf("returned->refunded failed: %v", err)
	}
	if order.RefundedAt == nil {
		t.Fatalf("refunded_at not stamped")
	}

	if _, err := svc.UpdateOrderStatus(orderNo, constants.OrderStatusPendingPayment); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("backwards transition want ErrOrderStatusInvalid got %v", err)
	}
	if _, err := svc.UpdateOrderStatus(orderNo, ""); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("empty status want ErrOrderStatusInvalid got %v", err)
	}
	if _, err := svc.UpdateOrderStatus("SW00000000000000000000", constants.OrderStatusShipped); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("unknown order want ErrOrderNotFound got %v", err)
	}
}

func TestCancelOrderRestoresStockAndCoupon(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-108", "600.00", 5)
	coupon := &models.Coupon{
		Code: "FLAT50", Type: constants.CouponTypeFixed,
		Value: money(t, "50.00"), ScopeType: constants.CouponScopeAll,
		IsActive: true,
	}
	if err := env.db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	input := codOrderInput(variant.ID, 2)
	input.CouponCode = "FLAT50"
	result, err := svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if got := variantStock(t, env.db, variant.ID); got != 3 {
		t.Fatalf("stock after order want 3 got %d", got)
	}

	cancelled, err := svc.CancelOrder(result.Order.OrderNo, 1)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatalf("cancelled_at not stamped")
	}
	if got := variantStock(t, env.db, variant.ID); got != 5 {
		t.Fatalf("stock after cancel want 5 got %d", got)
	}

	usage, err := env.usageRepo.GetByOrderID(result.Order.ID)
	if err != nil {
		t.Fatalf("load usage failed: %v", err)
	}
	if usage != nil {
		t.Fatalf("usage row not released: %+v", usage)
	}
	reloaded, err := env.couponRepo.GetByID(coupon.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("used_count after cancel want 0 got %d", reloaded.UsedCount)
	}
}

func TestCancelOrderOwnershipAndState(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-109", "249.00", 5)

	result, err := svc.CreateOrder(context.Background(), codOrderInput(variant.ID, 1))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	orderNo := result.Order.OrderNo

	if _, err := svc.CancelOrder(orderNo, 99); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign order want ErrOrderNotFound got %v", err)
	}

	if _, err := svc.UpdateOrderStatus(orderNo, constants.OrderStatusProcessing); err != nil {
		t.Fatalf("advance to processing failed: %v", err)
	}
	if _, err := svc.CancelOrder(orderNo, 1); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("cancel in fulfilment want ErrOrderCancelNotAllowed got %v", err)
	}
}

func TestExpiredOrderSweep(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-110", "249.00", 5)

	input := codOrderInput(variant.ID, 1)
	input.PaymentMethod = "testpay"
	result, err := svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create async order failed: %v", err)
	}
	order := result.Order
	if order.Status != constants.OrderStatusPendingPayment {
		t.Fatalf("async order status want pending_payment got %s", order.Status)
	}
	if order.ExpiresAt == nil {
		t.Fatalf("async order missing expiry")
	}
	if order.GatewayOrderID == "" {
		t.Fatalf("gateway order id not stamped")
	}
	if got := variantStock(t, env.db, variant.ID); got != 4 {
		t.Fatalf("stock after async order want 4 got %d", got)
	}

	// Still inside the window: nothing to sweep.
	count, err := svc.CancelExpiredOrders(10)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("early sweep cancelled %d orders", count)
	}

	past := time.Now().Add(-time.Minute)
	if err := env.db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate expiry failed: %v", err)
	}

	count, err = svc.CancelExpiredOrders(10)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("sweep want 1 cancellation got %d", count)
	}

	reloaded, err := svc.GetOrderForAdmin(order.OrderNo)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusCancelled {
		t.Fatalf("expired order status want cancelled got %s", reloaded.Status)
	}
	if got := variantStock(t, env.db, variant.ID); got != 5 {
		t.Fatalf("stock after expiry cancel want 5 got %d", got)
	}
}

func TestCreateOrderStaysPayableWhenIntentFails(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-111", "249.00", 5)
	env.stub.failIntent = true

	input := codOrderInput(variant.ID, 2)
	input.PaymentMethod = "testpay"
	result, err := svc.CreateOrder(context.Background(), input)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("intent failure want ErrGatewayUnavailable got %v", err)
	}
	if result == nil || result.Order == nil {
		t.Fatalf("intent failure should still return the persisted order")
	}
	if result.Intent != nil {
		t.Fatalf("intent failure should not carry an intent")
	}

	// The order is not rolled back: it stays pending_payment so the
	// buyer can retry payment, and the expiry sweep reconciles
	// abandonment.
	var orders []models.Order
	if err := env.db.Find(&orders).Error; err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if len(orders) != 1 || orders[0].Status != constants.OrderStatusPendingPayment {
		t.Fatalf("order after intent failure should stay pending_payment: %+v", orders)
	}
	if got := variantStock(t, env.db, variant.ID); got != 3 {
		t.Fatalf("stock should stay reserved while the order is payable: want 3 got %d", got)
	}
}

func TestCreateOrderAddressCheckedBeforeCoupon(t *testing.T) {
	svc, env := setupOrderServiceTest(t)
	variant := seedVariant(t, env.db, "PEP-112", "249.00", 5)

	// Both the address and the coupon are bad; the address error wins
	// because resolution runs before pricing.
	input := codOrderInput(variant.ID, 1)
	input.ShippingAddress.Name = ""
	input.CouponCode = "NO-SUCH-CODE"
	if _, err := svc.CreateOrder(context.Background(), input); !errors.Is(err, ErrAddressInvalid) {
		t.Fatalf("want ErrAddressInvalid got %v", err)
	}
}

func TestIsOrderNoCollision(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("UNIQUE constraint failed: orders.order_no"), true},
		{errors.New(`duplicate key value violates unique constraint "idx_orders_order_no"`), true},
		{errors.New("UNIQUE constraint failed: coupon_usages.coupon_id"), false},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := isOrderNoCollision(tc.err); got != tc.want {
			t.Fatalf("isOrderNoCollision(%v) want %v got %v", tc.err, tc.want, got)
		}
	}
}
