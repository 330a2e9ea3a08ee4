package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// responses through their error tables.
var (
	// Auth
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrTokenInvalid       = errors.New("token invalid")

	// Address
	ErrAddressInvalid  = errors.New("address invalid")
	ErrAddressNotFound = errors.New("address not found")

	// Catalog / cart
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrVariantInvalid      = errors.New("product variant invalid")
	ErrStockInsufficient   = errors.New("stock insufficient")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrCartEmpty           = errors.New("cart empty")

	// Coupon
	ErrCouponInvalid      = errors.New("coupon invalid")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponInactive     = errors.New("coupon inactive")
	ErrCouponNotStarted   = errors.New("coupon not started")
	ErrCouponExpired      = errors.New("coupon expired")
	ErrCouponUsageLimit   = errors.New("coupon usage limit reached")
	ErrCouponPerUserLimit = errors.New("coupon per-user limit reached")
	ErrCouponMinAmount    = errors.New("coupon minimum order amount not met")
	ErrCouponScopeInvalid = errors.New("coupon not applicable to these items")

	// Order
	ErrInvalidOrderItem      = errors.New("invalid order item")
	ErrInvalidOrderAmount    = errors.New("invalid order amount")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderFetchFailed      = errors.New("order fetch failed")
	ErrOrderCreateFailed     = errors.New("order create failed")
	ErrOrderUpdateFailed     = errors.New("order update failed")
	ErrOrderStatusInvalid    = errors.New("order status transition not allowed")
	ErrOrderCancelNotAllowed = errors.New("order cannot be cancelled")
	ErrGuestEmailRequired    = errors.New("guest email required")
	ErrPaymentMethodInvalid  = errors.New("payment method invalid")

	// Payment
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentVerifyFailed   = errors.New("payment verification failed")
	ErrPaymentAlreadySettled = errors.New("payment already settled")
	ErrPaymentAmountMismatch = errors.New("payment amount mismatch")
	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")

	// Captcha
	ErrCaptchaRequired = errors.New("captcha required")
	ErrCaptchaInvalid  = errors.New("captcha invalid")

	// Email
	ErrEmailServiceDisabled      = errors.New("email sending disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
