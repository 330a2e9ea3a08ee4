package constants

// Order status constants
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
	OrderStatusReturned       = "returned"
	OrderStatusRefunded       = "refunded"
)

// Payment method constants
const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodCOD      = "cod"
)

// Payment status constants
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
)

// Coupon type constants
const (
	CouponTypeFixed   = "fixed"
	CouponTypePercent = "percent"
)

// Coupon scope constants
const (
	CouponScopeAll      = "all"
	CouponScopeProduct  = "product"
	CouponScopeCategory = "category"
)

// User role constants
const (
	UserRoleCustomer = "customer"
	UserRoleAdmin    = "admin"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Product status constants
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Captcha verification scene constants
const (
	CaptchaSceneGuestCreateOrder = "guest_create_order"
)

// Queue constants
const (
	QueueDefault          = "default"
	TaskOrderStatusEmail  = "order:status_email"
	TaskOrderExpireCancel = "order:expire_cancel"
)

// Cache defaults
const (
	RedisPrefixDefault = "swd"
)

// Setting key constants
const (
	SettingKeyFreeShippingThreshold = "free_shipping_threshold"
	SettingKeyFlatShippingRate      = "flat_shipping_rate"
	SettingKeyTaxPercent            = "tax_percent"
	SettingKeyTaxOnDiscounted       = "tax_on_discounted"
	SettingKeyPaymentExpireMinutes  = "payment_expire_minutes"
	SettingKeyStoreCurrency         = "currency"
)

// Currency constants
const (
	SiteCurrencyDefault = "INR"
)

// Order number prefix
const (
	OrderNoPrefix = "SW"
)
