package public

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/swadeshika/storefront/internal/http/response"
	"github.com/swadeshika/storefront/internal/service"
)

// mappedHandlerError maps one service sentinel to a response.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var orderCommonErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, msg: "order item invalid"},
	{target: service.ErrInvalidOrderAmount, code: response.CodeBadRequest, msg: "order amount invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, msg: "stock insufficient"},
	{target: service.ErrAddressInvalid, code: response.CodeBadRequest, msg: "address invalid"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, msg: "payment method invalid"},
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, msg: "coupon invalid"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, msg: "coupon not found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, msg: "coupon inactive"},
	{target: service.ErrCouponNotStarted, code: response.CodeBadRequest, msg: "coupon not started"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, msg: "coupon expired"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, msg: "coupon usage limit reached"},
	{target: service.ErrCouponPerUserLimit, code: response.CodeBadRequest, msg: "coupon already used"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, msg: "order below coupon minimum"},
	{target: service.ErrCouponScopeInvalid, code: response.CodeBadRequest, msg: "coupon not applicable to these items"},
}

var orderCreateExtraErrorRules = []mappedHandlerError{
	{target: service.ErrGatewayUnavailable, code: response.CodeInternal, msg: "payment gateway unavailable"},
}

var guestOrderExtraErrorRules = []mappedHandlerError{
	{target: service.ErrGuestEmailRequired, code: response.CodeBadRequest, msg: "guest email required"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "email invalid"},
}

var paymentVerifyErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentVerifyFailed, code: response.CodeBadRequest, msg: "payment verification failed"},
	{target: service.ErrPaymentAlreadySettled, code: response.CodeConflict, msg: "payment already settled"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, msg: "payment method invalid"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, msg: "order status invalid"},
}

func respondOrderPreviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCommonErrorRules, response.CodeInternal, "order preview failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err,
		concatMappedHandlerErrors(orderCommonErrorRules, orderCreateExtraErrorRules),
		response.CodeInternal, "order create failed")
}

func respondGuestOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err,
		concatMappedHandlerErrors(orderCommonErrorRules, orderCreateExtraErrorRules, guestOrderExtraErrorRules),
		response.CodeInternal, "order create failed")
}

func respondPaymentVerifyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentVerifyErrorRules, response.CodeInternal, "payment verification failed")
}
