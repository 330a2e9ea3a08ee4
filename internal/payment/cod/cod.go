// Package cod is the cash-on-delivery method. There is no external
// gateway: the intent settles synchronously and the order is confirmed
// at creation time.
package cod

import (
	"context"
	"errors"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/payment"
)

var ErrNoCallback = errors.New("cod has no payment callback")

// Gateway implements payment.Gateway for cash on delivery.
type Gateway struct{}

// New builds the COD gateway.
func New() *Gateway {
	return &Gateway{}
}

// Method returns the method name.
func (g *Gateway) Method() string {
	return constants.PaymentMethodCOD
}

// Synchronous marks COD as settling at order creation.
func (g *Gateway) Synchronous() bool {
	return true
}

// CreateIntent settles immediately; there is nothing for the client to
// pay online.
func (g *Gateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	return &payment.Intent{
		Method:      g.Method(),
		Synchronous: true,
	}, nil
}

// VerifyCallback always fails: nothing calls back for COD orders.
func (g *Gateway) VerifyCallback(req payment.CallbackRequest) error {
	return ErrNoCallback
}
