// Package payment defines the gateway abstraction the order flow
// settles through. Each method (razorpay, cod) ships its own package
// implementing Gateway; the service layer dispatches through the
// Registry instead of switching on method strings.
package payment

import (
	"context"
	"errors"

	"github.com/swadeshika/storefront/internal/models"
)

var (
	ErrUnknownMethod = errors.New("payment method unknown")
)

// IntentRequest asks a gateway to open a payment for an order.
type IntentRequest struct {
	OrderNo  string
	Amount   models.Money
	Currency string
	Notes    map[string]string
}

// Intent is the gateway's answer: what the client needs to proceed.
type Intent struct {
	GatewayOrderID string
	Method         string
	// Synchronous gateways (COD) settle at creation time and skip the
	// client-side payment step entirely.
	Synchronous bool
	// KeyID is exposed to browser checkout SDKs that need it.
	KeyID string
	Raw   map[string]interface{}
}

// CallbackRequest carries the client/webhook proof of payment.
type CallbackRequest struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// Gateway is one payment method implementation.
type Gateway interface {
	Method() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	VerifyCallback(req CallbackRequest) error
}

// SynchronousGateway is implemented by methods that settle at order
// creation time, with no client-side payment step.
type SynchronousGateway interface {
	Synchronous() bool
}

// IsSynchronous reports whether a gateway settles at creation, without
// opening an intent.
func IsSynchronous(g Gateway) bool {
	s, ok := g.(SynchronousGateway)
	return ok && s.Synchronous()
}

// Registry holds the configured gateways keyed by method.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry builds a registry from the given gateways.
func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		if g == nil {
			continue
		}
		r.gateways[g.Method()] = g
	}
	return r
}

// Get returns the gateway for a method.
func (r *Registry) Get(method string) (Gateway, error) {
	g, ok := r.gateways[method]
	if !ok {
		return nil, ErrUnknownMethod
	}
	return g, nil
}

// Methods lists the registered method names.
func (r *Registry) Methods() []string {
	methods := make([]string, 0, len(r.gateways))
	for method := range r.gateways {
		methods = append(methods, method)
	}
	return methods
}
