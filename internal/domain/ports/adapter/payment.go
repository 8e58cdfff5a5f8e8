package adapter

import (
	"context"
	"encoding/json"

	"razorpay-relay/internal/domain/model"
)

// PaymentGateway is the hex port for the upstream payment provider.
// Implementations return *domain.GatewayError when the provider rejects a call
// and a wrapped domain.ErrGatewayUnavailable when it cannot be reached.
type PaymentGateway interface {
	Name() string

	// CreateOrder creates an order upstream. req.Amount is already in minor units.
	CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error)
	// FetchPayment returns the provider's payment entity verbatim.
	FetchPayment(ctx context.Context, paymentID string) (json.RawMessage, error)
	// FetchOrder returns the provider's order entity verbatim.
	FetchOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}
