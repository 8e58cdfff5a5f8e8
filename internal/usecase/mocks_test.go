// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"razorpay-relay/internal/domain"
	"razorpay-relay/internal/domain/model"
	"razorpay-relay/internal/domain/ports/adapter"
)

// ---- In-memory PaymentGateway ----

type MockPaymentGateway struct {
	mu sync.Mutex

	Payments map[string]json.RawMessage
	Orders   map[string]json.RawMessage

	CreateCalls       []model.OrderRequest
	FetchPaymentCalls int
	FetchOrderCalls   int

	CreateErr error // returned by CreateOrder when set
	FetchErr  error // returned by FetchPayment/FetchOrder when set

	seq int
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		Payments: map[string]json.RawMessage{},
		Orders:   map[string]json.RawMessage{},
	}
}

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, req)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.seq++
	return &model.Order{
		ID:        fmt.Sprintf("order_%d", m.seq),
		Entity:    "order",
		Amount:    req.Amount,
		AmountDue: req.Amount,
		Currency:  req.Currency,
		Receipt:   req.Receipt,
		Status:    model.OrderStatusCreated,
		Notes:     model.Notes(req.Notes),
	}, nil
}

func (m *MockPaymentGateway) FetchPayment(ctx context.Context, paymentID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchPaymentCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	raw, ok := m.Payments[paymentID]
	if !ok {
		return nil, &domain.GatewayError{Status: 400, Code: "BAD_REQUEST_ERROR", Description: "The id provided does not exist"}
	}
	return raw, nil
}

func (m *MockPaymentGateway) FetchOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchOrderCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	raw, ok := m.Orders[orderID]
	if !ok {
		return nil, &domain.GatewayError{Status: 400, Code: "BAD_REQUEST_ERROR", Description: "The id provided does not exist"}
	}
	return raw, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
