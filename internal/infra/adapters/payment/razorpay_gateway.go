// File: internal/infra/adapters/payment/razorpay_gateway.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"razorpay-relay/internal/config"
	"razorpay-relay/internal/domain"
	"razorpay-relay/internal/domain/model"
	"razorpay-relay/internal/domain/ports/adapter"
	"razorpay-relay/internal/infra/metrics"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

const providerName = "razorpay"

// RazorpayGateway implements adapter.PaymentGateway against the Razorpay REST v1 API.
// Every call is authenticated with HTTP basic auth (key id / key secret) and bounded
// by the configured timeout. Nothing is retried.
type RazorpayGateway struct {
	client *resty.Client
}

// NewRazorpayGateway builds a pre-authenticated client bound to cfg.BaseURL.
func NewRazorpayGateway(cfg config.RazorpayConfig) (*RazorpayGateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, errors.New("razorpay key id/secret empty")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("razorpay base url empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hc := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	client := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RazorpayGateway{client: client}, nil
}

func (g *RazorpayGateway) Name() string { return providerName }

// CreateOrder calls POST /orders.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	body, err := g.do(ctx, "create_order", http.MethodPost, "/orders", nil, req)
	if err != nil {
		return nil, err
	}
	var order model.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("razorpay create_order: decode response: %w", err)
	}
	return &order, nil
}

// FetchPayment calls GET /payments/{id}.
func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (json.RawMessage, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, fmt.Errorf("payment id: %w", domain.ErrInvalidArgument)
	}
	return g.do(ctx, "fetch_payment", http.MethodGet, "/payments/{id}", map[string]string{"id": paymentID}, nil)
}

// FetchOrder calls GET /orders/{id}.
func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("order id: %w", domain.ErrInvalidArgument)
	}
	return g.do(ctx, "fetch_order", http.MethodGet, "/orders/{id}", map[string]string{"id": orderID}, nil)
}

// do performs a single call and classifies the outcome:
// transport failure -> ErrGatewayUnavailable, non-2xx -> *GatewayError, else the raw body.
func (g *RazorpayGateway) do(ctx context.Context, op, method, path string, params map[string]string, payload any) (json.RawMessage, error) {
	r := g.client.R().SetContext(ctx)
	if params != nil {
		r.SetPathParams(params)
	}
	if payload != nil {
		r.SetBody(payload)
	}

	start := time.Now()
	resp, err := r.Execute(method, path)
	if err != nil {
		metrics.ObserveGatewayCall(providerName, op, "unavailable", time.Since(start))
		return nil, fmt.Errorf("razorpay %s: %w: %w", op, domain.ErrGatewayUnavailable, err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		metrics.ObserveGatewayCall(providerName, op, "rejected", time.Since(start))
		return nil, fmt.Errorf("razorpay %s: %w", op, toGatewayError(resp.StatusCode(), resp.Body()))
	}
	metrics.ObserveGatewayCall(providerName, op, "ok", time.Since(start))

	body := resp.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("razorpay %s: response is not valid json", op)
	}
	return json.RawMessage(body), nil
}

// toGatewayError parses Razorpay's {"error": {"code", "description"}} body.
// Bodies that are not JSON are kept as a JSON string in Details.
func toGatewayError(status int, body []byte) *domain.GatewayError {
	ge := &domain.GatewayError{Status: status}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ge
	}
	if !json.Valid([]byte(trimmed)) {
		quoted, _ := json.Marshal(trimmed)
		ge.Details = quoted
		return ge
	}
	ge.Details = json.RawMessage(trimmed)

	var eb struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(ge.Details, &eb); err == nil {
		ge.Code = eb.Error.Code
		ge.Description = eb.Error.Description
	}
	return ge
}
