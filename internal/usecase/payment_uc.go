// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"razorpay-relay/internal/config"
	"razorpay-relay/internal/domain"
	"razorpay-relay/internal/domain/model"
	"razorpay-relay/internal/domain/ports/adapter"
	"razorpay-relay/internal/infra/logging"
	"razorpay-relay/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// CreateOrder converts amounts to minor units, fills receipt/notes defaults and creates the order upstream.
	CreateOrder(ctx context.Context, in model.CreateOrderInput) (*model.Order, error)
	// VerifyPayment checks the checkout signature locally and only then fetches the payment.
	// A bad signature returns domain.ErrInvalidSignature without contacting the gateway.
	VerifyPayment(ctx context.Context, req model.VerificationRequest) (*model.Payment, error)
	// GetPayment returns the gateway payment entity verbatim.
	GetPayment(ctx context.Context, paymentID string) (json.RawMessage, error)
	// GetOrder returns the gateway order entity verbatim.
	GetOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}

type paymentUC struct {
	gateway    adapter.PaymentGateway
	verifier   adapter.SignatureVerifier
	defaults   config.OrderConfig
	newReceipt func() string
	log        *zerolog.Logger
	dev        bool
}

func NewPaymentUseCase(
	gateway adapter.PaymentGateway,
	verifier adapter.SignatureVerifier,
	defaults config.OrderConfig,
	logger *zerolog.Logger,
	dev bool,
) *paymentUC {
	if defaults.DefaultCustomerID == "" {
		defaults.DefaultCustomerID = "user"
	}
	return &paymentUC{
		gateway:    gateway,
		verifier:   verifier,
		defaults:   defaults,
		newReceipt: NewReceipt,
		log:        logger,
		dev:        dev,
	}
}

// NewReceipt returns "receipt_" followed by 32 random hex characters.
func NewReceipt() string {
	return model.ReceiptPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (u *paymentUC) CreateOrder(ctx context.Context, in model.CreateOrderInput) (*model.Order, error) {
	l := logging.With(ctx, u.log)
	defer logging.TraceDuration(l, "PaymentUC.CreateOrder")()

	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidArgument
	}

	receipt := in.Receipt
	if receipt == "" {
		receipt = u.newReceipt()
	}
	currency := in.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	// caller notes win over defaults, including customer_id
	notes := map[string]any{
		"description": u.defaults.DefaultDescription,
		"customer_id": u.defaults.DefaultCustomerID,
	}
	for k, v := range in.Notes {
		notes[k] = v
	}

	amountMinor, err := model.ToMinorUnits(in.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount %s: %w: %w", in.Amount, domain.ErrInvalidArgument, err)
	}
	req := model.OrderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		Receipt:        receipt,
		Notes:          notes,
		PartialPayment: in.PartialPayment,
	}
	if in.FirstPaymentMinAmount != nil {
		minor, err := model.ToMinorUnits(*in.FirstPaymentMinAmount)
		if err != nil {
			return nil, fmt.Errorf("first payment min amount %s: %w: %w", *in.FirstPaymentMinAmount, domain.ErrInvalidArgument, err)
		}
		req.FirstPaymentMinAmount = &minor
	}

	customerID, _ := notes["customer_id"].(string)
	l.Info().
		Str("provider", u.gateway.Name()).
		Str("amount", in.Amount.String()).
		Int64("amount_minor", req.Amount).
		Str("currency", currency).
		Str("receipt", receipt).
		Str("customer_id", logging.Redact(customerID, u.dev)).
		Msg("Creating order")

	order, err := u.gateway.CreateOrder(ctx, req)
	if err != nil {
		u.logGatewayError(l, err, "Error creating order")
		return nil, err
	}

	metrics.IncOrderCreated(order.Currency, order.Amount)
	l.Info().Str("order_id", order.ID).Int64("amount", order.Amount).Msg("Order created successfully")
	return order, nil
}

func (u *paymentUC) VerifyPayment(ctx context.Context, req model.VerificationRequest) (*model.Payment, error) {
	l := logging.With(ctx, u.log)
	defer logging.TraceDuration(l, "PaymentUC.VerifyPayment")()

	l.Info().Str("order_id", req.OrderID).Str("payment_id", req.PaymentID).Msg("Verifying payment signature")

	if !u.verifier.Verify(req.OrderID, req.PaymentID, req.Signature) {
		metrics.IncPaymentVerify("fail", "invalid_signature")
		l.Warn().Str("order_id", req.OrderID).Str("payment_id", req.PaymentID).Msg("Invalid payment signature")
		return nil, domain.ErrInvalidSignature
	}

	raw, err := u.gateway.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		reason := "gateway_unavailable"
		if _, ok := domain.AsGatewayError(err); ok {
			reason = "gateway_rejected"
		}
		metrics.IncPaymentVerify("fail", reason)
		u.logGatewayError(l, err, "Error verifying payment")
		return nil, err
	}

	p, err := model.PaymentFromRaw(raw)
	if err != nil {
		metrics.IncPaymentVerify("fail", "decode_error")
		l.Error().Err(err).Str("payment_id", req.PaymentID).Msg("Error decoding payment")
		return nil, err
	}

	metrics.IncPaymentVerify("ok", "")
	l.Info().
		Str("order_id", req.OrderID).
		Str("payment_id", req.PaymentID).
		Str("status", p.Status).
		Msg("Payment verified successfully")
	return p, nil
}

func (u *paymentUC) GetPayment(ctx context.Context, paymentID string) (json.RawMessage, error) {
	l := logging.With(ctx, u.log)
	l.Info().Str("payment_id", paymentID).Msg("Getting payment details")

	raw, err := u.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		el := l.With().Str("payment_id", paymentID).Logger()
		u.logGatewayError(&el, err, "Error getting payment details")
		return nil, err
	}
	l.Info().Str("payment_id", paymentID).Msg("Payment details retrieved")
	return raw, nil
}

func (u *paymentUC) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	l := logging.With(ctx, u.log)
	l.Info().Str("order_id", orderID).Msg("Getting order details")

	raw, err := u.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		el := l.With().Str("order_id", orderID).Logger()
		u.logGatewayError(&el, err, "Error getting order details")
		return nil, err
	}
	l.Info().Str("order_id", orderID).Msg("Order details retrieved")
	return raw, nil
}

// logGatewayError logs upstream rejections with the provider body and anything else as an error.
func (u *paymentUC) logGatewayError(l *zerolog.Logger, err error, msg string) {
	if ge, ok := domain.AsGatewayError(err); ok {
		ev := l.Error().Int("upstream_status", ge.Status).Str("upstream_code", ge.Code)
		if len(ge.Details) > 0 {
			ev = ev.RawJSON("upstream_error", ge.Details)
		}
		ev.Msg(msg)
		return
	}
	if errors.Is(err, domain.ErrInvalidArgument) {
		l.Warn().Err(err).Msg(msg)
		return
	}
	l.Error().Err(err).Msg(msg)
}
