package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"   // order exists, no payment attempt yet
	OrderStatusAttempted OrderStatus = "attempted" // at least one payment attempt made
	OrderStatusPaid      OrderStatus = "paid"      // fully captured
)

const (
	DefaultCurrency  = "INR"
	MaxReceiptLength = 40
	MaxNotes         = 15
	ReceiptPrefix    = "receipt_"
)

// Order is the subset of a gateway order returned to clients.
// Amounts are in minor units (paise for INR).
type Order struct {
	ID         string      `json:"id"`
	Entity     string      `json:"entity"`
	Amount     int64       `json:"amount"`
	AmountPaid int64       `json:"amount_paid"`
	AmountDue  int64       `json:"amount_due"`
	Currency   string      `json:"currency"`
	Receipt    string      `json:"receipt"`
	Status     OrderStatus `json:"status"`
	Attempts   int         `json:"attempts"`
	Notes      Notes       `json:"notes"`
	CreatedAt  int64       `json:"created_at"`
}

// CreateOrderInput is a validated create-order request. Amounts are major units
// kept as exact decimals until converted for the gateway.
type CreateOrderInput struct {
	Amount                decimal.Decimal
	Currency              string
	Receipt               string
	Notes                 map[string]any
	PartialPayment        bool
	FirstPaymentMinAmount *decimal.Decimal
}

// OrderRequest is the payload sent upstream to create an order.
type OrderRequest struct {
	Amount                int64          `json:"amount"`
	Currency              string         `json:"currency"`
	Receipt               string         `json:"receipt"`
	Notes                 map[string]any `json:"notes"`
	PartialPayment        bool           `json:"partial_payment"`
	FirstPaymentMinAmount *int64         `json:"first_payment_min_amount,omitempty"`
}

// ErrAmountOutOfRange is returned when an amount has no int64 minor-unit form.
var ErrAmountOutOfRange = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ToMinorUnits converts a major-unit amount to integer minor units.
// Sub-unit fractions are truncated toward zero. Amounts whose minor-unit
// value does not fit in an int64 return ErrAmountOutOfRange.
func ToMinorUnits(major decimal.Decimal) (int64, error) {
	if major.IsZero() {
		return 0, nil
	}
	// a non-zero coefficient at exponent 19+ is already past MaxInt64/100
	if major.Exponent() > 18 {
		return 0, ErrAmountOutOfRange
	}
	minor := major.Mul(hundred).Truncate(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, ErrAmountOutOfRange
	}
	return minor.IntPart(), nil
}

// Notes is the free-form key/value map attached to gateway entities.
// The gateway encodes an empty map as [], which decodes to an empty Notes.
type Notes map[string]any

func (n *Notes) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("[]")) {
		*n = Notes{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*n = m
	return nil
}
