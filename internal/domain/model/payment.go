package model

import (
	"encoding/json"
	"fmt"
)

// VerificationRequest is what the client posts back after checkout.
// It is consumed once and never stored.
type VerificationRequest struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Payment is the normalized view of a verified payment.
type Payment struct {
	PaymentID   string  `json:"payment_id"`
	OrderID     string  `json:"order_id"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"` // created|authorized|captured|refunded|failed
	Method      string  `json:"method"`
	Captured    bool    `json:"captured"`
	Description *string `json:"description"`
	Email       *string `json:"email"`
	Contact     *string `json:"contact"`
	Name        *string `json:"name"`
	CreatedAt   int64   `json:"created_at"`
}

// gatewayPayment mirrors the provider's payment entity for the fields we keep.
// description, email, contact and name may be null or absent upstream.
type gatewayPayment struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	Method      string  `json:"method"`
	Captured    bool    `json:"captured"`
	Description *string `json:"description"`
	Email       *string `json:"email"`
	Contact     *string `json:"contact"`
	Name        *string `json:"name"`
	CreatedAt   int64   `json:"created_at"`
}

// PaymentFromRaw decodes a raw gateway payment entity into a Payment.
func PaymentFromRaw(raw json.RawMessage) (*Payment, error) {
	var gp gatewayPayment
	if err := json.Unmarshal(raw, &gp); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}
	return &Payment{
		PaymentID:   gp.ID,
		OrderID:     gp.OrderID,
		Amount:      gp.Amount,
		Currency:    gp.Currency,
		Status:      gp.Status,
		Method:      gp.Method,
		Captured:    gp.Captured,
		Description: gp.Description,
		Email:       gp.Email,
		Contact:     gp.Contact,
		Name:        gp.Name,
		CreatedAt:   gp.CreatedAt,
	}, nil
}
