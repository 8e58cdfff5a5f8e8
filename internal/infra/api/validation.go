package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"razorpay-relay/internal/domain/model"
	"razorpay-relay/internal/infra/logging"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FieldError is the first rule a payload broke.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// schema checks a decoded JSON object and returns the typed input on success.
type schema func(body map[string]any) (any, *FieldError)

var maxSafeAmount = decimal.NewFromInt(1<<53 - 1)

// Numbers are parsed only within these bounds so that comparisons and
// rescaling stay cheap regardless of what the client sends.
const (
	maxNumberLength = 64
	maxExponent     = 64
)

type numberKind int

const (
	numberOK numberKind = iota
	numberInvalid
	numberUnsafe
)

type inputKey struct{}

// Validate decodes the JSON body, runs s and stores the typed result on the
// request context. The next handler only runs for a valid payload.
func Validate(s schema, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, status, ferr := decodeObject(r)
			var in any
			if ferr == nil {
				in, ferr = s(body)
			}
			if ferr != nil {
				if status == http.StatusRequestEntityTooLarge {
					writeJSON(w, status, errPayloadTooLarge)
					return
				}
				l := logging.With(r.Context(), logger)
				l.Warn().
					Str("error", ferr.Message).
					Str("field", ferr.Field).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("Validation error")
				writeJSON(w, http.StatusBadRequest, validationResponse{
					Error: ferr.Message,
					Code:  CodeValidation,
					Field: ferr.Field,
				})
				return
			}
			ctx := context.WithValue(r.Context(), inputKey{}, in)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func inputFrom[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(inputKey{}).(T)
	return v, ok
}

// decodeObject reads the body as a JSON object. Numbers keep their exact text.
// An empty body is an empty object.
func decodeObject(r *http.Request) (map[string]any, int, *FieldError) {
	if r.Body == nil {
		return map[string]any{}, 0, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, http.StatusRequestEntityTooLarge, &FieldError{Message: "Request entity too large"}
		}
		return nil, http.StatusBadRequest, &FieldError{Message: "Unable to read request body"}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]any{}, 0, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return nil, http.StatusBadRequest, &FieldError{Message: "Invalid JSON payload"}
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return nil, http.StatusBadRequest, &FieldError{Message: `"value" must be of type object`}
	}
	return obj, 0, nil
}

var orderKeys = []string{"amount", "currency", "receipt", "notes", "partial_payment", "first_payment_min_amount"}

// orderSchema validates a create-order payload into model.CreateOrderInput.
func orderSchema(body map[string]any) (any, *FieldError) {
	var in model.CreateOrderInput

	v, present := body["amount"]
	if !present {
		return nil, &FieldError{"amount", "Amount is required"}
	}
	amount, ferr := positiveAmount("amount", v, "Amount must be a number", "Amount must be positive")
	if ferr != nil {
		return nil, ferr
	}
	in.Amount = amount

	in.Currency = model.DefaultCurrency
	if v, present := body["currency"]; present {
		if s, isStr := v.(string); !isStr || s != model.DefaultCurrency {
			return nil, &FieldError{"currency", `"currency" must be [INR]`}
		}
	}

	if v, present := body["receipt"]; present {
		s, err := requireString("receipt", v)
		if err != nil {
			return nil, err
		}
		if utf8.RuneCountInString(s) > model.MaxReceiptLength {
			return nil, &FieldError{"receipt", fmt.Sprintf(`"receipt" length must be less than or equal to %d characters long`, model.MaxReceiptLength)}
		}
		in.Receipt = s
	}

	if v, present := body["notes"]; present {
		notes, isObj := v.(map[string]any)
		if !isObj {
			return nil, &FieldError{"notes", `"notes" must be of type object`}
		}
		if len(notes) > model.MaxNotes {
			return nil, &FieldError{"notes", fmt.Sprintf(`"notes" must have less than or equal to %d keys`, model.MaxNotes)}
		}
		in.Notes = notes
	}

	if v, present := body["partial_payment"]; present {
		b, isBool := toBool(v)
		if !isBool {
			return nil, &FieldError{"partial_payment", `"partial_payment" must be a boolean`}
		}
		in.PartialPayment = b
	}

	if v, present := body["first_payment_min_amount"]; present {
		d, ferr := positiveAmount("first_payment_min_amount", v,
			`"first_payment_min_amount" must be a number`,
			`"first_payment_min_amount" must be a positive number`)
		if ferr != nil {
			return nil, ferr
		}
		in.FirstPaymentMinAmount = &d
	}

	if err := rejectUnknown(body, orderKeys); err != nil {
		return nil, err
	}
	return in, nil
}

var verifyKeys = []string{"razorpay_order_id", "razorpay_payment_id", "razorpay_signature"}

// verifySchema validates a verify-payment payload into model.VerificationRequest.
func verifySchema(body map[string]any) (any, *FieldError) {
	vals := make([]string, len(verifyKeys))
	for i, k := range verifyKeys {
		v, present := body[k]
		if !present {
			return nil, &FieldError{k, fmt.Sprintf("%q is required", k)}
		}
		s, err := requireString(k, v)
		if err != nil {
			return nil, err
		}
		vals[i] = s
	}
	if err := rejectUnknown(body, verifyKeys); err != nil {
		return nil, err
	}
	return model.VerificationRequest{OrderID: vals[0], PaymentID: vals[1], Signature: vals[2]}, nil
}

func requireString(field string, v any) (string, *FieldError) {
	s, isStr := v.(string)
	if !isStr {
		return "", &FieldError{field, fmt.Sprintf("%q must be a string", field)}
	}
	if s == "" {
		return "", &FieldError{field, fmt.Sprintf("%q is not allowed to be empty", field)}
	}
	return s, nil
}

// rejectUnknown reports the first undeclared key in lexical order.
func rejectUnknown(body map[string]any, allowed []string) *FieldError {
	var unknown []string
	for k := range body {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &FieldError{unknown[0], fmt.Sprintf("%q is not allowed", unknown[0])}
}

// positiveAmount checks v is a number, within the safe integer range, then positive.
func positiveAmount(field string, v any, notNumber, notPositive string) (decimal.Decimal, *FieldError) {
	d, kind := toDecimal(v)
	switch {
	case kind == numberInvalid:
		return decimal.Decimal{}, &FieldError{field, notNumber}
	case kind == numberUnsafe || d.Abs().GreaterThan(maxSafeAmount):
		return decimal.Decimal{}, &FieldError{field, fmt.Sprintf("%q must be a safe number", field)}
	case !d.IsPositive():
		return decimal.Decimal{}, &FieldError{field, notPositive}
	}
	return d, nil
}

// toDecimal accepts JSON numbers and numeric strings. Magnitudes far past the
// safe range come back as numberUnsafe without being expanded.
func toDecimal(v any) (decimal.Decimal, numberKind) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return decimal.Decimal{}, numberInvalid
	}
	if s == "" || len(s) > maxNumberLength {
		return decimal.Decimal{}, numberInvalid
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, numberInvalid
	}
	switch exp := d.Exponent(); {
	case d.IsZero():
		return decimal.Zero, numberOK
	case exp > maxExponent:
		return decimal.Decimal{}, numberUnsafe
	case exp < -maxExponent:
		return decimal.Decimal{}, numberInvalid
	}
	return d, numberOK
}

// toBool accepts JSON booleans and the strings "true"/"false" in any case.
func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
