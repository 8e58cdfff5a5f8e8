package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidSignature   = errors.New("invalid payment signature")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// GatewayError is returned when the payment gateway answered with a non-2xx status.
// Status, Code and Description are taken from the provider's error body when present;
// Details holds the raw body for debugging.
type GatewayError struct {
	Status      int
	Code        string
	Description string
	Details     json.RawMessage
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway http %d: %s: %s", e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("gateway http %d", e.Status)
}

// AsGatewayError unwraps err into a *GatewayError if one is in the chain.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
