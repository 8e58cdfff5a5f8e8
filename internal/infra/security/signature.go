package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SignatureVerifier checks checkout signatures issued by the gateway.
// The signature is hex(HMAC-SHA256(keySecret, orderID + "|" + paymentID)).
type SignatureVerifier struct {
	secret []byte
}

// NewSignatureVerifier binds a verifier to the gateway key secret.
func NewSignatureVerifier(secret string) (*SignatureVerifier, error) {
	if secret == "" {
		return nil, errors.New("signature secret is empty")
	}
	return &SignatureVerifier{secret: []byte(secret)}, nil
}

// Sign returns the lowercase hex digest for the given order/payment pair.
func (v *SignatureVerifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the expected digest.
// A mismatch is a normal false result, not an error.
func (v *SignatureVerifier) Verify(orderID, paymentID, signature string) bool {
	expected := v.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
