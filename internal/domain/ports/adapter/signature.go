package adapter

// SignatureVerifier checks the checkout signature returned to the client by the gateway.
type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}
