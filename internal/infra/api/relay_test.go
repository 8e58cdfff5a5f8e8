//go:build !integration

package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"razorpay-relay/internal/config"
	"razorpay-relay/internal/infra/adapters/payment"
	"razorpay-relay/internal/infra/api"
	"razorpay-relay/internal/infra/security"
	"razorpay-relay/internal/usecase"
)

// fakeRazorpay is a minimal upstream that records what the relay sends.
type fakeRazorpay struct {
	orderHits   atomic.Int32
	paymentHits atomic.Int32
	lastOrder   atomic.Value // map[string]any
}

func (f *fakeRazorpay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/orders":
		f.orderHits.Add(1)
		var body map[string]any
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		f.lastOrder.Store(body)
		resp := map[string]any{
			"id": "order_e2e", "entity": "order", "amount": body["amount"], "amount_paid": 0,
			"amount_due": body["amount"], "currency": body["currency"], "receipt": body["receipt"],
			"status": "created", "attempts": 0, "notes": body["notes"], "created_at": 1700000000,
		}
		_ = json.NewEncoder(w).Encode(resp)
	case r.URL.Path == "/v1/payments/pay_e2e":
		f.paymentHits.Add(1)
		_, _ = w.Write([]byte(`{"id":"pay_e2e","entity":"payment","order_id":"order_e2e","amount":10050,
			"currency":"INR","status":"captured","method":"upi","captured":true,"description":null,
			"email":"a@b.in","contact":"+919876543210","created_at":1700000001}`))
	case strings.HasPrefix(r.URL.Path, "/v1/payments/"):
		f.paymentHits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The requested URL was not found on the server."}}`))
	}
}

func newRelay(t *testing.T) (http.Handler, *fakeRazorpay, *security.SignatureVerifier) {
	t.Helper()
	upstream := &fakeRazorpay{}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.Razorpay.BaseURL = srv.URL + "/v1"

	gw, err := payment.NewRazorpayGateway(cfg.Razorpay)
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	verifier, err := security.NewSignatureVerifier(cfg.Razorpay.KeySecret)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	uc := usecase.NewPaymentUseCase(gw, verifier, config.OrderConfig{DefaultDescription: "Wallet topup"}, newLogger(), false)
	return api.NewServer(cfg, uc, nil, newLogger()).Handler(), upstream, verifier
}

func TestRelay_CreateOrderConvertsToMinorUnits(t *testing.T) {
	h, upstream, _ := newRelay(t)

	rec, body := do(t, h, http.MethodPost, "/api/razorpay/create-order", `{"amount":100.50}`, withKey())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data := body["data"].(map[string]any)
	if data["amount"].(float64) != 10050 || data["currency"] != "INR" {
		t.Fatalf("unexpected order %v", data)
	}
	if !strings.HasPrefix(data["receipt"].(string), "receipt_") {
		t.Fatalf("unexpected receipt %v", data["receipt"])
	}

	sent := upstream.lastOrder.Load().(map[string]any)
	if sent["amount"].(float64) != 10050 || sent["currency"] != "INR" || sent["partial_payment"] != false {
		t.Fatalf("unexpected upstream payload %v", sent)
	}
	notes := sent["notes"].(map[string]any)
	if notes["description"] != "Wallet topup" || notes["customer_id"] != "user" {
		t.Fatalf("unexpected notes %v", notes)
	}
}

func TestRelay_VerifyPayment(t *testing.T) {
	h, upstream, verifier := newRelay(t)
	sig := verifier.Sign("order_e2e", "pay_e2e")
	body := func(sig string) string {
		return `{"razorpay_order_id":"order_e2e","razorpay_payment_id":"pay_e2e","razorpay_signature":"` + sig + `"}`
	}

	t.Run("tampered signature never reaches upstream", func(t *testing.T) {
		tampered := sig[:len(sig)-1] + "0"
		if tampered == sig {
			tampered = sig[:len(sig)-1] + "1"
		}
		rec, resp := do(t, h, http.MethodPost, "/api/razorpay/verify-payment", body(tampered), withKey())
		expectError(t, rec, resp, http.StatusBadRequest, "INVALID_SIGNATURE")
		if upstream.paymentHits.Load() != 0 {
			t.Fatalf("expected zero upstream calls, got %d", upstream.paymentHits.Load())
		}
	})

	t.Run("valid signature returns the payment subset, repeatably", func(t *testing.T) {
		var first string
		for i := 0; i < 2; i++ {
			rec, resp := do(t, h, http.MethodPost, "/api/razorpay/verify-payment", body(sig), withKey())
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			data := resp["data"].(map[string]any)
			if data["payment_id"] != "pay_e2e" || data["status"] != "captured" || data["captured"] != true {
				t.Fatalf("unexpected payment %v", data)
			}
			if _, present := data["description"]; !present {
				t.Fatal("description should be present as null")
			}
			b, _ := json.Marshal(data)
			if i == 0 {
				first = string(b)
			} else if string(b) != first {
				t.Fatalf("verification not idempotent:\n%s\n%s", first, b)
			}
		}
	})
}

func TestRelay_UpstreamErrorPassthrough(t *testing.T) {
	h, _, _ := newRelay(t)

	rec, body := do(t, h, http.MethodGet, "/api/razorpay/payment/pay_missing", "", withKey())
	expectError(t, rec, body, http.StatusBadRequest, "BAD_REQUEST_ERROR")
	if body["error"] != "The id provided does not exist" {
		t.Fatalf("unexpected message %v", body["error"])
	}
	details := body["details"].(map[string]any)
	if details["error"].(map[string]any)["code"] != "BAD_REQUEST_ERROR" {
		t.Fatalf("upstream body not preserved: %v", details)
	}
}
