package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"razorpay-relay/internal/domain"
	"razorpay-relay/internal/domain/model"
	"razorpay-relay/internal/infra/logging"

	"github.com/go-chi/chi/v5"
)

// isoMillis matches the timestamps clients already parse (UTC, millisecond precision).
const isoMillis = "2006-01-02T15:04:05.000Z"

// operation carries the fallback error text and code used when the gateway
// rejects a call without a description or code of its own.
type operation struct {
	name        string
	defaultErr  string
	defaultCode string
}

var (
	opCreateOrder   = operation{"create_order", "Failed to create order", "ORDER_CREATION_FAILED"}
	opVerifyPayment = operation{"verify_payment", "Failed to verify payment", "PAYMENT_VERIFICATION_FAILED"}
	opGetPayment    = operation{"get_payment", "Failed to get payment details", "PAYMENT_DETAILS_FAILED"}
	opGetOrder      = operation{"get_order", "Failed to get order details", "ORDER_DETAILS_FAILED"}
)

func (s *Server) createOrder(r *http.Request) (int, any) {
	in, found := inputFrom[model.CreateOrderInput](r.Context())
	if !found {
		return s.failure(r, opCreateOrder, errors.New("create order input missing from context"))
	}
	order, err := s.payUC.CreateOrder(r.Context(), in)
	if err != nil {
		return s.failure(r, opCreateOrder, err)
	}
	return http.StatusCreated, ok(order, "Order created successfully")
}

func (s *Server) verifyPayment(r *http.Request) (int, any) {
	req, found := inputFrom[model.VerificationRequest](r.Context())
	if !found {
		return s.failure(r, opVerifyPayment, errors.New("verification input missing from context"))
	}
	payment, err := s.payUC.VerifyPayment(r.Context(), req)
	if err != nil {
		return s.failure(r, opVerifyPayment, err)
	}
	return http.StatusOK, ok(payment, "Payment verified successfully")
}

func (s *Server) getPayment(r *http.Request) (int, any) {
	raw, err := s.payUC.GetPayment(r.Context(), chi.URLParam(r, "paymentId"))
	if err != nil {
		return s.failure(r, opGetPayment, err)
	}
	return http.StatusOK, ok(raw, "Payment details retrieved successfully")
}

func (s *Server) getOrder(r *http.Request) (int, any) {
	raw, err := s.payUC.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		return s.failure(r, opGetOrder, err)
	}
	return http.StatusOK, ok(raw, "Order details retrieved successfully")
}

// failure maps a use case error onto the response envelope.
func (s *Server) failure(r *http.Request, op operation, err error) (int, any) {
	if errors.Is(err, domain.ErrInvalidSignature) {
		return http.StatusBadRequest, errBadSignature
	}
	if ge, isGateway := domain.AsGatewayError(err); isGateway {
		status := ge.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		body := errorResponse{Error: ge.Description, Code: ge.Code, Details: ge.Details}
		if body.Error == "" {
			body.Error = op.defaultErr
		}
		if body.Code == "" {
			body.Code = op.defaultCode
		}
		return status, body
	}
	if errors.Is(err, domain.ErrInvalidArgument) {
		return http.StatusBadRequest, errorResponse{Error: op.defaultErr, Code: CodeValidation}
	}

	l := logging.With(r.Context(), s.log)
	l.Error().Err(err).Str("op", op.name).Str("path", r.URL.Path).Msg("request failed")
	return http.StatusInternalServerError, errInternal
}

func (s *Server) notFound(r *http.Request) (int, any) {
	l := logging.With(r.Context(), s.log)
	l.Warn().
		Str("url", r.URL.RequestURI()).
		Str("method", r.Method).
		Str("ip", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("Route not found")
	return http.StatusNotFound, notFoundResponse{
		Error:  "Route not found",
		Code:   CodeRouteNotFound,
		Path:   r.URL.RequestURI(),
		Method: r.Method,
	}
}

// ---- health ----

type healthResponse struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
	Version     string  `json:"version"`
}

type detailedHealthResponse struct {
	healthResponse
	System   systemInfo `json:"system"`
	Services struct {
		Razorpay razorpayInfo `json:"razorpay"`
	} `json:"services"`
}

type systemInfo struct {
	GoVersion  string `json:"goVersion"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	Goroutines int    `json:"goroutines"`
	Memory     struct {
		Used     string `json:"used"`
		Total    string `json:"total"`
		External string `json:"external"`
	} `json:"memory"`
}

type razorpayInfo struct {
	Environment string `json:"environment"`
	KeyID       string `json:"keyId"`
	BaseURL     string `json:"baseUrl"`
}

func (s *Server) baseHealth(message string) healthResponse {
	return healthResponse{
		Success:     true,
		Message:     message,
		Timestamp:   s.now().UTC().Format(isoMillis),
		Uptime:      s.now().Sub(s.started).Seconds(),
		Environment: s.cfg.Server.Environment,
		Version:     s.cfg.Server.Version,
	}
}

func (s *Server) health(r *http.Request) (int, any) {
	return http.StatusOK, s.baseHealth("Razorpay relay API is running")
}

func (s *Server) healthDetailed(r *http.Request) (int, any) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	resp := detailedHealthResponse{healthResponse: s.baseHealth("Detailed health check")}
	resp.System.GoVersion = runtime.Version()
	resp.System.Platform = runtime.GOOS
	resp.System.Arch = runtime.GOARCH
	resp.System.Goroutines = runtime.NumGoroutine()
	resp.System.Memory.Used = mb(ms.HeapAlloc)
	resp.System.Memory.Total = mb(ms.HeapSys)
	resp.System.Memory.External = mb(ms.Sys - ms.HeapSys)

	keyID := "Not configured"
	if s.cfg.Razorpay.KeyID != "" {
		keyID = "Configured"
	}
	resp.Services.Razorpay = razorpayInfo{
		Environment: s.cfg.Razorpay.Environment,
		KeyID:       keyID,
		BaseURL:     s.cfg.Razorpay.BaseURL,
	}
	return http.StatusOK, resp
}

func (s *Server) gatewayHealth(r *http.Request) (int, any) {
	return http.StatusOK, struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		Timestamp   string `json:"timestamp"`
		Environment string `json:"environment"`
	}{
		Success:     true,
		Message:     "Razorpay service is healthy",
		Timestamp:   s.now().UTC().Format(isoMillis),
		Environment: s.cfg.Razorpay.Environment,
	}
}

// mb rounds bytes to whole mebibytes.
func mb(b uint64) string {
	return fmt.Sprintf("%d MB", (b+1<<19)>>20)
}
