package api

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the "code" field.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeMissingAPIKey    = "MISSING_API_KEY"
	CodeInvalidAPIKey    = "INVALID_API_KEY"
	CodeServerConfig     = "SERVER_CONFIG_ERROR"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeInternal         = "INTERNAL_ERROR"
	CodeRouteNotFound    = "ROUTE_NOT_FOUND"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
)

type successResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details,omitempty"`
}

// validationResponse always carries field, even when it is empty.
type validationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Field   string `json:"field"`
}

type notFoundResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Path    string `json:"path"`
	Method  string `json:"method"`
}

var (
	errInternal        = errorResponse{Error: "Internal server error", Code: CodeInternal}
	errPayloadTooLarge = errorResponse{Error: "Request entity too large", Code: CodePayloadTooLarge}
	errRateLimited     = errorResponse{Error: "Too many requests from this IP, please try again later.", Code: CodeRateLimited}
	errMissingAPIKey   = errorResponse{Error: "API key is required", Code: CodeMissingAPIKey}
	errServerConfig    = errorResponse{Error: "Server configuration error", Code: CodeServerConfig}
	errInvalidAPIKey   = errorResponse{Error: "Invalid API key", Code: CodeInvalidAPIKey}
	errBadSignature    = errorResponse{Error: "Invalid payment signature", Code: CodeInvalidSignature}
)

func ok(data any, message string) successResponse {
	return successResponse{Success: true, Data: data, Message: message}
}

// handlerFunc is a pure handler: it only computes the status and body.
type handlerFunc func(r *http.Request) (int, any)

func (h handlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, body := h(r)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
