package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"razorpay-relay/internal/infra/logging"
	"razorpay-relay/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// APIKeyGate admits requests that present the shared API key, either in
// x-api-key or as "Authorization: Bearer <key>".
// Checks run in order: key presented, key configured, key matches.
func APIKeyGate(expected string, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logging.With(r.Context(), logger)
			presented := presentedKey(r)

			if presented == "" {
				metrics.IncAuthFailure(CodeMissingAPIKey)
				l.Warn().
					Str("ip", r.RemoteAddr).
					Str("user_agent", r.UserAgent()).
					Str("path", r.URL.Path).
					Msg("API key missing")
				writeJSON(w, http.StatusUnauthorized, errMissingAPIKey)
				return
			}

			if expected == "" {
				metrics.IncAuthFailure(CodeServerConfig)
				l.Error().Msg("API key not configured")
				writeJSON(w, http.StatusInternalServerError, errServerConfig)
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
				metrics.IncAuthFailure(CodeInvalidAPIKey)
				l.Warn().
					Str("ip", r.RemoteAddr).
					Str("user_agent", r.UserAgent()).
					Str("path", r.URL.Path).
					Msg("Invalid API key provided")
				writeJSON(w, http.StatusUnauthorized, errInvalidAPIKey)
				return
			}

			l.Debug().Str("ip", r.RemoteAddr).Str("path", r.URL.Path).Msg("API key validated")
			next.ServeHTTP(w, r)
		})
	}
}

func presentedKey(r *http.Request) string {
	if k := r.Header.Get("X-Api-Key"); k != "" {
		return k
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
