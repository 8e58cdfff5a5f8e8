package api

import (
	"net/http"
	"time"

	"razorpay-relay/internal/config"
	"razorpay-relay/internal/infra/metrics"
	"razorpay-relay/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server exposes the payment use case over HTTP.
type Server struct {
	cfg     *config.Config
	payUC   usecase.PaymentUseCase
	limiter RateLimiter // nil disables rate limiting
	log     *zerolog.Logger
	started time.Time
	now     func() time.Time
}

func NewServer(cfg *config.Config, payUC usecase.PaymentUseCase, limiter RateLimiter, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		payUC:   payUC,
		limiter: limiter,
		log:     logger,
		started: time.Now(),
		now:     time.Now,
	}
}

// Handler builds the full router, wrapped for tracing.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(
		TraceID(s.log),
		middleware.RealIP,
		RequestLog(s.log),
		Recover(s.log),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(
		SecureHeaders(),
		middleware.Compress(5),
		BodyLimit(s.cfg.Server.BodyLimitBytes),
	)

	// set before Route so sub-routers inherit them
	r.NotFound(handlerFunc(s.notFound).ServeHTTP)
	r.MethodNotAllowed(handlerFunc(s.notFound).ServeHTTP)

	r.Method(http.MethodGet, "/health", handlerFunc(s.health))
	r.Method(http.MethodGet, "/health/detailed", handlerFunc(s.healthDetailed))
	if s.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimit(s.limiter, s.cfg.RateLimit, s.log))
		}
		r.Route("/razorpay", func(r chi.Router) {
			r.Use(APIKeyGate(s.cfg.Auth.APIKey, s.log))

			r.With(Validate(orderSchema, s.log)).Method(http.MethodPost, "/create-order", handlerFunc(s.createOrder))
			r.With(Validate(verifySchema, s.log)).Method(http.MethodPost, "/verify-payment", handlerFunc(s.verifyPayment))
			r.Method(http.MethodGet, "/payment/{paymentId}", handlerFunc(s.getPayment))
			r.Method(http.MethodGet, "/order/{orderId}", handlerFunc(s.getOrder))
			r.Method(http.MethodGet, "/health", handlerFunc(s.gatewayHealth))
		})
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
