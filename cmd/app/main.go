// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"razorpay-relay/internal/config"
	payAdapters "razorpay-relay/internal/infra/adapters/payment"
	"razorpay-relay/internal/infra/api"
	"razorpay-relay/internal/infra/logging"
	"razorpay-relay/internal/infra/metrics"
	red "razorpay-relay/internal/infra/redis"
	"razorpay-relay/internal/infra/security"
	"razorpay-relay/internal/infra/tracing"
	"razorpay-relay/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no PII redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	// ---- Metrics / tracing ----
	if cfg.Metrics.Enabled {
		metrics.MustRegister()
	}
	metrics.SetBuildInfo(cfg.Server.Version, cfg.Server.Environment)

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing, cfg.Server.Version)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing")
	}

	// ---- Gateway + verifier ----
	gateway, err := payAdapters.NewRazorpayGateway(cfg.Razorpay)
	if err != nil {
		logger.Fatal().Err(err).Msg("razorpay gateway")
	}
	verifier, err := security.NewSignatureVerifier(cfg.Razorpay.KeySecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("signature verifier")
	}

	// ---- Rate limiting (redis when configured, in-process otherwise) ----
	var counter red.Counter
	if cfg.Redis.URL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		redisClient, err := red.NewClient(dialCtx, &cfg.Redis)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.URL).Msg("redis")
		}
		defer redisClient.Close()
		counter = redisClient
	} else {
		logger.Warn().Msg("redis.url not set; rate limit counters are kept in process memory")
		counter = red.NewMemoryCounter()
	}
	limiter := red.NewRateLimiter(counter)
	logger.Info().
		Dur("window", cfg.RateLimit.Window).
		Int("max_requests", cfg.RateLimit.MaxRequests).
		Bool("shared", cfg.Redis.URL != "").
		Msg("rate limiting enabled")

	// ---- Use case + HTTP ----
	paymentUC := usecase.NewPaymentUseCase(gateway, verifier, cfg.Order, logger, cfg.Runtime.Dev)
	srv := api.NewServer(cfg, paymentUC, limiter, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// upstream calls are bounded at razorpay.timeout; leave room to write the response
		WriteTimeout: cfg.Razorpay.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("environment", cfg.Server.Environment).
			Str("razorpay_environment", cfg.Razorpay.Environment).
			Msg("razorpay relay listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		logger.Error().Err(err).Msg("http server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("tracing shutdown")
	}
	logger.Info().Msg("bye")
}
