package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/GovarthanahariN/CartProjectBE/internal/auth"
	"github.com/GovarthanahariN/CartProjectBE/internal/carts"
	"github.com/GovarthanahariN/CartProjectBE/internal/config"
	"github.com/GovarthanahariN/CartProjectBE/internal/logging"
	"github.com/GovarthanahariN/CartProjectBE/internal/metrics"
	"github.com/GovarthanahariN/CartProjectBE/internal/otp"
	"github.com/GovarthanahariN/CartProjectBE/internal/server"
	"github.com/GovarthanahariN/CartProjectBE/internal/sms"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage/mongo"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		logging.Info().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("init database")
	}

	otps, closeOTP, err := openOTPStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("init otp store")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	sender := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	authSvc := auth.NewService(store, tokens, otps, sender, auth.Options{
		CountryCode:       cfg.CountryCode,
		OTPTTL:            cfg.OTPTTL,
		RequireResetProof: cfg.ResetRequiresOTP,
	})
	cartSvc := carts.NewService(store, nil)

	srv := server.New(cfg, server.Deps{
		Auth:    authSvc,
		Carts:   cartSvc,
		Store:   store,
		Metrics: metrics.New(),
	})

	go func() {
		logging.Info().Str("addr", cfg.HTTPAddress()).Msg("smartcart backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := closeOTP(); err != nil {
		logging.Error().Err(err).Msg("close otp store")
	}
	if err := store.Close(ctxShutdown); err != nil {
		logging.Error().Err(err).Msg("close database")
	}
	logging.Info().Msg("server stopped")
}

// openStore picks the backend from the connection string scheme.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	scheme, _, _ := strings.Cut(cfg.DatabaseURL, "://")
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return mongo.NewStore(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	case "postgres", "postgresql":
		return postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// openOTPStore uses Redis when REDIS_URL is set and the in-process map otherwise.
func openOTPStore(ctx context.Context, cfg config.Config) (otp.Store, func() error, error) {
	if cfg.RedisURL == "" {
		return otp.NewMemoryStore(), func() error { return nil }, nil
	}
	rs, err := otp.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return rs, rs.Close, nil
}
