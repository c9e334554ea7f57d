package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port         string
	DatabaseURL  string
	DatabaseName string
	RedisURL     string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	CORSOrigins []string
	CORSMethods []string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	CountryCode      string
	OTPTTL           time.Duration
	ResetRequiresOTP bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:             fallback(os.Getenv("PORT"), "5000"),
		DatabaseURL:      firstSet("DATABASE_URL", "MONGO_URI"),
		DatabaseName:     strings.TrimSpace(os.Getenv("DATABASE_NAME")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:        fallback(os.Getenv("JWT_ISSUER"), "smartcart-backend"),
		JWTTTL:           minutes("JWT_TTL_MINUTES", 60),
		CORSOrigins:      parseCSV(fallback(firstSet("CLIENT_URL", "CORS_ALLOWED_ORIGINS"), "*"), "*"),
		CORSMethods:      parseCSV(fallback(os.Getenv("CORS_ALLOWED_METHODS"), "GET,POST,PUT,DELETE"), "GET"),
		TwilioAccountSID: strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		TwilioAuthToken:  strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		TwilioFromNumber: strings.TrimSpace(os.Getenv("TWILIO_PHONE_NUMBER")),
		CountryCode:      fallback(os.Getenv("COUNTRY_CODE"), "+91"),
		OTPTTL:           minutes("OTP_TTL_MINUTES", 5),
		ResetRequiresOTP: parseBool(os.Getenv("RESET_REQUIRES_OTP")),
		LogLevel:         fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:        fallback(os.Getenv("LOG_FORMAT"), "json"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	var missing []string
	for _, v := range []struct{ name, value string }{
		{"TWILIO_ACCOUNT_SID", cfg.TwilioAccountSID},
		{"TWILIO_AUTH_TOKEN", cfg.TwilioAuthToken},
		{"TWILIO_PHONE_NUMBER", cfg.TwilioFromNumber},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%s required", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

// firstSet returns the first non-empty value among the named variables.
func firstSet(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func minutes(key string, def int) time.Duration {
	raw := fallback(os.Getenv(key), strconv.Itoa(def))
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	return time.Duration(def) * time.Minute
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func parseCSV(input, def string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{def}
	}
	return out
}
