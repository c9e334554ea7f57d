// Package otp holds the transient one-time codes that gate password resets.
//
// A Store keeps at most one Entry per key: Set overwrites, Delete consumes.
// Entries are never persisted to the document store.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Entry is an issued code and the instant it stops being accepted.
type Entry struct {
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the entry is no longer valid at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is the key/value table of outstanding codes.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// Generator produces fresh codes.
type Generator interface {
	Generate() (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate() (string, error) { return f() }

// Fixed always returns code. Tests use it to make the issued OTP predictable.
func Fixed(code string) Generator {
	return GeneratorFunc(func() (string, error) { return code, nil })
}

// Numeric returns a generator of zero-padded random codes with the given
// number of decimal digits.
func Numeric(digits int) Generator {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	return GeneratorFunc(func() (string, error) {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		return fmt.Sprintf("%0*d", digits, n), nil
	})
}
