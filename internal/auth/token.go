package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
)

// PurposePasswordReset marks tokens handed out by a successful OTP check.
const PurposePasswordReset = "password-reset"

// Claims is the JWT payload for both login and password-reset tokens.
type Claims struct {
	ID      string `json:"id,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and checks HS256 JWTs.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and login-token lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate issues a login token bound to the user's id.
func (t *TokenManager) Generate(user models.User) (string, error) {
	return t.sign(Claims{ID: user.ID}, user.ID, t.ttl)
}

// GenerateResetToken issues a short-lived proof that mobile passed OTP
// verification. The returned jti identifies the token so callers can make it
// single-use.
func (t *TokenManager) GenerateResetToken(mobile string, ttl time.Duration) (token, jti string, err error) {
	jti = uuid.NewString()
	claims := Claims{Purpose: PurposePasswordReset}
	claims.RegisteredClaims.ID = jti
	token, err = t.sign(claims, mobile, ttl)
	return token, jti, err
}

func (t *TokenManager) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := t.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        claims.RegisteredClaims.ID,
		Issuer:    t.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies signature, issuer and time bounds.
func (t *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

var errWrongResetToken = errors.New("token is not a reset token for this number")

// VerifyResetToken checks raw is a valid reset token issued for mobile and
// returns its jti.
func (t *TokenManager) VerifyResetToken(raw, mobile string) (string, error) {
	claims, err := t.Parse(raw)
	if err != nil {
		return "", err
	}
	if claims.Purpose != PurposePasswordReset || claims.Subject != mobile || claims.RegisteredClaims.ID == "" {
		return "", errWrongResetToken
	}
	return claims.RegisteredClaims.ID, nil
}
