package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GovarthanahariN/CartProjectBE/internal/apperr"
	"github.com/GovarthanahariN/CartProjectBE/internal/logging"
	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/otp"
	"github.com/GovarthanahariN/CartProjectBE/internal/sms"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

const minPasswordLength = 6

// Client-facing messages.
const (
	msgAllFieldsRequired = "All fields are required"
	msgPasswordMismatch  = "Passwords do not match"
	msgUserExists        = "User already exists"
	msgUserNotFound      = "User not found."
	msgInvalidCreds      = "Invalid credentials."
	msgInvalidOTP        = "Invalid OTP or OTP has expired."
	msgWeakPassword      = "Password should be at least 6 characters long."
	msgPasswordTooLong   = "Password should be at most 72 bytes long."
	msgVerifyFirst       = "OTP verification is required before resetting the password."
)

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	CountryCode string
	OTPTTL      time.Duration
	// ResetTokenTTL bounds how long a verified OTP may be turned into a reset.
	ResetTokenTTL time.Duration
	// RequireResetProof makes ResetPassword demand the token VerifyOTP returns.
	RequireResetProof bool

	Hasher    PasswordHasher
	Generator otp.Generator
	Clock     func() time.Time
}

// Service implements signup, login and the OTP password-recovery flow.
type Service struct {
	users  storage.UserStore
	tokens *TokenManager
	otps   otp.Store
	sender sms.Sender

	countryCode   string
	otpTTL        time.Duration
	resetTokenTTL time.Duration
	requireProof  bool
	hasher        PasswordHasher
	codes         otp.Generator
	now           func() time.Time
}

// NewService wires the service to its collaborators.
func NewService(users storage.UserStore, tokens *TokenManager, otps otp.Store, sender sms.Sender, opts Options) *Service {
	s := &Service{
		users:         users,
		tokens:        tokens,
		otps:          otps,
		sender:        sender,
		countryCode:   opts.CountryCode,
		otpTTL:        opts.OTPTTL,
		resetTokenTTL: opts.ResetTokenTTL,
		requireProof:  opts.RequireResetProof,
		hasher:        opts.Hasher,
		codes:         opts.Generator,
		now:           opts.Clock,
	}
	if s.countryCode == "" {
		s.countryCode = "+91"
	}
	if s.otpTTL <= 0 {
		s.otpTTL = 5 * time.Minute
	}
	if s.resetTokenTTL <= 0 {
		s.resetTokenTTL = 10 * time.Minute
	}
	if s.hasher == nil {
		s.hasher = BcryptHasher{}
	}
	if s.codes == nil {
		s.codes = otp.Numeric(4)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Canonical returns mobile in stored form.
func (s *Service) Canonical(mobile string) string {
	return Canonicalize(s.countryCode, mobile)
}

// SignupInput is the signup form.
type SignupInput struct {
	Username        string
	Mobile          string
	Password        string
	ConfirmPassword string
}

// Signup registers a new user.
func (s *Service) Signup(ctx context.Context, in SignupInput) error {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Mobile) == "" || in.Password == "" || in.ConfirmPassword == "" {
		return apperr.New(apperr.Validation, msgAllFieldsRequired)
	}
	if in.Password != in.ConfirmPassword {
		return apperr.New(apperr.Validation, msgPasswordMismatch)
	}
	if len(in.Password) > maxPasswordBytes {
		return apperr.New(apperr.Validation, msgPasswordTooLong)
	}

	mobile := s.Canonical(in.Mobile)
	_, err := s.users.FindByMobile(ctx, mobile)
	switch {
	case err == nil:
		return apperr.New(apperr.Conflict, msgUserExists)
	case !errors.Is(err, storage.ErrNotFound):
		return apperr.Wrap(apperr.Internal, "Server error during signup", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Server error during signup", fmt.Errorf("hash password: %w", err))
	}
	_, err = s.users.CreateUser(ctx, models.User{
		Username:     strings.TrimSpace(in.Username),
		Mobile:       mobile,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return apperr.New(apperr.Conflict, msgUserExists)
		}
		return apperr.Wrap(apperr.Internal, "Server error during signup", err)
	}
	logging.Ctx(ctx).Info().Str("mobilenum", mobile).Msg("user registered")
	return nil
}

// Login checks credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, mobile, password string) (string, error) {
	if strings.TrimSpace(mobile) == "" || password == "" {
		return "", apperr.New(apperr.Validation, "Mobile number and password are required.")
	}
	user, err := s.findUser(ctx, s.Canonical(mobile), "Server error during login")
	if err != nil {
		return "", err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", apperr.Wrap(apperr.Unauthorized, msgInvalidCreds, err)
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "Server error during login", fmt.Errorf("sign token: %w", err))
	}
	return token, nil
}

// RequestPasswordReset issues a fresh OTP for mobile and texts it.
// Any earlier outstanding code for the number is replaced.
func (s *Service) RequestPasswordReset(ctx context.Context, mobile string) error {
	if strings.TrimSpace(mobile) == "" {
		return apperr.New(apperr.Validation, "Mobile number is required.")
	}
	const failMsg = "Server error during OTP request"
	canonical := s.Canonical(mobile)
	if _, err := s.findUser(ctx, canonical, failMsg); err != nil {
		return err
	}

	code, err := s.codes.Generate()
	if err != nil {
		return apperr.Wrap(apperr.Internal, failMsg, err)
	}
	entry := otp.Entry{Code: code, ExpiresAt: s.now().Add(s.otpTTL)}
	if err := s.otps.Set(ctx, canonical, entry); err != nil {
		return apperr.Wrap(apperr.Internal, failMsg, err)
	}
	if err := s.sender.Send(ctx, canonical, "Your OTP code is "+code); err != nil {
		return apperr.Wrap(apperr.Internal, failMsg, err)
	}
	logging.Ctx(ctx).Info().Str("mobilenum", canonical).Time("expires_at", entry.ExpiresAt).Msg("otp issued")
	return nil
}

// VerifyOTP consumes the outstanding code for mobile when it matches and has
// not expired. The returned token proves the verification to ResetPassword.
// An expired entry is left in place until it is overwritten.
// When proof is required, the token's jti is recorded so it can be used once.
func (s *Service) VerifyOTP(ctx context.Context, mobile, code string) (string, error) {
	if strings.TrimSpace(mobile) == "" || code == "" {
		return "", apperr.New(apperr.Validation, "Mobile number and OTP are required.")
	}
	const failMsg = "Server error during OTP verification"
	canonical := s.Canonical(mobile)

	entry, ok, err := s.otps.Get(ctx, canonical)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, failMsg, err)
	}
	if !ok || entry.Expired(s.now()) || subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return "", apperr.New(apperr.Validation, msgInvalidOTP)
	}
	if err := s.otps.Delete(ctx, canonical); err != nil {
		return "", apperr.Wrap(apperr.Internal, failMsg, err)
	}

	proof, jti, err := s.tokens.GenerateResetToken(canonical, s.resetTokenTTL)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, failMsg, fmt.Errorf("sign reset token: %w", err))
	}
	if s.requireProof {
		grant := otp.Entry{Code: jti, ExpiresAt: s.now().Add(s.resetTokenTTL)}
		if err := s.otps.Set(ctx, resetGrantKey(canonical), grant); err != nil {
			return "", apperr.Wrap(apperr.Internal, failMsg, err)
		}
	}
	return proof, nil
}

// ResetInput is the reset-password form. ResetToken is only checked when the
// service requires proof of OTP verification.
type ResetInput struct {
	Mobile      string
	NewPassword string
	ResetToken  string
}

// ResetPassword overwrites the stored password hash.
func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	if strings.TrimSpace(in.Mobile) == "" || in.NewPassword == "" {
		return apperr.New(apperr.Validation, "Mobile number and new password are required.")
	}
	const failMsg = "Server error during password reset"
	canonical := s.Canonical(in.Mobile)
	user, err := s.findUser(ctx, canonical, failMsg)
	if err != nil {
		return err
	}
	if s.requireProof {
		if err := s.checkResetGrant(ctx, canonical, in.ResetToken); err != nil {
			return err
		}
	}
	if utf8.RuneCountInString(in.NewPassword) < minPasswordLength {
		return apperr.New(apperr.Validation, msgWeakPassword)
	}
	if len(in.NewPassword) > maxPasswordBytes {
		return apperr.New(apperr.Validation, msgPasswordTooLong)
	}
	if s.requireProof {
		if err := s.otps.Delete(ctx, resetGrantKey(canonical)); err != nil {
			return apperr.Wrap(apperr.Internal, failMsg, err)
		}
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperr.Wrap(apperr.Internal, failMsg, fmt.Errorf("hash password: %w", err))
	}
	if _, err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, msgUserNotFound)
		}
		return apperr.Wrap(apperr.Internal, failMsg, err)
	}
	logging.Ctx(ctx).Info().Str("mobilenum", canonical).Msg("password reset")
	return nil
}

// resetGrantKey names the OTP store entry holding the jti of the one reset
// token still allowed for mobile.
func resetGrantKey(mobile string) string {
	return "reset:" + mobile
}

// checkResetGrant accepts raw only if it is a valid reset token for mobile
// whose jti has not been used yet.
func (s *Service) checkResetGrant(ctx context.Context, mobile, raw string) error {
	jti, err := s.tokens.VerifyResetToken(raw, mobile)
	if err != nil {
		return apperr.Wrap(apperr.Validation, msgVerifyFirst, err)
	}
	grant, ok, err := s.otps.Get(ctx, resetGrantKey(mobile))
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Server error during password reset", err)
	}
	if !ok || grant.Expired(s.now()) || subtle.ConstantTimeCompare([]byte(grant.Code), []byte(jti)) != 1 {
		return apperr.New(apperr.Validation, msgVerifyFirst)
	}
	return nil
}

func (s *Service) findUser(ctx context.Context, mobile, failMsg string) (models.User, error) {
	user, err := s.users.FindByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperr.New(apperr.NotFound, msgUserNotFound)
		}
		return models.User{}, apperr.Wrap(apperr.Internal, failMsg, err)
	}
	return user, nil
}
