package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GovarthanahariN/CartProjectBE/internal/apperr"
	"github.com/GovarthanahariN/CartProjectBE/internal/otp"
	"github.com/GovarthanahariN/CartProjectBE/internal/sms/smstest"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage/storagetest"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc    *Service
	store  *storagetest.Memory
	otps   *otp.MemoryStore
	sms    *smstest.Recorder
	clock  *fakeClock
	tokens *TokenManager
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	tokens := NewTokenManager("test-secret", "test-issuer", time.Hour)
	tokens.now = clock.Now
	opts := Options{
		Hasher:    BcryptHasher{Cost: bcrypt.MinCost},
		Generator: otp.Fixed("1234"),
		Clock:     clock.Now,
	}
	for _, m := range mutate {
		m(&opts)
	}
	f := &fixture{
		store:  storagetest.New(),
		otps:   otp.NewMemoryStore(),
		sms:    &smstest.Recorder{},
		clock:  clock,
		tokens: tokens,
	}
	f.svc = NewService(f.store, tokens, f.otps, f.sms, opts)
	return f
}

func (f *fixture) signup(t *testing.T, mobile, password string) {
	t.Helper()
	require.NoError(t, f.svc.Signup(context.Background(), SignupInput{
		Username: "a", Mobile: mobile, Password: password, ConfirmPassword: password,
	}))
}

func assertKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
	if msg != "" {
		assert.Equal(t, msg, apperr.MessageOf(err, ""))
	}
}

func TestCanonicalize(t *testing.T) {
	inputs := []string{"9999999999", "+919999999999", "  9999999999 ", ""}
	for _, in := range inputs {
		once := Canonicalize("+91", in)
		assert.Equal(t, once, Canonicalize("+91", once), "not idempotent for %q", in)
	}
	assert.Equal(t, Canonicalize("+91", "9999999999"), Canonicalize("+91", "+919999999999"))
	assert.Equal(t, "+919999999999", Canonicalize("+91", "9999999999"))
	assert.Equal(t, "", Canonicalize("+91", "   "))
}

func TestSignupStoresCanonicalHashedUser(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "9999999999", "secret1")

	users := f.store.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "+919999999999", users[0].Mobile)
	assert.NotEqual(t, "secret1", users[0].PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("secret1")))
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Signup(ctx, SignupInput{Username: "a", Mobile: "9999999999", Password: "secret1"})
	assertKind(t, err, apperr.Validation, "All fields are required")

	err = f.svc.Signup(ctx, SignupInput{Username: "a", Mobile: "9999999999", Password: "secret1", ConfirmPassword: "secret2"})
	assertKind(t, err, apperr.Validation, "Passwords do not match")

	assert.Empty(t, f.store.Users())
}

func TestSignupConflictRegardlessOfPrefix(t *testing.T) {
	for _, second := range []string{"9999999999", "+919999999999"} {
		t.Run(second, func(t *testing.T) {
			f := newFixture(t)
			f.signup(t, "+919999999999", "secret1")

			err := f.svc.Signup(context.Background(), SignupInput{
				Username: "b", Mobile: second, Password: "other12", ConfirmPassword: "other12",
			})
			assertKind(t, err, apperr.Conflict, "User already exists")
			assert.Len(t, f.store.Users(), 1)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "9999999999", "secret1")
	ctx := context.Background()

	token, err := f.svc.Login(ctx, "+919999999999", "secret1")
	require.NoError(t, err)
	claims, err := f.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, f.store.Users()[0].ID, claims.ID)
	assert.Equal(t, f.clock.Now().Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	_, err = f.svc.Login(ctx, "9999999999", "wrong-pass")
	assertKind(t, err, apperr.Unauthorized, "Invalid credentials.")

	_, err = f.svc.Login(ctx, "8888888888", "secret1")
	assertKind(t, err, apperr.NotFound, "User not found.")
}

func TestLoginStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.Fail = storagetest.ErrUnavailable

	_, err := f.svc.Login(context.Background(), "9999999999", "secret1")
	assertKind(t, err, apperr.Internal, "Server error during login")
	assert.ErrorIs(t, err, storagetest.ErrUnavailable)
}

func TestRequestPasswordReset(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "9999999999", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))

	entry, ok, err := f.otps.Get(ctx, "+919999999999")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1234", entry.Code)
	assert.Equal(t, f.clock.Now().Add(5*time.Minute), entry.ExpiresAt)

	msgs := f.sms.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "+919999999999", msgs[0].To)
	assert.Equal(t, "Your OTP code is 1234", msgs[0].Body)

	err = f.svc.RequestPasswordReset(ctx, "7777777777")
	assertKind(t, err, apperr.NotFound, "User not found.")
}

func TestRequestPasswordResetOverwrites(t *testing.T) {
	codes := []string{"1111", "2222"}
	f := newFixture(t, func(o *Options) {
		o.Generator = otp.GeneratorFunc(func() (string, error) {
			c := codes[0]
			codes = codes[1:]
			return c, nil
		})
	})
	f.signup(t, "9999999999", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))

	_, err := f.svc.VerifyOTP(ctx, "9999999999", "1111")
	assertKind(t, err, apperr.Validation, "Invalid OTP or OTP has expired.")
	_, err = f.svc.VerifyOTP(ctx, "9999999999", "2222")
	require.NoError(t, err)
}

func TestRequestPasswordResetSMSFailure(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "9999999999", "secret1")
	f.sms.Err = errors.New("gateway down")

	err := f.svc.RequestPasswordReset(context.Background(), "9999999999")
	assertKind(t, err, apperr.Internal, "Server error during OTP request")
}

func TestVerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("no entry", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.VerifyOTP(ctx, "9999999999", "1234")
		assertKind(t, err, apperr.Validation, "Invalid OTP or OTP has expired.")
	})

	t.Run("mismatch keeps entry", func(t *testing.T) {
		f := newFixture(t)
		f.signup(t, "9999999999", "secret1")
		require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))

		_, err := f.svc.VerifyOTP(ctx, "9999999999", "4321")
		assertKind(t, err, apperr.Validation, "")
		_, err = f.svc.VerifyOTP(ctx, "+919999999999", "1234")
		require.NoError(t, err)
	})

	t.Run("consumed once", func(t *testing.T) {
		f := newFixture(t)
		f.signup(t, "9999999999", "secret1")
		require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))

		proof, err := f.svc.VerifyOTP(ctx, "9999999999", "1234")
		require.NoError(t, err)
		_, err = f.tokens.VerifyResetToken(proof, "+919999999999")
		assert.NoError(t, err)

		_, err = f.svc.VerifyOTP(ctx, "9999999999", "1234")
		assertKind(t, err, apperr.Validation, "Invalid OTP or OTP has expired.")
	})

	t.Run("expiry boundary", func(t *testing.T) {
		f := newFixture(t)
		f.signup(t, "9999999999", "secret1")
		require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))

		f.clock.Advance(5 * time.Minute)
		_, err := f.svc.VerifyOTP(ctx, "9999999999", "1234")
		assertKind(t, err, apperr.Validation, "Invalid OTP or OTP has expired.")

		_, ok, err := f.otps.Get(ctx, "+919999999999")
		require.NoError(t, err)
		assert.True(t, ok, "expired entry is not removed by a failed check")
	})

	t.Run("just before expiry", func(t *testing.T) {
		f := newFixture(t)
		f.signup(t, "9999999999", "secret1")
		require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))

		f.clock.Advance(5*time.Minute - time.Millisecond)
		_, err := f.svc.VerifyOTP(ctx, "9999999999", "1234")
		require.NoError(t, err)
	})
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "9999999999", "secret1")
	ctx := context.Background()

	err := f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "short"})
	assertKind(t, err, apperr.Validation, "Password should be at least 6 characters long.")

	// Length is counted in characters: three two-byte runes are still too short.
	err = f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "ééé"})
	assertKind(t, err, apperr.Validation, "Password should be at least 6 characters long.")
	_, err = f.svc.Login(ctx, "9999999999", "ééé")
	assertKind(t, err, apperr.Unauthorized, "")

	err = f.svc.ResetPassword(ctx, ResetInput{Mobile: "1111111111", NewPassword: "longenough"})
	assertKind(t, err, apperr.NotFound, "User not found.")

	require.NoError(t, f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "newsecret"}))

	_, err = f.svc.Login(ctx, "9999999999", "secret1")
	assertKind(t, err, apperr.Unauthorized, "")
	_, err = f.svc.Login(ctx, "9999999999", "newsecret")
	require.NoError(t, err)
}

func TestResetPasswordRequiresProof(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.RequireResetProof = true })
	f.signup(t, "9999999999", "secret1")
	f.signup(t, "8888888888", "secret1")
	ctx := context.Background()

	err := f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "newsecret"})
	assertKind(t, err, apperr.Validation, "OTP verification is required before resetting the password.")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "8888888888"))
	otherProof, err := f.svc.VerifyOTP(ctx, "8888888888", "1234")
	require.NoError(t, err)
	err = f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "newsecret", ResetToken: otherProof})
	assertKind(t, err, apperr.Validation, "")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))
	proof, err := f.svc.VerifyOTP(ctx, "9999999999", "1234")
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)
	err = f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "newsecret", ResetToken: proof})
	assertKind(t, err, apperr.Validation, "")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))
	proof, err = f.svc.VerifyOTP(ctx, "9999999999", "1234")
	require.NoError(t, err)

	// A weak password does not spend the proof.
	err = f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "ab", ResetToken: proof})
	assertKind(t, err, apperr.Validation, "Password should be at least 6 characters long.")

	require.NoError(t, f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "newsecret", ResetToken: proof}))
}

func TestResetProofIsSingleUse(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.RequireResetProof = true })
	f.signup(t, "9999999999", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))
	first, err := f.svc.VerifyOTP(ctx, "9999999999", "1234")
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "9999999999"))
	second, err := f.svc.VerifyOTP(ctx, "9999999999", "1234")
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "newsecret", ResetToken: first})
	assertKind(t, err, apperr.Validation, "OTP verification is required before resetting the password.")

	require.NoError(t, f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "newsecret", ResetToken: second}))

	err = f.svc.ResetPassword(ctx, ResetInput{Mobile: "9999999999", NewPassword: "another1", ResetToken: second})
	assertKind(t, err, apperr.Validation, "OTP verification is required before resetting the password.")
	_, err = f.svc.Login(ctx, "9999999999", "newsecret")
	require.NoError(t, err)
}
