package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GovarthanahariN/CartProjectBE/internal/apperr"
	"github.com/GovarthanahariN/CartProjectBE/internal/auth"
	"github.com/GovarthanahariN/CartProjectBE/internal/http/respond"
	"github.com/GovarthanahariN/CartProjectBE/internal/logging"
	"github.com/GovarthanahariN/CartProjectBE/internal/models/dto"
	"github.com/GovarthanahariN/CartProjectBE/internal/validation"
)

// AuthService is the part of auth.Service the handler drives.
type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) error
	Login(ctx context.Context, mobile, password string) (string, error)
	RequestPasswordReset(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, code string) (string, error)
	ResetPassword(ctx context.Context, in auth.ResetInput) error
}

// EventRecorder counts auth outcomes. *metrics.Metrics satisfies it.
type EventRecorder interface {
	AuthEvent(event, outcome string)
}

// AuthHandler owns the /api/auth endpoints.
type AuthHandler struct {
	svc    AuthService
	events EventRecorder
}

// NewAuthHandler constructs the handler. events may be nil.
func NewAuthHandler(svc AuthService, events EventRecorder) *AuthHandler {
	return &AuthHandler{svc: svc, events: events}
}

// Register attaches auth routes to r.
func (h *AuthHandler) Register(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.Post("/forgot-password", h.handleForgotPassword)
		r.Post("/verify-otp", h.handleVerifyOTP)
		r.Post("/reset-password", h.handleResetPassword)
	})
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !h.decode(w, r, &req, "All fields are required") {
		return
	}
	err := h.svc.Signup(r.Context(), auth.SignupInput{
		Username:        req.Username,
		Mobile:          req.Mobile,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.fail(w, r, "signup", err)
		return
	}
	h.record("signup", nil)
	respond.Message(w, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decode(w, r, &req, "Mobile number and password are required.") {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Mobile, req.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}
	h.record("login", nil)
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Message: "Login successful", Token: token})
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !h.decode(w, r, &req, "Mobile number is required.") {
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Mobile); err != nil {
		h.fail(w, r, "forgot_password", err)
		return
	}
	h.record("forgot_password", nil)
	respond.Message(w, http.StatusOK, "OTP sent to your mobile number.")
}

func (h *AuthHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if !h.decode(w, r, &req, "Mobile number and OTP are required.") {
		return
	}
	proof, err := h.svc.VerifyOTP(r.Context(), req.Mobile, req.OTP)
	if err != nil {
		h.fail(w, r, "verify_otp", err)
		return
	}
	h.record("verify_otp", nil)
	respond.JSON(w, http.StatusOK, dto.VerifyOTPResponse{
		Message:    "OTP verified successfully. You can reset your password now.",
		ResetToken: proof,
	})
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !h.decode(w, r, &req, "Mobile number and new password are required.") {
		return
	}
	err := h.svc.ResetPassword(r.Context(), auth.ResetInput{
		Mobile:      req.Mobile,
		NewPassword: req.NewPassword,
		ResetToken:  req.ResetToken,
	})
	if err != nil {
		h.fail(w, r, "reset_password", err)
		return
	}
	h.record("reset_password", nil)
	respond.Message(w, http.StatusOK, "Password reset successfully.")
}

// decode reads the body into dst and checks required fields. On failure it
// writes a 400 and returns false.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any, missing string) bool {
	if err := decodeJSON(r, dst); err != nil {
		respond.Message(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	if err := validation.Struct(dst); err != nil {
		respond.Message(w, http.StatusBadRequest, missing)
		return false
	}
	return true
}

// fail maps a service error to a response. Every auth failure other than an
// internal one is reported as 400.
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, event string, err error) {
	h.record(event, err)
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		logging.Ctx(r.Context()).Error().Err(err).Str("event", event).Msg("auth request failed")
		respond.Message(w, http.StatusInternalServerError, apperr.MessageOf(err, msgServerError))
		return
	}
	respond.Message(w, http.StatusBadRequest, apperr.MessageOf(err, msgServerError))
}

func (h *AuthHandler) record(event string, err error) {
	if h.events == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	h.events.AuthEvent(event, outcome)
}
