package dto

type SignupRequest struct {
	Username        string `json:"username" validate:"required"`
	Mobile          string `json:"mobilenum" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type LoginRequest struct {
	Mobile   string `json:"mobilenum" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type ForgotPasswordRequest struct {
	Mobile string `json:"mobilenum" validate:"required"`
}

type VerifyOTPRequest struct {
	Mobile string `json:"mobilenum" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
}

// VerifyOTPResponse carries the proof token accepted by reset-password.
type VerifyOTPResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

type ResetPasswordRequest struct {
	Mobile      string `json:"mobilenum" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
	ResetToken  string `json:"resetToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
