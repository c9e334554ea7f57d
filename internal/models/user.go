package models

import "time"

// User is a registered account. Mobile is stored in canonical form.
type User struct {
	ID           string     `json:"_id"`
	Username     string     `json:"username"`
	Mobile       string     `json:"mobilenum"`
	PasswordHash string     `json:"-"`
	OTP          string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
}
