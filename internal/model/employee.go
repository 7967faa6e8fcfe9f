package model

import "time"

// Employee represents a registered worker identified by their mobile number
type Employee struct {
	ID           int       `json:"id"`
	Mobile       string    `json:"mobile"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// SendOTPRequest starts phone verification for an unregistered mobile number
type SendOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

// VerifyOTPRequest submits the one-time code received over SMS
type VerifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	OTP    string `json:"otp" binding:"required,len=6,numeric"`
}

// CompleteRegistrationRequest finishes sign-up after the mobile is verified
type CompleteRegistrationRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest authenticates a registered employee
type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}
