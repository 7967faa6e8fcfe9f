package sms

import (
	"context"

	"attendance_tracker/internal/utils"

	"go.uber.org/zap"
)

// Sender delivers a one-time code to a mobile number. Delivery is best
// effort: the caller logs failures but does not retry, and a failed send
// never rolls back the stored challenge.
type Sender interface {
	SendOTP(ctx context.Context, mobile, code string) error
}

// ConsoleSender logs the code instead of sending it. Development only.
type ConsoleSender struct{}

func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

func (s *ConsoleSender) SendOTP(_ context.Context, mobile, code string) error {
	utils.Info("OTP generated (console sender, not delivered)",
		zap.String("mobile", mobile),
		zap.String("otp", code))
	return nil
}
