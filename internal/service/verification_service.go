package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"attendance_tracker/internal/model"
	"attendance_tracker/internal/repository"
	"attendance_tracker/internal/sms"
	"attendance_tracker/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrAlreadyRegistered     = errors.New("mobile already registered")
	ErrChallengeNotRequested = errors.New("no OTP requested for this number")
	ErrChallengeExpired      = errors.New("OTP expired")
	ErrCodeMismatch          = errors.New("invalid OTP")
	ErrNotVerified           = errors.New("mobile not verified via OTP")
)

// VerificationService owns the phone verification state machine:
// unverified -> challenged -> verified -> registered.
type VerificationService interface {
	// RequestChallenge issues a fresh challenge for an unregistered number,
	// replacing any prior unverified challenge, and dispatches the code via
	// SMS. Returns the generated code so the handler can echo it when the
	// debug flag is on.
	RequestChallenge(ctx context.Context, mobile string) (string, error)
	VerifyChallenge(ctx context.Context, mobile, code string) error
	// CompleteRegistration creates or updates the employee row for a verified
	// number, deletes the challenge and issues a session token.
	CompleteRegistration(ctx context.Context, mobile, name, email, password string) (*model.Employee, string, error)
}

type verificationService struct {
	challenges   repository.ChallengeStore
	employeeRepo repository.EmployeeRepository
	sender       sms.Sender
	jwtUtil      *utils.JWTUtil
	otpTTL       time.Duration
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	challenges repository.ChallengeStore,
	employeeRepo repository.EmployeeRepository,
	sender sms.Sender,
	jwtUtil *utils.JWTUtil,
	otpTTL time.Duration,
) VerificationService {
	return &verificationService{
		challenges:   challenges,
		employeeRepo: employeeRepo,
		sender:       sender,
		jwtUtil:      jwtUtil,
		otpTTL:       otpTTL,
	}
}

func (s *verificationService) RequestChallenge(ctx context.Context, mobile string) (string, error) {
	mobile, err := utils.NormalizeMobile(mobile)
	if err != nil {
		return "", err
	}

	existing, err := s.employeeRepo.FindByMobile(ctx, mobile)
	if err != nil {
		return "", fmt.Errorf("failed to check existing employee: %w", err)
	}
	if existing != nil {
		return "", ErrAlreadyRegistered
	}

	code, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	now := time.Now()
	challenge := &model.PhoneChallenge{
		Mobile:    mobile,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.otpTTL),
	}
	// Set replaces any prior challenge for this mobile in one operation,
	// so only the newest code is ever live.
	if err := s.challenges.Set(ctx, challenge); err != nil {
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}

	// Best effort: the challenge stands even if delivery fails. Retrying
	// belongs to the caller, who can simply request a new code.
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.sender.SendOTP(sendCtx, mobile, code); err != nil {
		utils.Warn("OTP delivery failed", zap.String("mobile", mobile), zap.Error(err))
	}

	return code, nil
}

func (s *verificationService) VerifyChallenge(ctx context.Context, mobile, code string) error {
	mobile, err := utils.NormalizeMobile(mobile)
	if err != nil {
		return err
	}

	challenge, err := s.challenges.Get(ctx, mobile)
	if err != nil {
		return fmt.Errorf("failed to load challenge: %w", err)
	}
	if challenge == nil {
		return ErrChallengeNotRequested
	}

	if challenge.Expired(time.Now()) {
		if err := s.challenges.Delete(ctx, mobile); err != nil {
			utils.Warn("failed to evict expired challenge", zap.String("mobile", mobile), zap.Error(err))
		}
		return ErrChallengeExpired
	}

	if challenge.Code != code {
		return ErrCodeMismatch
	}

	challenge.Verified = true
	if err := s.challenges.Set(ctx, challenge); err != nil {
		return fmt.Errorf("failed to mark challenge verified: %w", err)
	}
	return nil
}

func (s *verificationService) CompleteRegistration(ctx context.Context, mobile, name, email, password string) (*model.Employee, string, error) {
	mobile, err := utils.NormalizeMobile(mobile)
	if err != nil {
		return nil, "", err
	}

	challenge, err := s.challenges.Get(ctx, mobile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load challenge: %w", err)
	}
	if challenge == nil || !challenge.Verified {
		return nil, "", ErrNotVerified
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	employee := &model.Employee{
		Mobile:       mobile,
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now(),
	}
	// If the upsert fails the challenge is left verified so the client can
	// retry completion without redoing the OTP round trip.
	if err := s.employeeRepo.Upsert(ctx, employee); err != nil {
		return nil, "", fmt.Errorf("failed to save employee: %w", err)
	}

	if err := s.challenges.Delete(ctx, mobile); err != nil {
		utils.Warn("failed to delete completed challenge", zap.String("mobile", mobile), zap.Error(err))
	}

	token, err := s.jwtUtil.GenerateToken(employee.ID)
	if err != nil {
		utils.Error("employee created but token generation failed",
			zap.String("mobile", mobile),
			zap.Int("employee_id", employee.ID),
			zap.Error(err))
		return employee, "", fmt.Errorf("employee created, but failed to generate token: %w", err)
	}

	return employee, token, nil
}

// generateOTP draws a uniform 6-digit code from [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
