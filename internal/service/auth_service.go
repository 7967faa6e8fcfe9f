package service

import (
	"context"
	"errors"
	"fmt"

	"attendance_tracker/internal/model"
	"attendance_tracker/internal/repository"
	"attendance_tracker/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid mobile or password")
	ErrEmployeeNotFound   = errors.New("employee not found")
)

// AuthService authenticates registered employees
type AuthService interface {
	Login(ctx context.Context, mobile, password string) (*model.Employee, string, error)
	GetProfile(ctx context.Context, employeeID int) (*model.Employee, error)
}

type authService struct {
	employeeRepo repository.EmployeeRepository
	jwtUtil      *utils.JWTUtil
}

// NewAuthService creates a new AuthService
func NewAuthService(employeeRepo repository.EmployeeRepository, jwtUtil *utils.JWTUtil) AuthService {
	return &authService{
		employeeRepo: employeeRepo,
		jwtUtil:      jwtUtil,
	}
}

// Login authenticates an employee and returns a session token
func (s *authService) Login(ctx context.Context, mobile, password string) (*model.Employee, string, error) {
	mobile, err := utils.NormalizeMobile(mobile)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	employee, err := s.employeeRepo.FindByMobile(ctx, mobile)
	if err != nil {
		return nil, "", fmt.Errorf("error finding employee by mobile: %w", err)
	}
	if employee == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, employee.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(employee.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return employee, token, nil
}

// GetProfile returns the employee record for an authenticated id
func (s *authService) GetProfile(ctx context.Context, employeeID int) (*model.Employee, error) {
	employee, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}
