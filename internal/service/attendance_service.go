package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendance_tracker/internal/geo"
	"attendance_tracker/internal/model"
	"attendance_tracker/internal/repository"
)

var (
	ErrOutsideGeofence    = errors.New("outside the workplace geofence")
	ErrSessionAlreadyOpen = errors.New("attendance session already open")
	ErrNoOpenSession      = errors.New("no open attendance session")
)

// AttendanceService owns the per-employee session state machine:
// NoSession -> Open -> Closed -> Open ...
type AttendanceService interface {
	CheckIn(ctx context.Context, employeeID int, observed geo.Point) (*model.AttendanceSession, error)
	// CheckOut closes the open session. It deliberately takes no coordinate:
	// location is not re-verified on exit.
	CheckOut(ctx context.Context, employeeID int) (*model.AttendanceSession, error)
	CurrentSession(ctx context.Context, employeeID int) (*model.AttendanceSession, error)
	History(ctx context.Context, employeeID int) ([]model.AttendanceSession, error)
	Locate(observed geo.Point) geo.Result
}

type attendanceService struct {
	sessionRepo repository.SessionRepository
	workplace   geo.Point
	radius      float64
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(sessionRepo repository.SessionRepository, workplace geo.Point, radiusMeters float64) AttendanceService {
	return &attendanceService{
		sessionRepo: sessionRepo,
		workplace:   workplace,
		radius:      radiusMeters,
	}
}

func (s *attendanceService) CheckIn(ctx context.Context, employeeID int, observed geo.Point) (*model.AttendanceSession, error) {
	result := geo.Evaluate(observed, s.workplace, s.radius)
	if !result.Inside {
		return nil, ErrOutsideGeofence
	}

	session := &model.AttendanceSession{
		EmployeeID:     employeeID,
		CheckInTime:    time.Now(),
		DistanceMeters: result.DistanceMeters,
		CreatedAt:      time.Now(),
	}
	// The repository insert is the race arbiter: of two concurrent check-ins
	// exactly one row lands, the other comes back ErrOpenSessionExists.
	if err := s.sessionRepo.Insert(ctx, session); err != nil {
		if errors.Is(err, repository.ErrOpenSessionExists) {
			return nil, ErrSessionAlreadyOpen
		}
		return nil, fmt.Errorf("failed to open attendance session: %w", err)
	}
	return session, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, employeeID int) (*model.AttendanceSession, error) {
	session, err := s.sessionRepo.CloseOpen(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to close attendance session: %w", err)
	}
	if session == nil {
		return nil, ErrNoOpenSession
	}
	return session, nil
}

func (s *attendanceService) CurrentSession(ctx context.Context, employeeID int) (*model.AttendanceSession, error) {
	session, err := s.sessionRepo.FindOpenByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	return session, nil
}

func (s *attendanceService) History(ctx context.Context, employeeID int) ([]model.AttendanceSession, error) {
	sessions, err := s.sessionRepo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	return sessions, nil
}

// Locate classifies a coordinate against the configured geofence without
// touching session state. Backs the status endpoint.
func (s *attendanceService) Locate(observed geo.Point) geo.Result {
	return geo.Evaluate(observed, s.workplace, s.radius)
}
