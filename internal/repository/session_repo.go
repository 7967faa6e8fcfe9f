package repository

import (
	"context"
	"errors"
	"fmt"

	"attendance_tracker/internal/model"

	"github.com/jackc/pgx/v5"
)

// ErrOpenSessionExists signals that the employee already has an open session.
// The partial unique index on (employee_id) WHERE check_out_time IS NULL makes
// concurrent check-ins race on the insert; exactly one wins.
var ErrOpenSessionExists = errors.New("an open session already exists for this employee")

// SessionRepository defines operations for attendance session data
type SessionRepository interface {
	Insert(ctx context.Context, session *model.AttendanceSession) error
	FindOpenByEmployee(ctx context.Context, employeeID int) (*model.AttendanceSession, error)
	CloseOpen(ctx context.Context, employeeID int) (*model.AttendanceSession, error)
	FindByEmployee(ctx context.Context, employeeID int) ([]model.AttendanceSession, error)
}

type sessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Insert creates a new open session, atomically enforcing the one-open-session
// invariant. Returns ErrOpenSessionExists when the insert loses the race.
func (r *sessionRepository) Insert(ctx context.Context, s *model.AttendanceSession) error {
	sql := `INSERT INTO attendance_sessions (employee_id, check_in_time, distance_meters, created_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (employee_id) WHERE check_out_time IS NULL DO NOTHING
            RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, s.EmployeeID, s.CheckInTime, s.DistanceMeters, s.CreatedAt).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// DO NOTHING swallowed the insert: an open session is in the way.
			return ErrOpenSessionExists
		}
		if isUniqueViolation(err) {
			return ErrOpenSessionExists
		}
		return fmt.Errorf("failed to insert attendance session: %w", err)
	}
	return nil
}

// FindOpenByEmployee retrieves the employee's open session, if any
func (r *sessionRepository) FindOpenByEmployee(ctx context.Context, employeeID int) (*model.AttendanceSession, error) {
	s := &model.AttendanceSession{}
	sql := `SELECT id, employee_id, check_in_time, check_out_time, distance_meters, created_at
            FROM attendance_sessions WHERE employee_id = $1 AND check_out_time IS NULL`
	err := r.db.QueryRow(ctx, sql, employeeID).Scan(
		&s.ID, &s.EmployeeID, &s.CheckInTime, &s.CheckOutTime, &s.DistanceMeters, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No open session
		}
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	return s, nil
}

// CloseOpen stamps the checkout time on the employee's open session in a
// single UPDATE and returns the closed session. Returns nil, nil when no
// open session exists.
func (r *sessionRepository) CloseOpen(ctx context.Context, employeeID int) (*model.AttendanceSession, error) {
	s := &model.AttendanceSession{}
	sql := `UPDATE attendance_sessions SET check_out_time = NOW()
            WHERE employee_id = $1 AND check_out_time IS NULL
            RETURNING id, employee_id, check_in_time, check_out_time, distance_meters, created_at`
	err := r.db.QueryRow(ctx, sql, employeeID).Scan(
		&s.ID, &s.EmployeeID, &s.CheckInTime, &s.CheckOutTime, &s.DistanceMeters, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	return s, nil
}

// FindByEmployee retrieves the employee's raw session history, newest first
func (r *sessionRepository) FindByEmployee(ctx context.Context, employeeID int) ([]model.AttendanceSession, error) {
	sql := `SELECT id, employee_id, check_in_time, check_out_time, distance_meters, created_at
            FROM attendance_sessions WHERE employee_id = $1
            ORDER BY check_in_time DESC`
	rows, err := r.db.Query(ctx, sql, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by employee: %w", err)
	}
	defer rows.Close()

	var sessions []model.AttendanceSession
	for rows.Next() {
		var s model.AttendanceSession
		if err := rows.Scan(
			&s.ID, &s.EmployeeID, &s.CheckInTime, &s.CheckOutTime, &s.DistanceMeters, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}
