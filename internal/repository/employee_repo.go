package repository

import (
	"context"
	"errors"
	"fmt"

	"attendance_tracker/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateMobile signals a unique-constraint violation on the mobile column.
var ErrDuplicateMobile = errors.New("mobile number already registered")

// EmployeeRepository defines operations for employee identity data
type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	Upsert(ctx context.Context, employee *model.Employee) error
	FindByMobile(ctx context.Context, mobile string) (*model.Employee, error)
	FindByID(ctx context.Context, id int) (*model.Employee, error)
}

type employeeRepository struct {
	db DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Create inserts a new employee row
func (r *employeeRepository) Create(ctx context.Context, e *model.Employee) error {
	sql := `INSERT INTO employees (mobile, name, email, password_hash, created_at)
            VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, e.Mobile, e.Name, e.Email, e.PasswordHash, e.CreatedAt).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMobile
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// Upsert creates the employee row for a mobile number or replaces its profile
// fields. The registration flow re-runs completion after transient failures,
// so the whole row is written in one statement.
func (r *employeeRepository) Upsert(ctx context.Context, e *model.Employee) error {
	sql := `INSERT INTO employees (mobile, name, email, password_hash, created_at)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (mobile) DO UPDATE
                SET name = EXCLUDED.name,
                    email = EXCLUDED.email,
                    password_hash = EXCLUDED.password_hash
            RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, e.Mobile, e.Name, e.Email, e.PasswordHash, e.CreatedAt).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

// FindByMobile retrieves an employee by their normalized mobile number
func (r *employeeRepository) FindByMobile(ctx context.Context, mobile string) (*model.Employee, error) {
	e := &model.Employee{}
	sql := `SELECT id, mobile, name, email, password_hash, created_at FROM employees WHERE mobile = $1`
	err := r.db.QueryRow(ctx, sql, mobile).Scan(&e.ID, &e.Mobile, &e.Name, &e.Email, &e.PasswordHash, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error here, service layer decides
		}
		return nil, fmt.Errorf("failed to find employee by mobile: %w", err)
	}
	return e, nil
}

// FindByID retrieves an employee by their ID
func (r *employeeRepository) FindByID(ctx context.Context, id int) (*model.Employee, error) {
	e := &model.Employee{}
	sql := `SELECT id, mobile, name, email, password_hash, created_at FROM employees WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(&e.ID, &e.Mobile, &e.Name, &e.Email, &e.PasswordHash, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find employee by ID: %w", err)
	}
	return e, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
