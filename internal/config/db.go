package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"attendance_tracker/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	DSN string
}

// LoadDBConfig loads database configuration from environment variables
func LoadDBConfig() (*DBConfig, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbName == "" {
		return nil, fmt.Errorf("database environment variables not set (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	return &DBConfig{DSN: dsn}, nil
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(cfg *DBConfig) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(context.Background(), cfg.DSN)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				utils.Info("Connected to PostgreSQL")
				return pool, nil
			}
		}
		utils.Warn("Failed to connect to database, retrying",
			zap.Int("attempt", i+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates tables if they don't exist
func AutoMigrate(db *pgxpool.Pool) error {
	sql := `
	CREATE TABLE IF NOT EXISTS employees (
		id SERIAL PRIMARY KEY,
		mobile TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS attendance_sessions (
		id BIGSERIAL PRIMARY KEY,
		employee_id BIGINT NOT NULL,
		check_in_time TIMESTAMP WITH TIME ZONE NOT NULL,
		check_out_time TIMESTAMP WITH TIME ZONE,
		distance_meters DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT chk_checkout_after_checkin
			CHECK (check_out_time IS NULL OR check_out_time > check_in_time),
		FOREIGN KEY (employee_id) REFERENCES employees(id) ON DELETE CASCADE
	);

	-- At most one open session per employee; concurrent check-ins race on
	-- this index and exactly one insert wins.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_session_per_employee
		ON attendance_sessions(employee_id) WHERE check_out_time IS NULL;

	CREATE INDEX IF NOT EXISTS idx_attendance_sessions_employee_id
		ON attendance_sessions(employee_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_sessions_check_in_time
		ON attendance_sessions(check_in_time);
	`
	_, err := db.Exec(context.Background(), sql)
	if err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	utils.Info("AutoMigrate applied successfully")
	return nil
}
