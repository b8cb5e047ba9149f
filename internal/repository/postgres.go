package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skybridge/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const fillLogSchema = `
CREATE TABLE IF NOT EXISTS confirmed_fills (
	id             BIGSERIAL PRIMARY KEY,
	session_id     TEXT        NOT NULL,
	from_location  TEXT        NOT NULL,
	to_location    TEXT        NOT NULL,
	trip_type      TEXT        NOT NULL,
	departure_date DATE        NOT NULL,
	return_date    DATE,
	passengers     INTEGER     NOT NULL,
	travel_class   TEXT        NOT NULL,
	confirmed_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_confirmed_fills_confirmed_at ON confirmed_fills (confirmed_at DESC);
`

// FillLogRepository stores confirmed form fills in PostgreSQL
type FillLogRepository struct {
	db *sqlx.DB
}

// NewFillLogRepository connects to PostgreSQL
func NewFillLogRepository(dsn string, maxConn, maxIdleConn int) (*FillLogRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return NewFillLogRepositoryFromDB(db), nil
}

// NewFillLogRepositoryFromDB wraps an existing connection
func NewFillLogRepositoryFromDB(db *sqlx.DB) *FillLogRepository {
	return &FillLogRepository{db: db}
}

// Close closes the database connection
func (r *FillLogRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *FillLogRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureSchema creates the fill log table if missing
func (r *FillLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, fillLogSchema); err != nil {
		return fmt.Errorf("failed to create fill log schema: %w", err)
	}
	return nil
}

// LogConfirmedFill inserts a committed field set and sets rec.ID
func (r *FillLogRepository) LogConfirmedFill(ctx context.Context, rec *model.ConfirmedFillRecord) error {
	query := `
		INSERT INTO confirmed_fills (session_id, from_location, to_location, trip_type, departure_date, return_date, passengers, travel_class, confirmed_at)
		VALUES (:session_id, :from_location, :to_location, :trip_type, :departure_date, :return_date, :passengers, :travel_class, :confirmed_at)
		RETURNING id
	`
	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare fill insert: %w", err)
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &rec.ID, rec); err != nil {
		return fmt.Errorf("failed to log confirmed fill: %w", err)
	}
	return nil
}

// ListRecent returns the newest fills first
func (r *FillLogRepository) ListRecent(ctx context.Context, limit int) ([]model.ConfirmedFillRecord, error) {
	query := `
		SELECT id, session_id, from_location, to_location, trip_type,
		       to_char(departure_date, 'YYYY-MM-DD') AS departure_date,
		       to_char(return_date, 'YYYY-MM-DD') AS return_date,
		       passengers, travel_class, confirmed_at
		FROM confirmed_fills
		ORDER BY confirmed_at DESC, id DESC
		LIMIT $1
	`
	fills := []model.ConfirmedFillRecord{}
	if err := r.db.SelectContext(ctx, &fills, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list confirmed fills: %w", err)
	}
	return fills, nil
}
