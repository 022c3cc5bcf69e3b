package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mayesamomo/wageflow/internal/db"
	"github.com/Mayesamomo/wageflow/internal/domain"
)

// ClockRepo is a SQLite implementation of ClockRepository
type ClockRepo struct {
	db *db.DB
}

// NewClockRepo creates a new ClockRepo
func NewClockRepo(database *db.DB) *ClockRepo {
	return &ClockRepo{db: database}
}

// Get retrieves the owner's running clock, or returns nil if none is running
func (r *ClockRepo) Get(ctx context.Context, ownerID string) (*domain.ActiveClock, error) {
	query := `
		SELECT owner_id, client_id, shift_type, hourly_rate, notes, start_time
		FROM active_clocks
		WHERE owner_id = ?
	`

	clock := &domain.ActiveClock{}
	var shiftType, startTime string
	var rate sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&clock.OwnerID,
		&clock.ClientID,
		&shiftType,
		&rate,
		&clock.Notes,
		&startTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No running clock
		}
		return nil, fmt.Errorf("failed to get active clock: %w", err)
	}

	clock.ShiftType = domain.ShiftType(shiftType)
	clock.HourlyRate = floatPtr(rate)
	if clock.StartTime, err = parseTime(startTime); err != nil {
		return nil, fmt.Errorf("failed to parse start_time: %w", err)
	}

	return clock, nil
}

// Save saves the clock (insert or replace)
func (r *ClockRepo) Save(ctx context.Context, clock *domain.ActiveClock) error {
	query := `
		INSERT OR REPLACE INTO active_clocks (owner_id, client_id, shift_type, hourly_rate, notes, start_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		clock.OwnerID,
		clock.ClientID,
		string(clock.ShiftType),
		nullFloat(clock.HourlyRate),
		clock.Notes,
		formatTime(clock.StartTime),
	)
	if err != nil {
		return fmt.Errorf("failed to save active clock: %w", err)
	}

	return nil
}

// Delete removes the owner's clock. It is NotFound when no clock is running,
// so only one of two racing callers wins.
func (r *ClockRepo) Delete(ctx context.Context, ownerID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM active_clocks WHERE owner_id = ?", ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete active clock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("clock", "no shift clock is running")
	}

	return nil
}
