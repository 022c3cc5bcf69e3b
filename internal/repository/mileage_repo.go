package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mayesamomo/wageflow/internal/db"
	"github.com/Mayesamomo/wageflow/internal/domain"
)

// MileageRepo is a SQLite implementation of MileageRepository
type MileageRepo struct {
	db *db.DB
}

// NewMileageRepo creates a new MileageRepo
func NewMileageRepo(database *db.DB) *MileageRepo {
	return &MileageRepo{db: database}
}

const mileageColumns = `id, owner_id, client_id, date, distance, rate_per_km, amount, description,
		       from_location, to_location, invoice_id, created_at, updated_at`

// Create inserts a new mileage record
func (r *MileageRepo) Create(ctx context.Context, m *domain.Mileage) error {
	if err := m.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO mileages (` + mileageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.OwnerID,
		m.ClientID,
		formatTime(m.Date),
		m.Distance,
		m.RatePerKm,
		m.Amount,
		m.Description,
		m.FromLocation,
		m.ToLocation,
		nullString(m.InvoiceID),
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create mileage: %w", err)
	}

	return nil
}

// GetByID retrieves a mileage record owned by ownerID
func (r *MileageRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Mileage, error) {
	query := `SELECT ` + mileageColumns + ` FROM mileages WHERE id = ? AND owner_id = ?`

	m, err := scanMileage(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("mileage", "mileage %s not found", id)
		}
		return nil, fmt.Errorf("failed to get mileage: %w", err)
	}
	return m, nil
}

// Update updates an unclaimed mileage record
func (r *MileageRepo) Update(ctx context.Context, m *domain.Mileage) error {
	if err := m.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE mileages
		SET client_id = ?, date = ?, distance = ?, rate_per_km = ?, amount = ?, description = ?,
		    from_location = ?, to_location = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND invoice_id IS NULL
	`

	m.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		m.ClientID,
		formatTime(m.Date),
		m.Distance,
		m.RatePerKm,
		m.Amount,
		m.Description,
		m.FromLocation,
		m.ToLocation,
		formatTime(m.UpdatedAt),
		m.ID,
		m.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update mileage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing record from a claimed one
		if _, err := r.GetByID(ctx, m.OwnerID, m.ID); err != nil {
			return err
		}
		return domain.Immutable("mileage", "cannot update mileage: it is on an invoice")
	}

	return nil
}

// Delete removes an unclaimed mileage record
func (r *MileageRepo) Delete(ctx context.Context, ownerID, id string) error {
	return deleteUnclaimed(ctx, r.db, "mileages", "mileage", ownerID, id)
}

// List retrieves mileage records with optional filters
func (r *MileageRepo) List(ctx context.Context, ownerID string, filter RecordFilter) ([]*domain.Mileage, error) {
	where, args := recordWhere(ownerID, "date", filter)
	query := `SELECT ` + mileageColumns + ` FROM mileages ` + where + orderAndPage("date", filter)

	return queryMileages(ctx, r.db, query, args...)
}

func queryMileages(ctx context.Context, q execer, query string, args ...any) ([]*domain.Mileage, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mileages: %w", err)
	}
	defer rows.Close()

	mileages := make([]*domain.Mileage, 0)
	for rows.Next() {
		m, err := scanMileage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mileage: %w", err)
		}
		mileages = append(mileages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mileages: %w", err)
	}

	return mileages, nil
}

func scanMileage(row rowScanner) (*domain.Mileage, error) {
	m := &domain.Mileage{}
	var date, createdAt, updatedAt string
	var invoiceID sql.NullString

	err := row.Scan(
		&m.ID,
		&m.OwnerID,
		&m.ClientID,
		&date,
		&m.Distance,
		&m.RatePerKm,
		&m.Amount,
		&m.Description,
		&m.FromLocation,
		&m.ToLocation,
		&invoiceID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.InvoiceID = stringPtr(invoiceID)
	if m.Date, err = parseTime(date); err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return m, nil
}
