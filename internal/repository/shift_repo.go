package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Mayesamomo/wageflow/internal/db"
	"github.com/Mayesamomo/wageflow/internal/domain"
)

// ShiftRepo is a SQLite implementation of ShiftRepository
type ShiftRepo struct {
	db *db.DB
}

// NewShiftRepo creates a new ShiftRepo
func NewShiftRepo(database *db.DB) *ShiftRepo {
	return &ShiftRepo{db: database}
}

const shiftColumns = `id, owner_id, client_id, start_time, end_time, shift_type, hourly_rate,
		       tax_percent, total_hours, earnings, tax_amount, notes, location, latitude,
		       longitude, invoice_id, created_at, updated_at`

// Create inserts a new shift into the database
func (r *ShiftRepo) Create(ctx context.Context, shift *domain.Shift) error {
	if err := shift.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO shifts (` + shiftColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		shift.ID,
		shift.OwnerID,
		shift.ClientID,
		formatTime(shift.StartTime),
		formatTime(shift.EndTime),
		string(shift.ShiftType),
		shift.HourlyRate,
		shift.TaxPercent,
		shift.TotalHours,
		shift.Earnings,
		shift.TaxAmount,
		shift.Notes,
		shift.Location,
		nullFloat(shift.Latitude),
		nullFloat(shift.Longitude),
		nullString(shift.InvoiceID),
		formatTime(shift.CreatedAt),
		formatTime(shift.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create shift: %w", err)
	}

	return nil
}

// GetByID retrieves a shift owned by ownerID
func (r *ShiftRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Shift, error) {
	return getShift(ctx, r.db, ownerID, id)
}

func getShift(ctx context.Context, q execer, ownerID, id string) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = ? AND owner_id = ?`

	shift, err := scanShift(q.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("shift", "shift %s not found", id)
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

// Update updates an unclaimed shift and records changed fields
func (r *ShiftRepo) Update(ctx context.Context, shift *domain.Shift, reason string) error {
	if err := shift.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Get current shift for audit trail
	old, err := getShift(ctx, tx, shift.OwnerID, shift.ID)
	if err != nil {
		return err
	}
	if old.IsInvoiced() {
		return domain.Immutable("shift", "cannot update shift: it is on an invoice")
	}

	query := `
		UPDATE shifts
		SET client_id = ?, start_time = ?, end_time = ?, shift_type = ?, hourly_rate = ?,
		    tax_percent = ?, total_hours = ?, earnings = ?, tax_amount = ?, notes = ?,
		    location = ?, latitude = ?, longitude = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND invoice_id IS NULL
	`

	shift.UpdatedAt = time.Now()

	result, err := tx.ExecContext(ctx, query,
		shift.ClientID,
		formatTime(shift.StartTime),
		formatTime(shift.EndTime),
		string(shift.ShiftType),
		shift.HourlyRate,
		shift.TaxPercent,
		shift.TotalHours,
		shift.Earnings,
		shift.TaxAmount,
		shift.Notes,
		shift.Location,
		nullFloat(shift.Latitude),
		nullFloat(shift.Longitude),
		formatTime(shift.UpdatedAt),
		shift.ID,
		shift.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.Immutable("shift", "cannot update shift: it is on an invoice")
	}

	if err := createAuditRecords(ctx, tx, old, shift, reason); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes an unclaimed shift
func (r *ShiftRepo) Delete(ctx context.Context, ownerID, id string) error {
	return deleteUnclaimed(ctx, r.db, "shifts", "shift", ownerID, id)
}

// deleteUnclaimed removes a shift or mileage row unless an invoice claims it
func deleteUnclaimed(ctx context.Context, database *db.DB, table, noun, ownerID, id string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var invoiceID sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT invoice_id FROM "+table+" WHERE id = ? AND owner_id = ?", id, ownerID,
	).Scan(&invoiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(noun, "%s %s not found", noun, id)
		}
		return fmt.Errorf("failed to check %s: %w", noun, err)
	}
	if invoiceID.Valid {
		return domain.Immutable(noun, "cannot delete %s: it is on an invoice", noun)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM "+table+" WHERE id = ? AND owner_id = ? AND invoice_id IS NULL", id, ownerID,
	); err != nil {
		return fmt.Errorf("failed to delete %s: %w", noun, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List retrieves shifts with optional filters
func (r *ShiftRepo) List(ctx context.Context, ownerID string, filter RecordFilter) ([]*domain.Shift, error) {
	where, args := recordWhere(ownerID, "start_time", filter)
	query := `SELECT ` + shiftColumns + ` FROM shifts ` + where + orderAndPage("start_time", filter)

	return queryShifts(ctx, r.db, query, args...)
}

func queryShifts(ctx context.Context, q execer, query string, args ...any) ([]*domain.Shift, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// GetHistory retrieves the audit trail for a shift
func (r *ShiftRepo) GetHistory(ctx context.Context, ownerID, shiftID string) ([]*domain.ShiftHistory, error) {
	query := `
		SELECT h.id, h.shift_id, h.field_name, h.old_value, h.new_value, h.change_reason, h.changed_at
		FROM shift_history h
		JOIN shifts s ON s.id = h.shift_id
		WHERE h.shift_id = ? AND s.owner_id = ?
		ORDER BY h.changed_at DESC, h.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, shiftID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift history: %w", err)
	}
	defer rows.Close()

	history := make([]*domain.ShiftHistory, 0)
	for rows.Next() {
		h := &domain.ShiftHistory{}
		var oldValue, newValue, reason sql.NullString
		var changedAt string

		err := rows.Scan(
			&h.ID,
			&h.ShiftID,
			&h.FieldName,
			&oldValue,
			&newValue,
			&reason,
			&changedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		h.OldValue = oldValue.String
		h.NewValue = newValue.String
		h.ChangeReason = reason.String
		if h.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, fmt.Errorf("failed to parse changed_at: %w", err)
		}

		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return history, nil
}

// createAuditRecords creates history records for changed fields
func createAuditRecords(ctx context.Context, tx *sql.Tx, old, new *domain.Shift, reason string) error {
	changedAt := now()

	insertHistory := func(fieldName, oldVal, newVal string) error {
		if oldVal == newVal {
			return nil
		}
		query := `
			INSERT INTO shift_history (shift_id, field_name, old_value, new_value, change_reason, changed_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, new.ID, fieldName, oldVal, newVal, reason, changedAt); err != nil {
			return fmt.Errorf("failed to audit %s change: %w", fieldName, err)
		}
		return nil
	}

	money := func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

	changes := []struct {
		field    string
		old, new string
	}{
		{"client_id", old.ClientID, new.ClientID},
		{"start_time", formatTime(old.StartTime), formatTime(new.StartTime)},
		{"end_time", formatTime(old.EndTime), formatTime(new.EndTime)},
		{"shift_type", string(old.ShiftType), string(new.ShiftType)},
		{"hourly_rate", money(old.HourlyRate), money(new.HourlyRate)},
		{"notes", old.Notes, new.Notes},
		{"location", old.Location, new.Location},
	}
	for _, c := range changes {
		if err := insertHistory(c.field, c.old, c.new); err != nil {
			return err
		}
	}

	return nil
}

// recordWhere builds the WHERE clause shared by shift and mileage listings
func recordWhere(ownerID, timeColumn string, f RecordFilter) (string, []any) {
	where := "WHERE owner_id = ?"
	args := []any{ownerID}

	if f.ClientID != nil {
		where += " AND client_id = ?"
		args = append(args, *f.ClientID)
	}
	if f.Start != nil {
		where += " AND " + timeColumn + " >= ?"
		args = append(args, formatTime(*f.Start))
	}
	if f.End != nil {
		where += " AND " + timeColumn + " <= ?"
		args = append(args, formatTime(*f.End))
	}
	if f.Invoiced != nil {
		if *f.Invoiced {
			where += " AND invoice_id IS NOT NULL"
		} else {
			where += " AND invoice_id IS NULL"
		}
	}
	if ids := uniqueIDs(f.IDs); len(ids) > 0 {
		where += " AND id IN (" + placeholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}

	return where, args
}

func orderAndPage(column string, f RecordFilter) string {
	return orderClause(column, f.Descending) + pageClause(f.Limit, f.Offset)
}

func orderClause(column string, desc bool) string {
	if desc {
		return " ORDER BY " + column + " DESC"
	}
	return " ORDER BY " + column + " ASC"
}

func pageClause(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	clause := fmt.Sprintf(" LIMIT %d", limit)
	if offset > 0 {
		clause += fmt.Sprintf(" OFFSET %d", offset)
	}
	return clause
}

func scanShift(row rowScanner) (*domain.Shift, error) {
	shift := &domain.Shift{}
	var startTime, endTime, shiftType, createdAt, updatedAt string
	var lat, lng sql.NullFloat64
	var invoiceID sql.NullString

	err := row.Scan(
		&shift.ID,
		&shift.OwnerID,
		&shift.ClientID,
		&startTime,
		&endTime,
		&shiftType,
		&shift.HourlyRate,
		&shift.TaxPercent,
		&shift.TotalHours,
		&shift.Earnings,
		&shift.TaxAmount,
		&shift.Notes,
		&shift.Location,
		&lat,
		&lng,
		&invoiceID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	shift.ShiftType = domain.ShiftType(shiftType)
	shift.Latitude = floatPtr(lat)
	shift.Longitude = floatPtr(lng)
	shift.InvoiceID = stringPtr(invoiceID)

	if shift.StartTime, err = parseTime(startTime); err != nil {
		return nil, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if shift.EndTime, err = parseTime(endTime); err != nil {
		return nil, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if shift.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if shift.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return shift, nil
}
