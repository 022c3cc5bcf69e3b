package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mayesamomo/wageflow/internal/db"
	"github.com/Mayesamomo/wageflow/internal/domain"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

const invoiceColumns = `id, owner_id, client_id, invoice_number, issue_date, due_date, status,
		       hours_total, earnings_total, tax_total, mileage_total, grand_total,
		       notes, payment_notes, payment_proof, created_at, updated_at`

// GetByID retrieves an invoice with its claim sets
func (r *InvoiceRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Invoice, error) {
	return getInvoice(ctx, r.db, ownerID, id)
}

func getInvoice(ctx context.Context, q execer, ownerID, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ? AND owner_id = ?`

	invoice, err := scanInvoice(q.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("invoice", "invoice %s not found", id)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.ShiftIDs, err = shiftLedger.claimedIDs(ctx, q, invoice.ID); err != nil {
		return nil, err
	}
	if invoice.MileageIDs, err = mileageLedger.claimedIDs(ctx, q, invoice.ID); err != nil {
		return nil, err
	}

	return invoice, nil
}

// List retrieves invoices with optional filters. Claim sets are not loaded.
func (r *InvoiceRepo) List(ctx context.Context, ownerID string, filter InvoiceFilter) ([]*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE owner_id = ?`
	args := []any{ownerID}

	if filter.ClientID != nil {
		query += " AND client_id = ?"
		args = append(args, *filter.ClientID)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.IssuedFrom != nil {
		query += " AND issue_date >= ?"
		args = append(args, formatTime(*filter.IssuedFrom))
	}
	if filter.IssuedTo != nil {
		query += " AND issue_date <= ?"
		args = append(args, formatTime(*filter.IssuedTo))
	}

	query += orderClause("issue_date", filter.Descending) + ", invoice_number" + pageClause(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// WithTx runs fn inside a transaction and commits if it returns nil
func (r *InvoiceRepo) WithTx(ctx context.Context, fn func(tx InvoiceTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&invoiceTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// invoiceTx implements InvoiceTx over a single *sql.Tx
type invoiceTx struct {
	tx *sql.Tx
}

func (t *invoiceTx) Get(ctx context.Context, ownerID, id string) (*domain.Invoice, error) {
	return getInvoice(ctx, t.tx, ownerID, id)
}

// NextSequence atomically increments the owner's invoice counter
func (t *invoiceTx) NextSequence(ctx context.Context, ownerID string) (int, error) {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO invoice_sequences (owner_id, last_value) VALUES (?, 1)
		ON CONFLICT (owner_id) DO UPDATE SET last_value = last_value + 1
	`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to advance invoice sequence: %w", err)
	}

	var seq int
	err = t.tx.QueryRowContext(ctx,
		"SELECT last_value FROM invoice_sequences WHERE owner_id = ?", ownerID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to read invoice sequence: %w", err)
	}

	return seq, nil
}

func (t *invoiceTx) Insert(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := t.tx.ExecContext(ctx, query,
		invoice.ID,
		invoice.OwnerID,
		invoice.ClientID,
		invoice.Number,
		formatTime(invoice.IssueDate),
		formatTime(invoice.DueDate),
		string(invoice.Status),
		invoice.HoursTotal,
		invoice.EarningsTotal,
		invoice.TaxTotal,
		invoice.MileageTotal,
		invoice.GrandTotal,
		invoice.Notes,
		invoice.PaymentNotes,
		invoice.PaymentProof,
		formatTime(invoice.CreatedAt),
		formatTime(invoice.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("invoice", "invoice number %s already exists", invoice.Number)
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

func (t *invoiceTx) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE invoices
		SET client_id = ?, issue_date = ?, due_date = ?, status = ?, hours_total = ?,
		    earnings_total = ?, tax_total = ?, mileage_total = ?, grand_total = ?,
		    notes = ?, payment_notes = ?, payment_proof = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	result, err := t.tx.ExecContext(ctx, query,
		invoice.ClientID,
		formatTime(invoice.IssueDate),
		formatTime(invoice.DueDate),
		string(invoice.Status),
		invoice.HoursTotal,
		invoice.EarningsTotal,
		invoice.TaxTotal,
		invoice.MileageTotal,
		invoice.GrandTotal,
		invoice.Notes,
		invoice.PaymentNotes,
		invoice.PaymentProof,
		formatTime(invoice.UpdatedAt),
		invoice.ID,
		invoice.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("invoice", "invoice %s not found", invoice.ID)
	}

	return nil
}

// Delete removes the invoice row. Claims must be released first.
func (t *invoiceTx) Delete(ctx context.Context, ownerID, id string) error {
	result, err := t.tx.ExecContext(ctx, "DELETE FROM invoices WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("invoice", "invoice %s not found", id)
	}

	return nil
}

func (t *invoiceTx) ClaimShifts(ctx context.Context, ownerID, invoiceID string, ids []string) ([]*domain.Shift, error) {
	if err := shiftLedger.claim(ctx, t.tx, ownerID, invoiceID, ids); err != nil {
		return nil, err
	}
	return t.listShifts(ctx, ownerID, uniqueIDs(ids))
}

func (t *invoiceTx) ClaimMileages(ctx context.Context, ownerID, invoiceID string, ids []string) ([]*domain.Mileage, error) {
	if err := mileageLedger.claim(ctx, t.tx, ownerID, invoiceID, ids); err != nil {
		return nil, err
	}
	return t.listMileages(ctx, ownerID, uniqueIDs(ids))
}

func (t *invoiceTx) ReleaseShifts(ctx context.Context, ownerID, invoiceID string, ids []string) error {
	return shiftLedger.release(ctx, t.tx, ownerID, invoiceID, ids)
}

func (t *invoiceTx) ReleaseMileages(ctx context.Context, ownerID, invoiceID string, ids []string) error {
	return mileageLedger.release(ctx, t.tx, ownerID, invoiceID, ids)
}

func (t *invoiceTx) ClaimedShifts(ctx context.Context, invoiceID string) ([]*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE invoice_id = ? ORDER BY start_time`
	return queryShifts(ctx, t.tx, query, invoiceID)
}

func (t *invoiceTx) ClaimedMileages(ctx context.Context, invoiceID string) ([]*domain.Mileage, error) {
	query := `SELECT ` + mileageColumns + ` FROM mileages WHERE invoice_id = ? ORDER BY date`
	return queryMileages(ctx, t.tx, query, invoiceID)
}

func (t *invoiceTx) listShifts(ctx context.Context, ownerID string, ids []string) ([]*domain.Shift, error) {
	if len(ids) == 0 {
		return []*domain.Shift{}, nil
	}
	where, args := recordWhere(ownerID, "start_time", RecordFilter{IDs: ids})
	return queryShifts(ctx, t.tx, `SELECT `+shiftColumns+` FROM shifts `+where+` ORDER BY start_time`, args...)
}

func (t *invoiceTx) listMileages(ctx context.Context, ownerID string, ids []string) ([]*domain.Mileage, error) {
	if len(ids) == 0 {
		return []*domain.Mileage{}, nil
	}
	where, args := recordWhere(ownerID, "date", RecordFilter{IDs: ids})
	return queryMileages(ctx, t.tx, `SELECT `+mileageColumns+` FROM mileages `+where+` ORDER BY date`, args...)
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var issueDate, dueDate, status, createdAt, updatedAt string

	err := row.Scan(
		&invoice.ID,
		&invoice.OwnerID,
		&invoice.ClientID,
		&invoice.Number,
		&issueDate,
		&dueDate,
		&status,
		&invoice.HoursTotal,
		&invoice.EarningsTotal,
		&invoice.TaxTotal,
		&invoice.MileageTotal,
		&invoice.GrandTotal,
		&invoice.Notes,
		&invoice.PaymentNotes,
		&invoice.PaymentProof,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.Status = domain.InvoiceStatus(status)
	if invoice.IssueDate, err = parseTime(issueDate); err != nil {
		return nil, fmt.Errorf("failed to parse issue_date: %w", err)
	}
	if invoice.DueDate, err = parseTime(dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due_date: %w", err)
	}
	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if invoice.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return invoice, nil
}
