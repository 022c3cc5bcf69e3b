package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Mayesamomo/wageflow/internal/db"
)

// ResetRepo wipes an owner's data. The user row and its tokens are kept.
type ResetRepo struct {
	db *db.DB
}

// NewResetRepo creates a new ResetRepo
func NewResetRepo(database *db.DB) *ResetRepo {
	return &ResetRepo{db: database}
}

// ResetInvoices deletes every invoice of the owner and releases their claims.
// It returns the payment proof paths the deleted invoices referenced.
func (r *ResetRepo) ResetInvoices(ctx context.Context, ownerID string) ([]string, error) {
	return r.exec(ctx, ownerID, []string{
		"UPDATE shifts SET invoice_id = NULL WHERE owner_id = ? AND invoice_id IS NOT NULL",
		"UPDATE mileages SET invoice_id = NULL WHERE owner_id = ? AND invoice_id IS NOT NULL",
		"DELETE FROM invoices WHERE owner_id = ?",
	})
}

// ResetAll deletes clients, shifts, mileages, invoices, numbering and the
// running clock. It returns the payment proof paths of the deleted invoices.
func (r *ResetRepo) ResetAll(ctx context.Context, ownerID string) ([]string, error) {
	// Order matters due to foreign keys
	return r.exec(ctx, ownerID, []string{
		"DELETE FROM active_clocks WHERE owner_id = ?",
		"DELETE FROM shift_history WHERE shift_id IN (SELECT id FROM shifts WHERE owner_id = ?)",
		"DELETE FROM shifts WHERE owner_id = ?",
		"DELETE FROM mileages WHERE owner_id = ?",
		"DELETE FROM invoices WHERE owner_id = ?",
		"DELETE FROM invoice_sequences WHERE owner_id = ?",
		"DELETE FROM clients WHERE owner_id = ?",
	})
}

func (r *ResetRepo) exec(ctx context.Context, ownerID string, statements []string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	proofs, err := proofPaths(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, ownerID); err != nil {
			return nil, fmt.Errorf("failed to reset data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return proofs, nil
}

func proofPaths(ctx context.Context, tx *sql.Tx, ownerID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT payment_proof FROM invoices WHERE owner_id = ? AND payment_proof != ''", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment proofs: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan payment proof: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
