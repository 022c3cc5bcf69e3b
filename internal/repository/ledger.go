package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

// ledger tracks which invoice, if any, claims each row of a shift or mileage
// table. The claim is the row's invoice_id column.
type ledger struct {
	table string
	noun  string
}

var (
	shiftLedger   = ledger{table: "shifts", noun: "shift"}
	mileageLedger = ledger{table: "mileages", noun: "mileage"}
)

// claim assigns every id to invoiceID with a single conditional update. Rows
// that are missing, foreign or already claimed do not match, so the affected
// count falls short and the savepoint undoes the partial claim.
func (l ledger) claim(ctx context.Context, tx *sql.Tx, ownerID, invoiceID string, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, "SAVEPOINT ledger_claim"); err != nil {
		return fmt.Errorf("failed to open claim savepoint: %w", err)
	}

	query := `
		UPDATE ` + l.table + `
		SET invoice_id = ?, updated_at = ?
		WHERE owner_id = ? AND invoice_id IS NULL AND id IN (` + placeholders(len(ids)) + `)
	`
	args := []any{invoiceID, now(), ownerID}
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		_, _ = tx.ExecContext(ctx, "ROLLBACK TO ledger_claim")
		return fmt.Errorf("failed to claim %ss: %w", l.noun, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		_, _ = tx.ExecContext(ctx, "ROLLBACK TO ledger_claim")
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows != int64(len(ids)) {
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO ledger_claim"); err != nil {
			return fmt.Errorf("failed to undo partial claim: %w", err)
		}
		_, _ = tx.ExecContext(ctx, "RELEASE ledger_claim")
		return domain.InvalidSelection("claim "+l.noun+"s",
			fmt.Errorf("%d of %d %ss could be claimed", rows, len(ids), l.noun))
	}

	if _, err := tx.ExecContext(ctx, "RELEASE ledger_claim"); err != nil {
		return fmt.Errorf("failed to release claim savepoint: %w", err)
	}

	return nil
}

// release clears the claim on ids held by invoiceID. Ids not held by the
// invoice are left alone.
func (l ledger) release(ctx context.Context, tx *sql.Tx, ownerID, invoiceID string, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE ` + l.table + `
		SET invoice_id = NULL, updated_at = ?
		WHERE owner_id = ? AND invoice_id = ? AND id IN (` + placeholders(len(ids)) + `)
	`
	args := []any{now(), ownerID, invoiceID}
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to release %ss: %w", l.noun, err)
	}

	return nil
}

// claimedIDs returns the ids currently claimed by invoiceID
func (l ledger) claimedIDs(ctx context.Context, q execer, invoiceID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT id FROM "+l.table+" WHERE invoice_id = ? ORDER BY id", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load claimed %ss: %w", l.noun, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan claimed %s: %w", l.noun, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed %ss: %w", l.noun, err)
	}

	return ids, nil
}
