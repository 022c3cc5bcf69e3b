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

// ClientRepo is a SQLite implementation of ClientRepository
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

const clientColumns = `id, owner_id, name, contact_name, contact_email, contact_phone,
		       address, latitude, longitude, notes, created_at, updated_at`

// Create inserts a new client into the database
func (r *ClientRepo) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.OwnerID,
		client.Name,
		client.ContactName,
		client.ContactEmail,
		client.ContactPhone,
		client.Address,
		nullFloat(client.Latitude),
		nullFloat(client.Longitude),
		client.Notes,
		formatTime(client.CreatedAt),
		formatTime(client.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// GetByID retrieves a client owned by ownerID
func (r *ClientRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ? AND owner_id = ?`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("client", "client %s not found", id)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return client, nil
}

// List retrieves an owner's clients ordered by name
func (r *ClientRepo) List(ctx context.Context, ownerID string) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = ? ORDER BY name COLLATE NOCASE`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// Update updates an existing client
func (r *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE clients
		SET name = ?, contact_name = ?, contact_email = ?, contact_phone = ?, address = ?,
		    latitude = ?, longitude = ?, notes = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	client.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.ContactName,
		client.ContactEmail,
		client.ContactPhone,
		client.Address,
		nullFloat(client.Latitude),
		nullFloat(client.Longitude),
		client.Notes,
		formatTime(client.UpdatedAt),
		client.ID,
		client.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("client", "client %s not found", client.ID)
	}

	return nil
}

// Delete removes a client. Callers check CountDependents first.
func (r *ClientRepo) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("client", "client %s not found", id)
	}

	return nil
}

// CountDependents counts shifts, mileages and invoices referencing the client
func (r *ClientRepo) CountDependents(ctx context.Context, ownerID, id string) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM shifts WHERE client_id = ? AND owner_id = ?) +
			(SELECT COUNT(*) FROM mileages WHERE client_id = ? AND owner_id = ?) +
			(SELECT COUNT(*) FROM invoices WHERE client_id = ? AND owner_id = ?)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, id, ownerID, id, ownerID, id, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count client dependents: %w", err)
	}

	return count, nil
}

func scanClient(row rowScanner) (*domain.Client, error) {
	client := &domain.Client{}
	var lat, lng sql.NullFloat64
	var createdAt, updatedAt string

	err := row.Scan(
		&client.ID,
		&client.OwnerID,
		&client.Name,
		&client.ContactName,
		&client.ContactEmail,
		&client.ContactPhone,
		&client.Address,
		&lat,
		&lng,
		&client.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	client.Latitude = floatPtr(lat)
	client.Longitude = floatPtr(lng)
	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return client, nil
}
