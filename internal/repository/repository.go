package repository

import (
	"context"
	"time"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

// UserRepository manages user persistence
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// TokenRepository manages stored refresh tokens
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
}

// ClientRepository manages client persistence. Every lookup is scoped to an owner.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Client, error)
	List(ctx context.Context, ownerID string) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, ownerID, id string) error
	// CountDependents returns how many shifts, mileages and invoices reference the client
	CountDependents(ctx context.Context, ownerID, id string) (int, error)
}

// RecordFilter narrows shift and mileage listings. Start/End apply to the
// shift start time or the mileage date.
type RecordFilter struct {
	ClientID   *string
	Start      *time.Time
	End        *time.Time
	Invoiced   *bool
	IDs        []string
	Descending bool
	Limit      int
	Offset     int
}

// ShiftRepository manages shift persistence with audit trail
type ShiftRepository interface {
	Create(ctx context.Context, shift *domain.Shift) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Shift, error)
	Update(ctx context.Context, shift *domain.Shift, reason string) error // Creates audit records, rejects claimed shifts
	Delete(ctx context.Context, ownerID, id string) error                 // Rejects claimed shifts
	List(ctx context.Context, ownerID string, filter RecordFilter) ([]*domain.Shift, error)
	GetHistory(ctx context.Context, ownerID, shiftID string) ([]*domain.ShiftHistory, error)
}

// MileageRepository manages mileage persistence
type MileageRepository interface {
	Create(ctx context.Context, mileage *domain.Mileage) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Mileage, error)
	Update(ctx context.Context, mileage *domain.Mileage) error // Rejects claimed records
	Delete(ctx context.Context, ownerID, id string) error      // Rejects claimed records
	List(ctx context.Context, ownerID string, filter RecordFilter) ([]*domain.Mileage, error)
}

// InvoiceFilter narrows invoice listings. IssuedFrom/IssuedTo apply to the issue date.
type InvoiceFilter struct {
	ClientID   *string
	Status     *domain.InvoiceStatus
	IssuedFrom *time.Time
	IssuedTo   *time.Time
	Descending bool
	Limit      int
	Offset     int
}

// InvoiceRepository reads invoices and runs invoice mutations as one unit of work
type InvoiceRepository interface {
	// GetByID returns the invoice with its claim sets populated
	GetByID(ctx context.Context, ownerID, id string) (*domain.Invoice, error)
	List(ctx context.Context, ownerID string, filter InvoiceFilter) ([]*domain.Invoice, error)
	// WithTx runs fn in a transaction; any error from fn rolls everything back
	WithTx(ctx context.Context, fn func(tx InvoiceTx) error) error
}

// InvoiceTx is the set of writes available inside an invoice transaction.
// Claim operations are compare-and-set over the requested ids: they either
// claim every id or fail with domain.ErrInvalidSelection and claim nothing.
type InvoiceTx interface {
	Get(ctx context.Context, ownerID, id string) (*domain.Invoice, error)
	NextSequence(ctx context.Context, ownerID string) (int, error)
	Insert(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, ownerID, id string) error

	ClaimShifts(ctx context.Context, ownerID, invoiceID string, ids []string) ([]*domain.Shift, error)
	ClaimMileages(ctx context.Context, ownerID, invoiceID string, ids []string) ([]*domain.Mileage, error)
	ReleaseShifts(ctx context.Context, ownerID, invoiceID string, ids []string) error
	ReleaseMileages(ctx context.Context, ownerID, invoiceID string, ids []string) error
	ClaimedShifts(ctx context.Context, invoiceID string) ([]*domain.Shift, error)
	ClaimedMileages(ctx context.Context, invoiceID string) ([]*domain.Mileage, error)
}

// ResetRepository wipes an owner's data and reports the payment proof
// files the deleted invoices referenced
type ResetRepository interface {
	ResetInvoices(ctx context.Context, ownerID string) ([]string, error)
	ResetAll(ctx context.Context, ownerID string) ([]string, error)
}

// ClockRepository manages the running shift clock (one per owner)
type ClockRepository interface {
	Get(ctx context.Context, ownerID string) (*domain.ActiveClock, error) // Returns nil if no clock is running
	Save(ctx context.Context, clock *domain.ActiveClock) error
	Delete(ctx context.Context, ownerID string) error
}
