package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mayesamomo/wageflow/internal/config"
	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/filestore"
	"github.com/Mayesamomo/wageflow/internal/logger"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// CreateInvoiceInput selects the records an invoice claims. Zero dates fall
// back to now and issue date + due days.
type CreateInvoiceInput struct {
	ClientID   string
	ShiftIDs   []string
	MileageIDs []string
	IssueDate  *time.Time
	DueDate    *time.Time
	Notes      string
}

// InvoicePatch carries the fields to change on an invoice. Nil fields are
// left alone. A nil id slice keeps the current claim set; a non-nil empty
// slice clears it.
type InvoicePatch struct {
	IssueDate    *time.Time
	DueDate      *time.Time
	Status       *domain.InvoiceStatus
	Notes        *string
	PaymentNotes *string
	ShiftIDs     []string
	MileageIDs   []string
}

func (p InvoicePatch) changesClaims() bool {
	return p.ShiftIDs != nil || p.MileageIDs != nil
}

// InvoiceService creates invoices over shift and mileage records, keeps
// their totals in step with the claimed records, and governs status changes.
type InvoiceService interface {
	// CreateInvoice claims the selected records and returns a hydrated draft
	CreateInvoice(ctx context.Context, ownerID string, in CreateInvoiceInput) (*domain.Invoice, error)

	// UpdateInvoice applies a patch. Claim changes and totals commit together or not at all.
	UpdateInvoice(ctx context.Context, ownerID, id string, patch InvoicePatch) (*domain.Invoice, error)

	// MarkAsPaid sets status Paid regardless of the prior status
	MarkAsPaid(ctx context.Context, ownerID, id string, paymentNotes *string) (*domain.Invoice, error)

	// AttachPaymentProof stores a proof file, replacing any previous one, and marks the invoice Paid
	AttachPaymentProof(ctx context.Context, ownerID, id, filename string, data []byte) (*domain.Invoice, error)

	// GetPaymentProof returns the proof bytes and their stored path
	GetPaymentProof(ctx context.Context, ownerID, id string) ([]byte, string, error)

	// DeleteInvoice releases every claimed record and removes the invoice
	DeleteInvoice(ctx context.Context, ownerID, id string) error

	// GetInvoice returns the invoice with client, shifts and mileages populated
	GetInvoice(ctx context.Context, ownerID, id string) (*domain.Invoice, error)

	// ListInvoices lists invoices with their client populated
	ListInvoices(ctx context.Context, ownerID string, filter repository.InvoiceFilter) ([]*domain.Invoice, error)

	// MarkOverdue moves sent invoices past their due date to Overdue
	MarkOverdue(ctx context.Context, ownerID string, now time.Time) (int, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	shiftRepo   repository.ShiftRepository
	mileageRepo repository.MileageRepository
	files       filestore.Store
	cfg         config.InvoiceConfig
	log         zerolog.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	shiftRepo repository.ShiftRepository,
	mileageRepo repository.MileageRepository,
	files filestore.Store,
	cfg config.InvoiceConfig,
) InvoiceService {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "INV"
	}
	if cfg.DefaultDueDays <= 0 {
		cfg.DefaultDueDays = domain.DefaultDueDays
	}
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		shiftRepo:   shiftRepo,
		mileageRepo: mileageRepo,
		files:       files,
		cfg:         cfg,
		log:         logger.WithComponent("invoice"),
		now:         time.Now,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, ownerID string, in CreateInvoiceInput) (*domain.Invoice, error) {
	// Verify client belongs to owner
	if _, err := s.clientRepo.GetByID(ctx, ownerID, in.ClientID); err != nil {
		return nil, err
	}

	now := s.now()
	issue := now
	var due time.Time
	if in.IssueDate != nil {
		issue = *in.IssueDate
	}
	if in.DueDate != nil {
		due = *in.DueDate
	}

	var invoice *domain.Invoice
	err := s.invoiceRepo.WithTx(ctx, func(tx repository.InvoiceTx) error {
		seq, err := tx.NextSequence(ctx, ownerID)
		if err != nil {
			return err
		}

		number := domain.FormatInvoiceNumber(s.cfg.NumberPrefix, ownerID, seq)
		invoice = domain.NewInvoice(ownerID, in.ClientID, number, issue, due, s.cfg.DefaultDueDays)
		invoice.CreatedAt, invoice.UpdatedAt = now, now
		invoice.Notes = in.Notes
		if err := invoice.Validate(); err != nil {
			return err
		}

		// The invoice row must exist before records can reference it
		if err := tx.Insert(ctx, invoice); err != nil {
			return err
		}

		shifts, err := tx.ClaimShifts(ctx, ownerID, invoice.ID, in.ShiftIDs)
		if err != nil {
			return err
		}
		mileages, err := tx.ClaimMileages(ctx, ownerID, invoice.ID, in.MileageIDs)
		if err != nil {
			return err
		}

		invoice.ApplyTotals(domain.SumClaims(shifts, mileages))
		return tx.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", ownerID).
		Str("invoice", invoice.Number).
		Int("shifts", len(in.ShiftIDs)).
		Int("mileages", len(in.MileageIDs)).
		Float64("grand_total", invoice.GrandTotal).
		Msg("invoice created")

	return s.GetInvoice(ctx, ownerID, invoice.ID)
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, ownerID, id string, patch InvoicePatch) (*domain.Invoice, error) {
	err := s.invoiceRepo.WithTx(ctx, func(tx repository.InvoiceTx) error {
		invoice, err := tx.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if !invoice.Status.Editable() {
			return domain.Immutable("update invoice", "invoice %s is paid and cannot be edited", invoice.Number)
		}

		if patch.IssueDate != nil {
			invoice.IssueDate = *patch.IssueDate
		}
		if patch.DueDate != nil {
			invoice.DueDate = *patch.DueDate
		}
		if patch.Notes != nil {
			invoice.Notes = *patch.Notes
		}
		if patch.PaymentNotes != nil {
			invoice.PaymentNotes = *patch.PaymentNotes
		}
		if patch.Status != nil {
			prev := invoice.Status
			if err := invoice.Transition(*patch.Status, s.now()); err != nil {
				return err
			}
			if !prev.Nominal(invoice.Status) {
				s.log.Warn().
					Str("invoice", invoice.Number).
					Str("from", string(prev)).
					Str("to", string(invoice.Status)).
					Msg("off-path status change")
			}
		}

		if patch.changesClaims() {
			if err := s.reconcileClaims(ctx, tx, invoice, patch); err != nil {
				return err
			}
		}

		if err := invoice.Validate(); err != nil {
			return err
		}
		invoice.UpdatedAt = s.now()
		return tx.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return s.GetInvoice(ctx, ownerID, id)
}

// reconcileClaims moves the invoice's claim sets to the patched ones and
// recomputes totals. Retained ids are not re-claimed. Any failure aborts the
// enclosing transaction, which also undoes the releases.
func (s *invoiceService) reconcileClaims(ctx context.Context, tx repository.InvoiceTx, invoice *domain.Invoice, patch InvoicePatch) error {
	nextShifts := patch.ShiftIDs
	if nextShifts == nil {
		nextShifts = invoice.ShiftIDs
	}
	nextMileages := patch.MileageIDs
	if nextMileages == nil {
		nextMileages = invoice.MileageIDs
	}

	addShifts, removeShifts := diffIDs(invoice.ShiftIDs, nextShifts)
	addMileages, removeMileages := diffIDs(invoice.MileageIDs, nextMileages)

	if err := tx.ReleaseShifts(ctx, invoice.OwnerID, invoice.ID, removeShifts); err != nil {
		return err
	}
	if err := tx.ReleaseMileages(ctx, invoice.OwnerID, invoice.ID, removeMileages); err != nil {
		return err
	}
	if _, err := tx.ClaimShifts(ctx, invoice.OwnerID, invoice.ID, addShifts); err != nil {
		return err
	}
	if _, err := tx.ClaimMileages(ctx, invoice.OwnerID, invoice.ID, addMileages); err != nil {
		return err
	}

	shifts, err := tx.ClaimedShifts(ctx, invoice.ID)
	if err != nil {
		return err
	}
	mileages, err := tx.ClaimedMileages(ctx, invoice.ID)
	if err != nil {
		return err
	}

	invoice.ApplyTotals(domain.SumClaims(shifts, mileages))
	invoice.ShiftIDs = shiftIDs(shifts)
	invoice.MileageIDs = mileageIDs(mileages)
	return nil
}

func (s *invoiceService) MarkAsPaid(ctx context.Context, ownerID, id string, paymentNotes *string) (*domain.Invoice, error) {
	err := s.invoiceRepo.WithTx(ctx, func(tx repository.InvoiceTx) error {
		invoice, err := tx.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := invoice.Transition(domain.InvoiceStatusPaid, s.now()); err != nil {
			return err
		}
		if paymentNotes != nil {
			invoice.PaymentNotes = *paymentNotes
		}
		return tx.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", ownerID).Str("invoice_id", id).Msg("invoice marked paid")
	return s.GetInvoice(ctx, ownerID, id)
}

func (s *invoiceService) AttachPaymentProof(ctx context.Context, ownerID, id, filename string, data []byte) (*domain.Invoice, error) {
	if len(data) == 0 {
		return nil, domain.Validation("attach payment proof", "payment proof is empty")
	}

	// Fail fast before writing anything for a missing or foreign invoice
	if _, err := s.invoiceRepo.GetByID(ctx, ownerID, id); err != nil {
		return nil, err
	}

	path := filestore.ProofPath(ownerID, id, s.now().UnixNano(), filepath.Ext(filename))
	if err := s.files.Save(path, data); err != nil {
		return nil, fmt.Errorf("failed to store payment proof: %w", err)
	}

	var previous string
	err := s.invoiceRepo.WithTx(ctx, func(tx repository.InvoiceTx) error {
		invoice, err := tx.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		previous = invoice.PaymentProof
		invoice.PaymentProof = path
		if err := invoice.Transition(domain.InvoiceStatusPaid, s.now()); err != nil {
			return err
		}
		return tx.Update(ctx, invoice)
	})
	if err != nil {
		if derr := s.files.Delete(path); derr != nil {
			s.log.Warn().Err(derr).Str("path", path).Msg("failed to remove unused payment proof")
		}
		return nil, err
	}

	if previous != "" && previous != path {
		if err := s.files.Delete(previous); err != nil {
			s.log.Warn().Err(err).Str("path", previous).Msg("failed to remove replaced payment proof")
		}
	}

	s.log.Info().Str("user_id", ownerID).Str("invoice_id", id).Int("bytes", len(data)).Msg("payment proof attached")
	return s.GetInvoice(ctx, ownerID, id)
}

func (s *invoiceService) GetPaymentProof(ctx context.Context, ownerID, id string) ([]byte, string, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}
	if invoice.PaymentProof == "" {
		return nil, "", domain.NotFound("payment proof", "no payment proof found for invoice %s", invoice.Number)
	}

	ok, err := s.files.Exists(invoice.PaymentProof)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", domain.NotFound("payment proof", "payment proof file for invoice %s is missing", invoice.Number)
	}

	data, err := s.files.Read(invoice.PaymentProof)
	if err != nil {
		return nil, "", err
	}
	return data, invoice.PaymentProof, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, ownerID, id string) error {
	var proof, number string
	err := s.invoiceRepo.WithTx(ctx, func(tx repository.InvoiceTx) error {
		invoice, err := tx.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if !invoice.Status.Deletable() {
			return domain.Immutable("delete invoice", "invoice %s is %s and cannot be deleted", invoice.Number, invoice.Status)
		}

		if err := tx.ReleaseShifts(ctx, ownerID, invoice.ID, invoice.ShiftIDs); err != nil {
			return err
		}
		if err := tx.ReleaseMileages(ctx, ownerID, invoice.ID, invoice.MileageIDs); err != nil {
			return err
		}

		proof, number = invoice.PaymentProof, invoice.Number
		return tx.Delete(ctx, ownerID, invoice.ID)
	})
	if err != nil {
		return err
	}

	if proof != "" {
		if err := s.files.Delete(proof); err != nil {
			s.log.Warn().Err(err).Str("path", proof).Msg("failed to remove payment proof")
		}
	}

	s.log.Info().Str("user_id", ownerID).Str("invoice", number).Msg("invoice deleted")
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, ownerID, id string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if invoice.Client, err = s.clientRepo.GetByID(ctx, ownerID, invoice.ClientID); err != nil {
		return nil, err
	}

	invoice.Shifts = make([]*domain.Shift, 0, len(invoice.ShiftIDs))
	if len(invoice.ShiftIDs) > 0 {
		invoice.Shifts, err = s.shiftRepo.List(ctx, ownerID, repository.RecordFilter{IDs: invoice.ShiftIDs})
		if err != nil {
			return nil, err
		}
	}

	invoice.Mileages = make([]*domain.Mileage, 0, len(invoice.MileageIDs))
	if len(invoice.MileageIDs) > 0 {
		invoice.Mileages, err = s.mileageRepo.List(ctx, ownerID, repository.RecordFilter{IDs: invoice.MileageIDs})
		if err != nil {
			return nil, err
		}
	}

	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, ownerID string, filter repository.InvoiceFilter) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	clients, err := s.clientRepo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	for _, inv := range invoices {
		inv.Client = byID[inv.ClientID]
	}

	return invoices, nil
}

func (s *invoiceService) MarkOverdue(ctx context.Context, ownerID string, now time.Time) (int, error) {
	sent := domain.InvoiceStatusSent
	candidates, err := s.invoiceRepo.List(ctx, ownerID, repository.InvoiceFilter{Status: &sent})
	if err != nil {
		return 0, err
	}

	count := 0
	err = s.invoiceRepo.WithTx(ctx, func(tx repository.InvoiceTx) error {
		for _, c := range candidates {
			invoice, err := tx.Get(ctx, ownerID, c.ID)
			if err != nil {
				return err
			}
			if !invoice.IsOverdue(now) {
				continue
			}
			if err := invoice.Transition(domain.InvoiceStatusOverdue, now); err != nil {
				return err
			}
			if err := tx.Update(ctx, invoice); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.log.Info().Str("user_id", ownerID).Int("count", count).Msg("invoices marked overdue")
	}
	return count, nil
}
