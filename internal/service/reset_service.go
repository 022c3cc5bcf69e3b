package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Mayesamomo/wageflow/internal/filestore"
	"github.com/Mayesamomo/wageflow/internal/logger"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// ResetService wipes an owner's data along with the payment proof files of
// the deleted invoices
type ResetService interface {
	// ResetInvoices deletes every invoice and releases the claimed records
	ResetInvoices(ctx context.Context, ownerID string) error

	// ResetAll deletes clients, shifts, mileages, invoices and the running clock
	ResetAll(ctx context.Context, ownerID string) error
}

type resetService struct {
	resetRepo repository.ResetRepository
	files     filestore.Store
	log       zerolog.Logger
}

// NewResetService creates a new reset service
func NewResetService(resetRepo repository.ResetRepository, files filestore.Store) ResetService {
	return &resetService{
		resetRepo: resetRepo,
		files:     files,
		log:       logger.WithComponent("reset"),
	}
}

func (s *resetService) ResetInvoices(ctx context.Context, ownerID string) error {
	proofs, err := s.resetRepo.ResetInvoices(ctx, ownerID)
	if err != nil {
		return err
	}
	s.removeProofs(ownerID, proofs)
	s.log.Info().Str("user_id", ownerID).Int("proofs", len(proofs)).Msg("invoices reset")
	return nil
}

func (s *resetService) ResetAll(ctx context.Context, ownerID string) error {
	proofs, err := s.resetRepo.ResetAll(ctx, ownerID)
	if err != nil {
		return err
	}
	s.removeProofs(ownerID, proofs)
	s.log.Info().Str("user_id", ownerID).Int("proofs", len(proofs)).Msg("all data reset")
	return nil
}

// removeProofs runs after the reset committed, so failures are only logged
func (s *resetService) removeProofs(ownerID string, paths []string) {
	for _, p := range paths {
		if err := s.files.Delete(p); err != nil {
			s.log.Warn().Err(err).Str("user_id", ownerID).Str("path", p).Msg("failed to remove payment proof")
		}
	}
}
