package service

import (
	"context"
	"time"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// MileageInput describes a mileage record. On update, nil fields are left alone.
type MileageInput struct {
	ClientID     *string
	Date         *time.Time
	Distance     *float64
	RatePerKm    *float64 // nil on create uses the owner's mileage rate
	Description  *string
	FromLocation *string
	ToLocation   *string
}

// MileageService records travel. Claimed records are read-only.
type MileageService interface {
	Create(ctx context.Context, ownerID string, in MileageInput) (*domain.Mileage, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Mileage, error)
	List(ctx context.Context, ownerID string, filter repository.RecordFilter) ([]*domain.Mileage, error)
	Update(ctx context.Context, ownerID, id string, in MileageInput) (*domain.Mileage, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type mileageService struct {
	mileageRepo repository.MileageRepository
	clientRepo  repository.ClientRepository
	userRepo    repository.UserRepository
}

// NewMileageService creates a new mileage service
func NewMileageService(
	mileageRepo repository.MileageRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
) MileageService {
	return &mileageService{
		mileageRepo: mileageRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
	}
}

func (s *mileageService) Create(ctx context.Context, ownerID string, in MileageInput) (*domain.Mileage, error) {
	if in.ClientID == nil || in.Distance == nil {
		return nil, domain.Validation("create mileage", "client and distance are required")
	}

	client, err := s.clientRepo.GetByID(ctx, ownerID, *in.ClientID)
	if err != nil {
		return nil, err
	}

	var rate float64
	if in.RatePerKm != nil {
		rate = *in.RatePerKm
	} else {
		user, err := s.userRepo.GetByID(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		rate = user.MileageRate
	}

	date := time.Now()
	if in.Date != nil {
		date = *in.Date
	}

	m := domain.NewMileage(ownerID, client.ID, date, *in.Distance, rate)
	applyMileageText(m, in)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.mileageRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	m.Client = client
	return m, nil
}

func (s *mileageService) Get(ctx context.Context, ownerID, id string) (*domain.Mileage, error) {
	m, err := s.mileageRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if m.Client, err = s.clientRepo.GetByID(ctx, ownerID, m.ClientID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *mileageService) List(ctx context.Context, ownerID string, filter repository.RecordFilter) ([]*domain.Mileage, error) {
	return s.mileageRepo.List(ctx, ownerID, filter)
}

func (s *mileageService) Update(ctx context.Context, ownerID, id string, in MileageInput) (*domain.Mileage, error) {
	m, err := s.mileageRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if m.IsInvoiced() {
		return nil, domain.Immutable("update mileage", "mileage is already invoiced")
	}

	if in.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, ownerID, *in.ClientID)
		if err != nil {
			return nil, err
		}
		m.ClientID = client.ID
	}
	if in.Date != nil {
		m.Date = *in.Date
	}
	if in.Distance != nil {
		m.Distance = *in.Distance
	}
	if in.RatePerKm != nil {
		m.RatePerKm = *in.RatePerKm
	}
	applyMileageText(m, in)

	m.Recalculate()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.UpdatedAt = time.Now()

	if err := s.mileageRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *mileageService) Delete(ctx context.Context, ownerID, id string) error {
	return s.mileageRepo.Delete(ctx, ownerID, id)
}

func applyMileageText(m *domain.Mileage, in MileageInput) {
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.FromLocation != nil {
		m.FromLocation = *in.FromLocation
	}
	if in.ToLocation != nil {
		m.ToLocation = *in.ToLocation
	}
}
