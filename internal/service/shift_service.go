package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/logger"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// ShiftInput describes a shift. On update, nil fields are left alone.
type ShiftInput struct {
	ClientID          *string
	StartTime         *time.Time
	EndTime           *time.Time
	ShiftType         *domain.ShiftType
	HourlyRate        *float64 // nil on create uses the owner's default rate
	Notes             *string
	Location          *string
	UseClientLocation bool // copy address and coordinates from the client
	Reason            string
}

// ShiftService records worked shifts. Claimed shifts are read-only.
type ShiftService interface {
	Create(ctx context.Context, ownerID string, in ShiftInput) (*domain.Shift, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Shift, error)
	List(ctx context.Context, ownerID string, filter repository.RecordFilter) ([]*domain.Shift, error)
	Update(ctx context.Context, ownerID, id string, in ShiftInput) (*domain.Shift, error)
	Delete(ctx context.Context, ownerID, id string) error
	History(ctx context.Context, ownerID, id string) ([]*domain.ShiftHistory, error)
}

type shiftService struct {
	shiftRepo  repository.ShiftRepository
	clientRepo repository.ClientRepository
	userRepo   repository.UserRepository
	log        zerolog.Logger
}

// NewShiftService creates a new shift service
func NewShiftService(
	shiftRepo repository.ShiftRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
) ShiftService {
	return &shiftService{
		shiftRepo:  shiftRepo,
		clientRepo: clientRepo,
		userRepo:   userRepo,
		log:        logger.WithComponent("shift"),
	}
}

func (s *shiftService) Create(ctx context.Context, ownerID string, in ShiftInput) (*domain.Shift, error) {
	if in.ClientID == nil || in.StartTime == nil || in.EndTime == nil {
		return nil, domain.Validation("create shift", "client, start and end time are required")
	}

	client, err := s.clientRepo.GetByID(ctx, ownerID, *in.ClientID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rate := in.HourlyRate
	if rate == nil {
		rate = user.HourlyRate
	}
	if rate == nil {
		return nil, domain.Validation("create shift", "hourly rate is required; set one on the shift or your profile")
	}

	taxPercent := user.TaxPercent
	if taxPercent <= 0 {
		taxPercent = domain.DefaultTaxPercent
	}

	shift := domain.NewShift(ownerID, client.ID, *in.StartTime, *in.EndTime, *rate, taxPercent)
	if in.ShiftType != nil {
		shift.ShiftType = *in.ShiftType
	}
	if in.Notes != nil {
		shift.Notes = *in.Notes
	}
	if in.Location != nil {
		shift.Location = *in.Location
	}
	if in.UseClientLocation {
		useClientLocation(shift, client)
	}

	if err := shift.Validate(); err != nil {
		return nil, err
	}
	if err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, err
	}

	s.log.Debug().Str("user_id", ownerID).Str("shift_id", shift.ID).Float64("hours", shift.TotalHours).Msg("shift recorded")
	shift.Client = client
	return shift, nil
}

func (s *shiftService) Get(ctx context.Context, ownerID, id string) (*domain.Shift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if shift.Client, err = s.clientRepo.GetByID(ctx, ownerID, shift.ClientID); err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) List(ctx context.Context, ownerID string, filter repository.RecordFilter) ([]*domain.Shift, error) {
	return s.shiftRepo.List(ctx, ownerID, filter)
}

func (s *shiftService) Update(ctx context.Context, ownerID, id string, in ShiftInput) (*domain.Shift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if shift.IsInvoiced() {
		return nil, domain.Immutable("update shift", "shift is already invoiced")
	}

	var client *domain.Client
	if in.ClientID != nil {
		if client, err = s.clientRepo.GetByID(ctx, ownerID, *in.ClientID); err != nil {
			return nil, err
		}
		shift.ClientID = client.ID
	}
	if in.StartTime != nil {
		shift.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		shift.EndTime = *in.EndTime
	}
	if in.HourlyRate != nil {
		shift.HourlyRate = *in.HourlyRate
	}
	if in.ShiftType != nil {
		shift.ShiftType = *in.ShiftType
	}
	if in.Notes != nil {
		shift.Notes = *in.Notes
	}
	if in.Location != nil {
		shift.Location = *in.Location
	}
	if in.UseClientLocation {
		if client == nil {
			if client, err = s.clientRepo.GetByID(ctx, ownerID, shift.ClientID); err != nil {
				return nil, err
			}
		}
		useClientLocation(shift, client)
	}

	shift.Recalculate()
	if err := shift.Validate(); err != nil {
		return nil, err
	}
	shift.UpdatedAt = time.Now()

	if err := s.shiftRepo.Update(ctx, shift, in.Reason); err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) Delete(ctx context.Context, ownerID, id string) error {
	return s.shiftRepo.Delete(ctx, ownerID, id)
}

func (s *shiftService) History(ctx context.Context, ownerID, id string) ([]*domain.ShiftHistory, error) {
	return s.shiftRepo.GetHistory(ctx, ownerID, id)
}

// useClientLocation copies the client's address and coordinates, keeping the
// shift's own values where the client has none
func useClientLocation(shift *domain.Shift, client *domain.Client) {
	if client.Address != "" {
		shift.Location = client.Address
	}
	if client.Latitude != nil && client.Longitude != nil {
		shift.Latitude = client.Latitude
		shift.Longitude = client.Longitude
	}
}
