package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/logger"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// ClockStatus is a snapshot of the running clock
type ClockStatus struct {
	Clock   *domain.ActiveClock
	Client  *domain.Client
	Elapsed time.Duration
	Accrued float64 // earnings so far at the clock's rate, before tax
}

// ClockService runs one shift clock per owner. Clocking out records a shift.
type ClockService interface {
	// ClockIn starts the clock (fails if one is already running)
	ClockIn(ctx context.Context, ownerID, clientID string, shiftType domain.ShiftType, rate *float64, notes string) (*domain.ActiveClock, error)

	// ClockOut stops the clock and records the shift
	ClockOut(ctx context.Context, ownerID string) (*domain.Shift, error)

	// Status returns the running clock, or nil if idle
	Status(ctx context.Context, ownerID string) (*ClockStatus, error)

	// Cancel discards the running clock without recording a shift
	Cancel(ctx context.Context, ownerID string) error
}

type clockService struct {
	clockRepo  repository.ClockRepository
	clientRepo repository.ClientRepository
	userRepo   repository.UserRepository
	shifts     ShiftService
	log        zerolog.Logger
	now        func() time.Time
}

// NewClockService creates a new clock service
func NewClockService(
	clockRepo repository.ClockRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	shifts ShiftService,
) ClockService {
	return &clockService{
		clockRepo:  clockRepo,
		clientRepo: clientRepo,
		userRepo:   userRepo,
		shifts:     shifts,
		log:        logger.WithComponent("clock"),
		now:        time.Now,
	}
}

func (s *clockService) ClockIn(
	ctx context.Context,
	ownerID, clientID string,
	shiftType domain.ShiftType,
	rate *float64,
	notes string,
) (*domain.ActiveClock, error) {
	// Verify client belongs to owner
	if _, err := s.clientRepo.GetByID(ctx, ownerID, clientID); err != nil {
		return nil, err
	}

	existing, err := s.clockRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("clock in", "a shift clock is already running since %s", existing.StartTime.Format("15:04"))
	}

	clock := domain.NewActiveClock(ownerID, clientID, shiftType, rate, notes)
	clock.StartTime = s.now()
	if !clock.ShiftType.Valid() {
		return nil, domain.Validation("clock in", "unknown shift type %q", clock.ShiftType)
	}

	if err := s.clockRepo.Save(ctx, clock); err != nil {
		return nil, err
	}
	return clock, nil
}

func (s *clockService) ClockOut(ctx context.Context, ownerID string) (*domain.Shift, error) {
	clock, err := s.clockRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		return nil, domain.NotFound("clock out", "no shift clock is running")
	}

	// Take the clock before recording the shift so a retry never records it twice
	if err := s.clockRepo.Delete(ctx, ownerID); err != nil {
		return nil, err
	}

	start, end := clock.StartTime, s.now()
	shiftType := clock.ShiftType
	notes := clock.Notes
	shift, err := s.shifts.Create(ctx, ownerID, ShiftInput{
		ClientID:   &clock.ClientID,
		StartTime:  &start,
		EndTime:    &end,
		ShiftType:  &shiftType,
		HourlyRate: clock.HourlyRate,
		Notes:      &notes,
	})
	if err != nil {
		if serr := s.clockRepo.Save(ctx, clock); serr != nil {
			s.log.Error().Err(serr).Str("user_id", ownerID).Msg("failed to restore shift clock")
		}
		return nil, err
	}

	s.log.Info().Str("user_id", ownerID).Str("shift_id", shift.ID).Dur("elapsed", end.Sub(start)).Msg("clocked out")
	return shift, nil
}

func (s *clockService) Status(ctx context.Context, ownerID string) (*ClockStatus, error) {
	clock, err := s.clockRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		return nil, nil
	}

	status := &ClockStatus{Clock: clock, Elapsed: clock.Elapsed(s.now())}

	// A client deleted mid-shift should not hide the clock
	if client, err := s.clientRepo.GetByID(ctx, ownerID, clock.ClientID); err == nil {
		status.Client = client
	}

	rate := clock.HourlyRate
	if rate == nil {
		if user, err := s.userRepo.GetByID(ctx, ownerID); err == nil {
			rate = user.HourlyRate
		}
	}
	if rate != nil {
		status.Accrued = status.Elapsed.Hours() * *rate
	}

	return status, nil
}

func (s *clockService) Cancel(ctx context.Context, ownerID string) error {
	clock, err := s.clockRepo.Get(ctx, ownerID)
	if err != nil {
		return err
	}
	if clock == nil {
		return domain.NotFound("cancel clock", "no shift clock is running")
	}
	return s.clockRepo.Delete(ctx, ownerID)
}
