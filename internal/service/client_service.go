package service

import (
	"context"
	"strings"
	"time"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// ClientInput carries client fields. On update, nil fields are left alone.
type ClientInput struct {
	Name         *string
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	Notes        *string
}

// ClientService manages an owner's clients
type ClientService interface {
	Create(ctx context.Context, ownerID string, in ClientInput) (*domain.Client, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Client, error)
	List(ctx context.Context, ownerID string) ([]*domain.Client, error)
	Update(ctx context.Context, ownerID, id string, in ClientInput) (*domain.Client, error)
	// Delete refuses clients still referenced by shifts, mileages or invoices
	Delete(ctx context.Context, ownerID, id string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) Create(ctx context.Context, ownerID string, in ClientInput) (*domain.Client, error) {
	var name string
	if in.Name != nil {
		name = *in.Name
	}
	client := domain.NewClient(ownerID, name)
	applyClientInput(client, in)

	if err := client.Validate(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, ownerID, id string) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, ownerID, id)
}

func (s *clientService) List(ctx context.Context, ownerID string) ([]*domain.Client, error) {
	return s.clientRepo.List(ctx, ownerID)
}

func (s *clientService) Update(ctx context.Context, ownerID, id string, in ClientInput) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	applyClientInput(client, in)
	if err := client.Validate(); err != nil {
		return nil, err
	}
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, ownerID, id string) error {
	client, err := s.clientRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}

	n, err := s.clientRepo.CountDependents(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Conflict("delete client", "client %s still has %d shifts, mileages or invoices", client.Name, n)
	}

	return s.clientRepo.Delete(ctx, ownerID, id)
}

func applyClientInput(c *domain.Client, in ClientInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.ContactName != nil {
		c.ContactName = *in.ContactName
	}
	if in.ContactEmail != nil {
		c.ContactEmail = *in.ContactEmail
	}
	if in.ContactPhone != nil {
		c.ContactPhone = *in.ContactPhone
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.Latitude != nil {
		c.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		c.Longitude = in.Longitude
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
}
