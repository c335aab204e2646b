package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"shopfront/internal/api"
	"shopfront/internal/models"
)

// addressBackend is the slice of the REST client the address book needs.
type addressBackend interface {
	ListAddresses(ctx context.Context) ([]models.Address, error)
	CreateAddress(ctx context.Context, address models.Address) (*models.Address, error)
	UpdateAddress(ctx context.Context, address models.Address) (*models.Address, error)
	DeleteAddress(ctx context.Context, addressID string) error
}

// AddressService manages the account's address book and picks the address
// checkout starts from. Validation runs client-side before anything is sent.
type AddressService struct {
	backend  addressBackend
	notifier Notifier
	validate *validator.Validate
}

// NewAddressService creates a new AddressService.
func NewAddressService(backend addressBackend, notifier Notifier) *AddressService {
	return &AddressService{
		backend:  backend,
		notifier: notifier,
		validate: validator.New(),
	}
}

// List returns the address book.
func (s *AddressService) List(ctx context.Context) ([]models.Address, error) {
	addresses, err := s.backend.ListAddresses(ctx)
	if err != nil {
		s.notifier.Error("Failed to load addresses")
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// DefaultAddress returns the address checkout should preselect: the one
// flagged default, else the first, else none.
func (s *AddressService) DefaultAddress(ctx context.Context) (*models.Address, error) {
	addresses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, nil
	}
	for _, address := range addresses {
		if address.IsDefault {
			addr := address
			return &addr, nil
		}
	}
	addr := addresses[0]
	return &addr, nil
}

// Create validates and saves a new address.
func (s *AddressService) Create(ctx context.Context, address models.Address) (*models.Address, error) {
	if err := s.validate.Struct(address); err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	created, err := s.backend.CreateAddress(ctx, address)
	if err != nil {
		s.notifier.Error(api.Message(err, "Failed to add address"))
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	s.notifier.Success("Address added successfully")
	return created, nil
}

// Update validates and replaces an existing address.
func (s *AddressService) Update(ctx context.Context, address models.Address) (*models.Address, error) {
	if err := s.validate.Struct(address); err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	updated, err := s.backend.UpdateAddress(ctx, address)
	if err != nil {
		s.notifier.Error(api.Message(err, "Failed to update address"))
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	s.notifier.Success("Address updated")
	return updated, nil
}

// Delete removes an address from the address book.
func (s *AddressService) Delete(ctx context.Context, addressID string) error {
	if err := s.backend.DeleteAddress(ctx, addressID); err != nil {
		s.notifier.Error("Failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}
	s.notifier.Success("Address deleted")
	return nil
}
