package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

// AddressService manages a customer's address book.
type AddressService interface {
	Create(ctx context.Context, accountID uuid.UUID, req AddressRequest) (*AddressDTO, error)
	Update(ctx context.Context, accountID, addressID uuid.UUID, req AddressRequest) (*AddressDTO, error)
	Delete(ctx context.Context, accountID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, accountID, addressID uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]AddressDTO, error)
	Get(ctx context.Context, accountID, addressID uuid.UUID) (*AddressDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type addressService struct {
	repo Repository
	tx   txRunner
}

// NewAddressService builds the address book service.
func NewAddressService(repo Repository, tx txRunner) (AddressService, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &addressService{repo: repo, tx: tx}, nil
}

// Create validates and stores a new address. The first address a customer
// saves becomes the default automatically.
func (s *addressService) Create(ctx context.Context, accountID uuid.UUID, req AddressRequest) (*AddressDTO, error) {
	if err := validateAddress(req); err != nil {
		return nil, err
	}

	count, err := s.repo.CountAddresses(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
	}

	address := addressFromRequest(accountID, req)
	address.IsDefault = count == 0

	created, err := s.repo.CreateAddress(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	dto := addressToDTO(created)
	return &dto, nil
}

// Update rewrites an existing address, rebuilding its snapshot text.
func (s *addressService) Update(ctx context.Context, accountID, addressID uuid.UUID, req AddressRequest) (*AddressDTO, error) {
	if err := validateAddress(req); err != nil {
		return nil, err
	}

	existing, err := s.findOwned(ctx, accountID, addressID)
	if err != nil {
		return nil, err
	}

	updated := addressFromRequest(accountID, req)
	updated.ID = existing.ID
	updated.IsDefault = existing.IsDefault
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateAddress(ctx, updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	dto := addressToDTO(updated)
	return &dto, nil
}

// Delete removes the address. Deleting the default leaves the customer with
// no default until one is picked.
func (s *addressService) Delete(ctx context.Context, accountID, addressID uuid.UUID) error {
	if _, err := s.findOwned(ctx, accountID, addressID); err != nil {
		return err
	}
	if err := s.repo.DeleteAddress(ctx, accountID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

// SetDefault flips the default flag to the chosen address inside one
// transaction so at most one default exists.
func (s *addressService) SetDefault(ctx context.Context, accountID, addressID uuid.UUID) error {
	if _, err := s.findOwned(ctx, accountID, addressID); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ClearDefaultAddress(ctx, accountID); err != nil {
			return err
		}
		address, err := repo.FindAddress(ctx, accountID, addressID)
		if err != nil {
			return err
		}
		address.IsDefault = true
		return repo.UpdateAddress(ctx, address)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
	}
	return nil
}

// List returns the customer's addresses with the default first.
func (s *addressService) List(ctx context.Context, accountID uuid.UUID) ([]AddressDTO, error) {
	rows, err := s.repo.ListAddresses(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		out = append(out, addressToDTO(&rows[i]))
	}
	return out, nil
}

// Get returns one owned address.
func (s *addressService) Get(ctx context.Context, accountID, addressID uuid.UUID) (*AddressDTO, error) {
	address, err := s.findOwned(ctx, accountID, addressID)
	if err != nil {
		return nil, err
	}
	dto := addressToDTO(address)
	return &dto, nil
}

func (s *addressService) findOwned(ctx context.Context, accountID, addressID uuid.UUID) (*models.Address, error) {
	address, err := s.repo.FindAddress(ctx, accountID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return address, nil
}

func addressFromRequest(accountID uuid.UUID, req AddressRequest) *models.Address {
	address := &models.Address{
		AccountID: accountID,
		Name:      titleCase(req.Name),
		Mobile:    strings.TrimSpace(req.Mobile),
		Pincode:   strings.TrimSpace(req.Pincode),
		House:     titleCase(req.House),
		Street:    titleCase(req.Street),
		City:      titleCase(req.City),
		District:  titleCase(req.District),
		State:     strings.TrimSpace(req.State),
	}
	if landmark := strings.TrimSpace(req.Landmark); landmark != "" {
		address.Landmark = &landmark
	}
	address.Snapshot = buildSnapshot(address)
	return address
}

func titleCase(value string) string {
	words := strings.Fields(strings.TrimSpace(value))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// buildSnapshot assembles the single-line address copied onto orders.
func buildSnapshot(a *models.Address) string {
	parts := []string{a.Name, a.House, a.Street}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	parts = append(parts,
		fmt.Sprintf("%s, %s", a.District, a.State),
		fmt.Sprintf("Pincode - %s", a.Pincode),
		fmt.Sprintf("Mobile: %s", a.Mobile),
	)
	return strings.Join(parts, "\n")
}
