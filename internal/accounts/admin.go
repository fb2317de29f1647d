package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

// CustomerDTO is the admin console projection of a customer account.
type CustomerDTO struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	IsBlocked   bool       `json:"is_blocked"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AdminService is the console surface for customer management. A blocked
// customer keeps their data but can no longer log in.
type AdminService interface {
	ListCustomers(ctx context.Context) ([]CustomerDTO, error)
	SetBlocked(ctx context.Context, accountID uuid.UUID, blocked bool) error
}

type adminService struct {
	repo Repository
}

// NewAdminService builds the customer management service.
func NewAdminService(repo Repository) (AdminService, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	return &adminService{repo: repo}, nil
}

func (s *adminService) ListCustomers(ctx context.Context) ([]CustomerDTO, error) {
	accounts, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list customers")
	}
	dtos := make([]CustomerDTO, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		dtos = append(dtos, CustomerDTO{
			ID:          a.ID,
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			Email:       a.Email,
			IsBlocked:   a.IsBlocked,
			LastLoginAt: a.LastLoginAt,
			CreatedAt:   a.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *adminService) SetBlocked(ctx context.Context, accountID uuid.UUID, blocked bool) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load account")
	}
	if account.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot be blocked")
	}
	if account.IsBlocked == blocked {
		return nil
	}
	if err := s.repo.SetBlocked(ctx, accountID, blocked); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update account")
	}
	return nil
}
