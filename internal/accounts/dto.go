package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
)

// RegisterRequest captures the signup form. No account row is created until
// the OTP is verified.
type RegisterRequest struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// ActivateRequest verifies a pending registration.
type ActivateRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// LoginRequest captures the credentials sent to the login endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AccountDTO is the public projection of an account.
type AccountDTO struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse contains the token pair plus the authenticated account.
type LoginResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	Account      AccountDTO `json:"account"`
}

// AddressRequest carries the address book form fields.
type AddressRequest struct {
	Name     string `json:"name" validate:"required"`
	Mobile   string `json:"mobile" validate:"required"`
	Pincode  string `json:"pincode" validate:"required"`
	House    string `json:"house" validate:"required"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city"`
	District string `json:"district" validate:"required"`
	State    string `json:"state" validate:"required"`
	Landmark string `json:"landmark"`
}

// AddressDTO is the address book projection returned to clients.
type AddressDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Pincode   string    `json:"pincode"`
	House     string    `json:"house"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	District  string    `json:"district"`
	State     string    `json:"state"`
	Landmark  string    `json:"landmark,omitempty"`
	IsDefault bool      `json:"is_default"`
	Snapshot  string    `json:"snapshot"`
}

// FromModel converts an account row into its public projection.
func FromModel(account *models.Account) AccountDTO {
	return AccountDTO{
		ID:        account.ID,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
		IsAdmin:   account.IsAdmin,
		CreatedAt: account.CreatedAt,
	}
}

func addressToDTO(a *models.Address) AddressDTO {
	dto := AddressDTO{
		ID:        a.ID,
		Name:      a.Name,
		Mobile:    a.Mobile,
		Pincode:   a.Pincode,
		House:     a.House,
		Street:    a.Street,
		City:      a.City,
		District:  a.District,
		State:     a.State,
		IsDefault: a.IsDefault,
		Snapshot:  a.Snapshot,
	}
	if a.Landmark != nil {
		dto.Landmark = *a.Landmark
	}
	return dto
}
