package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

// UserResponse representación pública de un usuario (sin hash).
type UserResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	Phone        string             `json:"phone,omitempty"`
	Company      *CompanyProfileDTO `json:"company,omitempty"`
	HoursBalance decimal.Decimal    `json:"hoursBalance"`
	IsVerified   bool               `json:"isVerified"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// NewUserResponse mapea la entidad a su representación pública.
func NewUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	out := &UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Phone:        u.Phone,
		HoursBalance: u.HoursBalance,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Company != (entity.CompanyProfile{}) {
		out.Company = &CompanyProfileDTO{
			Name:      u.Company.Name,
			Address:   u.Company.Address,
			Website:   u.Company.Website,
			Industry:  u.Company.Industry,
			GSTNumber: u.Company.GSTNumber,
		}
	}
	return out
}

// NewUserResponses mapea un listado.
func NewUserResponses(users []*entity.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// CreateUserRequest alta de usuario por un admin (sin flujo de verificación).
type CreateUserRequest struct {
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Phone    string             `json:"phone"`
	Role     string             `json:"role"`
	Company  *CompanyProfileDTO `json:"company"`
}

// UpdateUserRequest actualización administrativa; los punteros distinguen
// "no enviado" de "vaciar".
type UpdateUserRequest struct {
	Name         *string            `json:"name"`
	Email        *string            `json:"email"`
	Phone        *string            `json:"phone"`
	Role         *string            `json:"role"`
	HoursBalance *decimal.Decimal   `json:"hoursBalance"`
	IsVerified   *bool              `json:"isVerified"`
	Company      *CompanyProfileDTO `json:"company"`
}

// UserHoursResponse saldo de horas de un usuario.
type UserHoursResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Role  string          `json:"role"`
	Hours decimal.Decimal `json:"hours"`
}
