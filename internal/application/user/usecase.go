package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

// UserUseCase administración de cuentas (rutas de admin) y consulta de saldo.
type UserUseCase struct {
	repo repository.UserRepository
}

func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// List devuelve usuarios paginados junto con el total.
func (uc *UserUseCase) List(page dto.PageRequest) ([]*dto.UserResponse, int, error) {
	users, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.repo.Count()
	if err != nil {
		return nil, 0, err
	}
	return dto.NewUserResponses(users), total, nil
}

// Get devuelve un usuario por id.
func (uc *UserUseCase) Get(id string) (*dto.UserResponse, error) {
	u, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(u), nil
}

// Create alta directa por un admin: la cuenta nace verificada.
func (uc *UserUseCase) Create(in dto.CreateUserRequest) (*dto.UserResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: nombre, email y contraseña son obligatorios", domain.ErrInvalidInput)
	}
	if in.Role == "" {
		in.Role = entity.RoleUser
	}
	if !entity.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: rol inválido", domain.ErrInvalidInput)
	}
	if _, err := uc.repo.GetByEmail(in.Email); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashear contraseña: %w", err)
	}

	now := time.Now()
	u := &entity.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Phone:        in.Phone,
		HoursBalance: entity.DefaultHoursBalance,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Company != nil {
		u.Company = entity.CompanyProfile{
			Name:      in.Company.Name,
			Address:   in.Company.Address,
			Website:   in.Company.Website,
			Industry:  in.Company.Industry,
			GSTNumber: in.Company.GSTNumber,
		}
	}
	if err := uc.repo.Create(u); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(u), nil
}

// Update actualización administrativa parcial.
func (uc *UserUseCase) Update(id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != u.Email {
			if _, err := uc.repo.GetByEmail(email); err == nil {
				return nil, domain.ErrEmailAlreadyExists
			} else if !errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
			u.Email = email
		}
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Role != nil {
		if !entity.ValidRole(*in.Role) {
			return nil, fmt.Errorf("%w: rol inválido", domain.ErrInvalidInput)
		}
		u.Role = *in.Role
	}
	if in.HoursBalance != nil {
		if in.HoursBalance.IsNegative() {
			return nil, fmt.Errorf("%w: el saldo no puede ser negativo", domain.ErrInvalidInput)
		}
		u.HoursBalance = *in.HoursBalance
	}
	if in.IsVerified != nil {
		u.IsVerified = *in.IsVerified
	}
	if in.Company != nil {
		u.Company = entity.CompanyProfile{
			Name:      in.Company.Name,
			Address:   in.Company.Address,
			Website:   in.Company.Website,
			Industry:  in.Company.Industry,
			GSTNumber: in.Company.GSTNumber,
		}
	}
	u.UpdatedAt = time.Now()
	if err := uc.repo.Update(u); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(u), nil
}

// Delete elimina una cuenta.
func (uc *UserUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

// GetHours devuelve el saldo de horas. Un admin o una cuenta de empresa
// pueden consultar a cualquiera; el resto solo su propio saldo.
func (uc *UserUseCase) GetHours(actorID, actorRole, targetID string) (*dto.UserHoursResponse, error) {
	if targetID != actorID && actorRole != entity.RoleAdmin && actorRole != entity.RoleCompany {
		return nil, domain.ErrForbidden
	}
	u, err := uc.repo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	return &dto.UserHoursResponse{
		ID:    u.ID,
		Name:  u.Name,
		Role:  u.Role,
		Hours: u.HoursBalance,
	}, nil
}
