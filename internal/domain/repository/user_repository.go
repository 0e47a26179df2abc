package repository

import (
	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// GetByVerificationCode busca por código de verificación pendiente.
	// La vigencia del código se valida en el caso de uso.
	GetByVerificationCode(code string) (*entity.User, error)
	Update(user *entity.User) error
	List(limit, offset int) ([]*entity.User, error)
	Count() (int, error)
	Delete(id string) error
	// ListAdmins devuelve todas las cuentas admin (para el fan-out de avisos).
	ListAdmins() ([]*entity.User, error)

	// DebitHours descuenta horas de forma atómica: UPDATE condicional que
	// solo aplica si el saldo alcanza. Devuelve ErrInsufficientHours si no.
	DebitHours(userID string, hours decimal.Decimal) error
	// CreditHours acredita horas compradas.
	CreditHours(userID string, hours decimal.Decimal) error
}
