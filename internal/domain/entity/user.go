package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles válidos para User.
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleCompany = "company"
)

// DefaultHoursBalance horas de cortesía asignadas al registrarse.
var DefaultHoursBalance = decimal.NewFromInt(4)

// CompanyProfile datos opcionales de empresa del usuario.
type CompanyProfile struct {
	Name      string
	Address   string
	Website   string
	Industry  string
	GSTNumber string
}

// User representa una cuenta del sistema. El email es único (lowercased) y
// HoursBalance nunca puede quedar negativo: el débito se hace con un UPDATE
// condicional en la capa de persistencia.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string // bcrypt hash, nunca plano en dominio después de persistir
	Role               string // user, admin, company
	Phone              string
	Company            CompanyProfile
	HoursBalance       decimal.Decimal
	IsVerified         bool
	VerificationCode   string     // 6 chars hex, vacío una vez verificado
	VerificationExpire *time.Time // nil una vez verificado
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ValidRole indica si el rol es uno de los aceptados.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleCompany:
		return true
	}
	return false
}
