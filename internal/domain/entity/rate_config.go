package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateConfig tarifa por hora. Invariante: a lo sumo un registro activo a la
// vez; activar uno desactiva el resto en la misma transacción.
type RateConfig struct {
	ID            string
	RatePerHour   decimal.Decimal
	Currency      string
	EffectiveFrom time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
