package repository

import "github.com/makerforge/quote3d-api/internal/domain/entity"

// RateConfigRepository define el puerto de persistencia para RateConfig.
type RateConfigRepository interface {
	Create(r *entity.RateConfig) error
	GetByID(id string) (*entity.RateConfig, error)
	// GetCurrent devuelve la tarifa activa más reciente por effectiveFrom.
	GetCurrent() (*entity.RateConfig, error)
	List(limit, offset int) ([]*entity.RateConfig, error)
	Update(r *entity.RateConfig) error
	// DeactivateAll desactiva todas las tarifas; exceptID puede ser vacío.
	DeactivateAll(exceptID string) error
	CountActive() (int, error)
	Delete(id string) error
}
