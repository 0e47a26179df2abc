package rateconfig

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

// TxRunner ejecuta la activación de una tarifa y la desactivación del resto
// como una sola transacción, preservando el invariante de única activa.
type TxRunner interface {
	RunRates(ctx context.Context, fn func(rates repository.RateConfigRepository) error) error
}

// RateConfigUseCase administración de la tarifa por hora.
type RateConfigUseCase struct {
	repo repository.RateConfigRepository
	tx   TxRunner
}

func NewRateConfigUseCase(repo repository.RateConfigRepository, tx TxRunner) *RateConfigUseCase {
	return &RateConfigUseCase{repo: repo, tx: tx}
}

// Current devuelve la tarifa activa vigente.
func (uc *RateConfigUseCase) Current() (*dto.RateConfigResponse, error) {
	r, err := uc.repo.GetCurrent()
	if err != nil {
		return nil, err
	}
	return dto.NewRateConfigResponse(r), nil
}

// List devuelve el historial de tarifas paginado.
func (uc *RateConfigUseCase) List(page dto.PageRequest) ([]*dto.RateConfigResponse, error) {
	list, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return dto.NewRateConfigResponses(list), nil
}

// Get devuelve una tarifa por id.
func (uc *RateConfigUseCase) Get(id string) (*dto.RateConfigResponse, error) {
	r, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return dto.NewRateConfigResponse(r), nil
}

// Create da de alta una tarifa. Nace activa: en la misma transacción se
// desactivan todas las demás.
func (uc *RateConfigUseCase) Create(ctx context.Context, in dto.CreateRateConfigRequest) (*dto.RateConfigResponse, error) {
	if !in.RatePerHour.IsPositive() {
		return nil, fmt.Errorf("%w: la tarifa debe ser mayor que cero", domain.ErrInvalidInput)
	}
	now := time.Now()
	r := &entity.RateConfig{
		ID:            uuid.NewString(),
		RatePerHour:   in.RatePerHour,
		Currency:      strings.ToUpper(strings.TrimSpace(in.Currency)),
		EffectiveFrom: now,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.Currency == "" {
		r.Currency = "INR"
	}
	if in.EffectiveFrom != nil {
		r.EffectiveFrom = *in.EffectiveFrom
	}

	err := uc.tx.RunRates(ctx, func(rates repository.RateConfigRepository) error {
		if err := rates.Create(r); err != nil {
			return err
		}
		return rates.DeactivateAll(r.ID)
	})
	if err != nil {
		return nil, err
	}
	return dto.NewRateConfigResponse(r), nil
}

// Update modifica una tarifa. Activarla desactiva el resto en la misma
// transacción; desactivarla es libre aunque quede el sistema sin tarifa
// activa momentáneamente.
func (uc *RateConfigUseCase) Update(ctx context.Context, id string, in dto.UpdateRateConfigRequest) (*dto.RateConfigResponse, error) {
	r, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if in.RatePerHour != nil {
		if !in.RatePerHour.IsPositive() {
			return nil, fmt.Errorf("%w: la tarifa debe ser mayor que cero", domain.ErrInvalidInput)
		}
		r.RatePerHour = *in.RatePerHour
	}
	if in.Currency != nil {
		r.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.EffectiveFrom != nil {
		r.EffectiveFrom = *in.EffectiveFrom
	}
	activating := in.IsActive != nil && *in.IsActive && !r.IsActive
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	r.UpdatedAt = time.Now()

	err = uc.tx.RunRates(ctx, func(rates repository.RateConfigRepository) error {
		if activating {
			if err := rates.DeactivateAll(r.ID); err != nil {
				return err
			}
		}
		return rates.Update(r)
	})
	if err != nil {
		return nil, err
	}
	return dto.NewRateConfigResponse(r), nil
}

// Delete elimina una tarifa, salvo que sea la última activa del sistema.
func (uc *RateConfigUseCase) Delete(id string) error {
	r, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if r.IsActive {
		active, err := uc.repo.CountActive()
		if err != nil {
			return err
		}
		if active <= 1 {
			return domain.ErrLastActiveRate
		}
	}
	return uc.repo.Delete(id)
}
