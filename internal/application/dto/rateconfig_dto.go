package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

// CreateRateConfigRequest alta de una tarifa; nace activa y desactiva el resto.
type CreateRateConfigRequest struct {
	RatePerHour   decimal.Decimal `json:"ratePerHour"`
	Currency      string          `json:"currency"`
	EffectiveFrom *time.Time      `json:"effectiveFrom"`
}

// UpdateRateConfigRequest actualización parcial de una tarifa.
type UpdateRateConfigRequest struct {
	RatePerHour   *decimal.Decimal `json:"ratePerHour"`
	Currency      *string          `json:"currency"`
	EffectiveFrom *time.Time       `json:"effectiveFrom"`
	IsActive      *bool            `json:"isActive"`
}

// RateConfigResponse representación pública de una tarifa.
type RateConfigResponse struct {
	ID            string          `json:"id"`
	RatePerHour   decimal.Decimal `json:"ratePerHour"`
	Currency      string          `json:"currency"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewRateConfigResponse mapea la entidad a su representación pública.
func NewRateConfigResponse(r *entity.RateConfig) *RateConfigResponse {
	if r == nil {
		return nil
	}
	return &RateConfigResponse{
		ID:            r.ID,
		RatePerHour:   r.RatePerHour,
		Currency:      r.Currency,
		EffectiveFrom: r.EffectiveFrom,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// NewRateConfigResponses mapea un listado.
func NewRateConfigResponses(list []*entity.RateConfig) []*RateConfigResponse {
	out := make([]*RateConfigResponse, 0, len(list))
	for _, r := range list {
		out = append(out, NewRateConfigResponse(r))
	}
	return out
}
