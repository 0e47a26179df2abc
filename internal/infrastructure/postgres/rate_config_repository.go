package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

var _ repository.RateConfigRepository = (*RateConfigRepo)(nil)

const rateConfigColumns = `id, rate_per_hour, currency, effective_from, is_active, created_at, updated_at`

// RateConfigRepo implementación del puerto RateConfigRepository sobre PostgreSQL (usable con pool o tx).
type RateConfigRepo struct {
	q Querier
}

// NewRateConfigRepository construye el adaptador de persistencia para tarifas. Pasar pool o tx (Querier).
func NewRateConfigRepository(q Querier) *RateConfigRepo {
	return &RateConfigRepo{q: q}
}

// Create persiste una tarifa.
func (r *RateConfigRepo) Create(rc *entity.RateConfig) error {
	query := `
		INSERT INTO rate_configs (` + rateConfigColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		rc.ID, rc.RatePerHour, rc.Currency, rc.EffectiveFrom, rc.IsActive, rc.CreatedAt, rc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rate config: %w", err)
	}
	return nil
}

// GetByID obtiene una tarifa por ID.
func (r *RateConfigRepo) GetByID(id string) (*entity.RateConfig, error) {
	query := `SELECT ` + rateConfigColumns + ` FROM rate_configs WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetCurrent devuelve la tarifa activa más reciente por effective_from.
func (r *RateConfigRepo) GetCurrent() (*entity.RateConfig, error) {
	query := `
		SELECT ` + rateConfigColumns + ` FROM rate_configs
		WHERE is_active = true ORDER BY effective_from DESC LIMIT 1`
	return r.scanOne(r.q.QueryRow(context.Background(), query))
}

// List lista tarifas con paginación, más recientes primero.
func (r *RateConfigRepo) List(limit, offset int) ([]*entity.RateConfig, error) {
	query := `SELECT ` + rateConfigColumns + ` FROM rate_configs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list rate configs: %w", err)
	}
	defer rows.Close()

	var out []*entity.RateConfig
	for rows.Next() {
		var rc entity.RateConfig
		if err := rows.Scan(
			&rc.ID, &rc.RatePerHour, &rc.Currency, &rc.EffectiveFrom, &rc.IsActive, &rc.CreatedAt, &rc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rate config: %w", err)
		}
		out = append(out, &rc)
	}
	return out, rows.Err()
}

// Update actualiza una tarifa.
func (r *RateConfigRepo) Update(rc *entity.RateConfig) error {
	query := `
		UPDATE rate_configs SET rate_per_hour = $2, currency = $3, effective_from = $4,
			is_active = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		rc.ID, rc.RatePerHour, rc.Currency, rc.EffectiveFrom, rc.IsActive, rc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update rate config: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeactivateAll desactiva todas las tarifas salvo la indicada (puede ser vacía).
func (r *RateConfigRepo) DeactivateAll(exceptID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE rate_configs SET is_active = false, updated_at = now() WHERE is_active = true AND id <> $1`,
		exceptID,
	)
	if err != nil {
		return fmt.Errorf("deactivate rate configs: %w", err)
	}
	return nil
}

// CountActive cuenta las tarifas activas.
func (r *RateConfigRepo) CountActive() (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM rate_configs WHERE is_active = true`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active rate configs: %w", err)
	}
	return n, nil
}

// Delete elimina una tarifa. El guardián de "última activa" vive en el caso de uso.
func (r *RateConfigRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM rate_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rate config: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RateConfigRepo) scanOne(row pgx.Row) (*entity.RateConfig, error) {
	var rc entity.RateConfig
	err := row.Scan(
		&rc.ID, &rc.RatePerHour, &rc.Currency, &rc.EffectiveFrom, &rc.IsActive, &rc.CreatedAt, &rc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get rate config: %w", err)
	}
	return &rc, nil
}
