package rateconfig

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeRateRepo struct {
	rates map[string]*entity.RateConfig
}

func newFakeRateRepo(rs ...*entity.RateConfig) *fakeRateRepo {
	r := &fakeRateRepo{rates: map[string]*entity.RateConfig{}}
	for _, rc := range rs {
		r.rates[rc.ID] = rc
	}
	return r
}

func (r *fakeRateRepo) Create(rc *entity.RateConfig) error { r.rates[rc.ID] = rc; return nil }
func (r *fakeRateRepo) GetByID(id string) (*entity.RateConfig, error) {
	rc, ok := r.rates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rc
	return &cp, nil
}
func (r *fakeRateRepo) GetCurrent() (*entity.RateConfig, error) {
	var current *entity.RateConfig
	for _, rc := range r.rates {
		if !rc.IsActive {
			continue
		}
		if current == nil || rc.EffectiveFrom.After(current.EffectiveFrom) {
			current = rc
		}
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	return current, nil
}
func (r *fakeRateRepo) List(limit, offset int) ([]*entity.RateConfig, error) {
	var out []*entity.RateConfig
	for _, rc := range r.rates {
		out = append(out, rc)
	}
	return out, nil
}
func (r *fakeRateRepo) Update(rc *entity.RateConfig) error {
	if _, ok := r.rates[rc.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *rc
	r.rates[rc.ID] = &cp
	return nil
}
func (r *fakeRateRepo) DeactivateAll(exceptID string) error {
	for _, rc := range r.rates {
		if rc.ID != exceptID {
			rc.IsActive = false
		}
	}
	return nil
}
func (r *fakeRateRepo) CountActive() (int, error) {
	n := 0
	for _, rc := range r.rates {
		if rc.IsActive {
			n++
		}
	}
	return n, nil
}
func (r *fakeRateRepo) Delete(id string) error {
	if _, ok := r.rates[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rates, id)
	return nil
}

func (r *fakeRateRepo) activeIDs() []string {
	var out []string
	for _, rc := range r.rates {
		if rc.IsActive {
			out = append(out, rc.ID)
		}
	}
	return out
}

type fakeRatesTx struct{ repo repository.RateConfigRepository }

func (t *fakeRatesTx) RunRates(ctx context.Context, fn func(rates repository.RateConfigRepository) error) error {
	return fn(t.repo)
}

func newUC(repo *fakeRateRepo) *RateConfigUseCase {
	return NewRateConfigUseCase(repo, &fakeRatesTx{repo: repo})
}

func rate(id string, perHour int64, active bool, effective time.Time) *entity.RateConfig {
	return &entity.RateConfig{
		ID:            id,
		RatePerHour:   decimal.NewFromInt(perHour),
		Currency:      "INR",
		EffectiveFrom: effective,
		IsActive:      active,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Update / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_LaNuevaTarifaDesactivaElResto(t *testing.T) {
	repo := newFakeRateRepo(rate("r1", 500, true, time.Now().Add(-time.Hour)))
	uc := newUC(repo)

	out, err := uc.Create(context.Background(), dto.CreateRateConfigRequest{
		RatePerHour: decimal.NewFromInt(650),
		Currency:    " inr ",
	})

	require.NoError(t, err)
	assert.True(t, out.IsActive)
	assert.Equal(t, "INR", out.Currency, "la moneda se normaliza a mayúsculas")
	assert.Equal(t, []string{out.ID}, repo.activeIDs(), "solo la nueva queda activa")
}

func TestCreate_TarifaNoPositivaRechazada(t *testing.T) {
	uc := newUC(newFakeRateRepo())

	_, err := uc.Create(context.Background(), dto.CreateRateConfigRequest{
		RatePerHour: decimal.Zero,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_MonedaPorDefectoINR(t *testing.T) {
	uc := newUC(newFakeRateRepo())

	out, err := uc.Create(context.Background(), dto.CreateRateConfigRequest{
		RatePerHour: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, "INR", out.Currency)
}

func TestUpdate_ActivarDesactivaLasDemas(t *testing.T) {
	repo := newFakeRateRepo(
		rate("r1", 500, true, time.Now().Add(-2*time.Hour)),
		rate("r2", 650, false, time.Now().Add(-time.Hour)),
	)
	uc := newUC(repo)

	activate := true
	out, err := uc.Update(context.Background(), "r2", dto.UpdateRateConfigRequest{IsActive: &activate})

	require.NoError(t, err)
	assert.True(t, out.IsActive)
	assert.Equal(t, []string{"r2"}, repo.activeIDs())
}

func TestUpdate_DesactivarNoTocaLasDemas(t *testing.T) {
	repo := newFakeRateRepo(
		rate("r1", 500, true, time.Now().Add(-2*time.Hour)),
		rate("r2", 650, true, time.Now().Add(-time.Hour)),
	)
	uc := newUC(repo)

	deactivate := false
	_, err := uc.Update(context.Background(), "r2", dto.UpdateRateConfigRequest{IsActive: &deactivate})

	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, repo.activeIDs())
}

func TestDelete_UltimaActivaProtegida(t *testing.T) {
	repo := newFakeRateRepo(rate("r1", 500, true, time.Now()))
	uc := newUC(repo)

	err := uc.Delete("r1")
	require.ErrorIs(t, err, domain.ErrLastActiveRate)
	assert.Len(t, repo.rates, 1, "la tarifa debe seguir existiendo")
}

func TestDelete_InactivaSiempreSePuede(t *testing.T) {
	repo := newFakeRateRepo(
		rate("r1", 500, true, time.Now()),
		rate("r2", 650, false, time.Now()),
	)
	uc := newUC(repo)

	require.NoError(t, uc.Delete("r2"))
	assert.Len(t, repo.rates, 1)
}

func TestDelete_ActivaConOtraActivaSePuede(t *testing.T) {
	repo := newFakeRateRepo(
		rate("r1", 500, true, time.Now()),
		rate("r2", 650, true, time.Now()),
	)
	uc := newUC(repo)

	require.NoError(t, uc.Delete("r2"))
	assert.Equal(t, []string{"r1"}, repo.activeIDs())
}

// ──────────────────────────────────────────────────────────────────────────────
// Current
// ──────────────────────────────────────────────────────────────────────────────

func TestCurrent_DevuelveLaActivaMasReciente(t *testing.T) {
	repo := newFakeRateRepo(
		rate("vieja", 500, true, time.Now().Add(-48*time.Hour)),
		rate("nueva", 650, true, time.Now().Add(-time.Hour)),
	)
	uc := newUC(repo)

	out, err := uc.Current()
	require.NoError(t, err)
	assert.Equal(t, "nueva", out.ID)
}

func TestCurrent_SinTarifaActiva(t *testing.T) {
	uc := newUC(newFakeRateRepo(rate("r1", 500, false, time.Now())))

	_, err := uc.Current()
	require.ErrorIs(t, err, domain.ErrNotFound)
}
