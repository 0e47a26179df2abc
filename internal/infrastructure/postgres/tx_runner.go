package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/makerforge/quote3d-api/internal/application/payment"
	"github.com/makerforge/quote3d-api/internal/application/quotation"
	"github.com/makerforge/quote3d-api/internal/application/rateconfig"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

// Ensure TxRunner implements the application tx ports.
var _ quotation.TxRunner = (*TxRunner)(nil)
var _ payment.TxRunner = (*TxRunner)(nil)
var _ rateconfig.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunDecision transacción de aprobación/rechazo: lock de la cotización y
// débito condicional del saldo en una sola unidad.
func (r *TxRunner) RunDecision(ctx context.Context, fn func(
	users repository.UserRepository,
	quotations repository.QuotationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewUserRepository(tx), NewQuotationRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCredit transacción de verificación de pago: alta del registro y abono
// de horas, o nada.
func (r *TxRunner) RunCredit(ctx context.Context, fn func(
	payments repository.PaymentRepository,
	users repository.UserRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewPaymentRepository(tx), NewUserRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRates transacción de tarifas: activar una y desactivar el resto sin
// ventana con dos activas.
func (r *TxRunner) RunRates(ctx context.Context, fn func(
	rates repository.RateConfigRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRateConfigRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
