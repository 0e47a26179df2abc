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

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, user_id, quotation_id, gateway, order_ref, payment_ref, signature,
	amount, currency, hours_purchased, status, payment_date,
	po_file_path, po_file_type, po_file_size`

// PaymentRepo implementación del puerto PaymentRepository sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador de persistencia para pagos. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste el pago. El índice único sobre (gateway, order_ref,
// payment_ref) convierte una segunda verificación del mismo pago en
// ErrDuplicatePayment.
func (r *PaymentRepo) Create(p *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.UserID, p.QuotationID, p.Gateway, p.OrderRef, p.PaymentRef, p.Signature,
		p.Amount, p.Currency, p.HoursPurchased, p.Status, p.PaymentDate,
		p.PurchaseOrderFile.Path, p.PurchaseOrderFile.Type, p.PurchaseOrderFile.Size,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicatePayment
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	var p entity.Payment
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.UserID, &p.QuotationID, &p.Gateway, &p.OrderRef, &p.PaymentRef, &p.Signature,
		&p.Amount, &p.Currency, &p.HoursPurchased, &p.Status, &p.PaymentDate,
		&p.PurchaseOrderFile.Path, &p.PurchaseOrderFile.Type, &p.PurchaseOrderFile.Size,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// ListByUser lista los pagos de un usuario, más recientes primero.
func (r *PaymentRepo) ListByUser(userID string) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY payment_date DESC`
	rows, err := r.q.Query(context.Background(), query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.QuotationID, &p.Gateway, &p.OrderRef, &p.PaymentRef, &p.Signature,
			&p.Amount, &p.Currency, &p.HoursPurchased, &p.Status, &p.PaymentDate,
			&p.PurchaseOrderFile.Path, &p.PurchaseOrderFile.Type, &p.PurchaseOrderFile.Size,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
