package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

var _ repository.QuotationRepository = (*QuotationRepo)(nil)

const quotationColumns = `q.id, q.user_id, q.payment_id, q.project_name, q.description,
	q.technical_info, q.deliverables, q.notes, q.required_hour,
	q.file_path, q.file_type, q.file_size,
	q.completed_file_path, q.completed_file_type, q.completed_file_size,
	q.status, q.po_status, q.approved_at, q.started_at, q.completed_at,
	q.created_at, q.updated_at`

// QuotationRepo implementación del puerto QuotationRepository sobre PostgreSQL (usable con pool o tx).
type QuotationRepo struct {
	q Querier
}

// NewQuotationRepository construye el adaptador de persistencia para cotizaciones. Pasar pool o tx (Querier).
func NewQuotationRepository(q Querier) *QuotationRepo {
	return &QuotationRepo{q: q}
}

// Create persiste una cotización nueva.
func (r *QuotationRepo) Create(q *entity.Quotation) error {
	query := `
		INSERT INTO quotations (id, user_id, payment_id, project_name, description,
			technical_info, deliverables, notes, required_hour,
			file_path, file_type, file_size,
			completed_file_path, completed_file_type, completed_file_size,
			status, po_status, approved_at, started_at, completed_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(context.Background(), query,
		q.ID, q.UserID, q.PaymentID, q.ProjectName, q.Description,
		q.TechnicalInfo, q.Deliverables, q.Notes, q.RequiredHour,
		q.File.Path, q.File.Type, q.File.Size,
		q.CompletedFile.Path, q.CompletedFile.Type, q.CompletedFile.Size,
		q.Status, q.POStatus, q.ApprovedAt, q.StartedAt, q.CompletedAt,
		q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quotation: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización con el dueño y el pago vinculado.
func (r *QuotationRepo) GetByID(id string) (*entity.Quotation, error) {
	query := `
		SELECT ` + quotationColumns + `,
			u.name, u.email, u.phone,
			p.hours_purchased, p.po_file_path
		FROM quotations q
		JOIN users u ON u.id = q.user_id
		LEFT JOIN payments p ON p.id = q.payment_id
		WHERE q.id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	q, err := scanQuotationJoined(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	return q, nil
}

// GetByIDForUpdate bloquea la fila para la transacción en curso. No trae los
// datos de JOIN: el lock es sobre la cotización sola.
func (r *QuotationRepo) GetByIDForUpdate(id string) (*entity.Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations q WHERE q.id = $1 FOR UPDATE`
	row := r.q.QueryRow(context.Background(), query, id)
	var q entity.Quotation
	if err := scanQuotationBase(row, &q); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock quotation: %w", err)
	}
	return &q, nil
}

// Update persiste los campos mutables de la cotización.
func (r *QuotationRepo) Update(q *entity.Quotation) error {
	query := `
		UPDATE quotations SET payment_id = $2, project_name = $3, description = $4,
			technical_info = $5, deliverables = $6, notes = $7, required_hour = $8,
			file_path = $9, file_type = $10, file_size = $11,
			completed_file_path = $12, completed_file_type = $13, completed_file_size = $14,
			status = $15, po_status = $16, approved_at = $17, started_at = $18, completed_at = $19,
			updated_at = $20
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		q.ID, q.PaymentID, q.ProjectName, q.Description,
		q.TechnicalInfo, q.Deliverables, q.Notes, q.RequiredHour,
		q.File.Path, q.File.Type, q.File.Size,
		q.CompletedFile.Path, q.CompletedFile.Type, q.CompletedFile.Size,
		q.Status, q.POStatus, q.ApprovedAt, q.StartedAt, q.CompletedAt,
		q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quotation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista todas las cotizaciones (vista admin), más recientes primero.
func (r *QuotationRepo) List() ([]*entity.Quotation, error) {
	query := `
		SELECT ` + quotationColumns + `,
			u.name, u.email, u.phone,
			p.hours_purchased, p.po_file_path
		FROM quotations q
		JOIN users u ON u.id = q.user_id
		LEFT JOIN payments p ON p.id = q.payment_id
		ORDER BY q.created_at DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	defer rows.Close()
	return scanQuotationsJoined(rows)
}

// ListByUser lista las cotizaciones de un usuario, más recientes primero.
func (r *QuotationRepo) ListByUser(userID string) ([]*entity.Quotation, error) {
	query := `
		SELECT ` + quotationColumns + `,
			u.name, u.email, u.phone,
			p.hours_purchased, p.po_file_path
		FROM quotations q
		JOIN users u ON u.id = q.user_id
		LEFT JOIN payments p ON p.id = q.payment_id
		WHERE q.user_id = $1
		ORDER BY q.created_at DESC`
	rows, err := r.q.Query(context.Background(), query, userID)
	if err != nil {
		return nil, fmt.Errorf("list quotations by user: %w", err)
	}
	defer rows.Close()
	return scanQuotationsJoined(rows)
}

// Delete elimina la cotización. Los archivos asociados los limpia el caso de uso.
func (r *QuotationRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func baseFields(q *entity.Quotation) []any {
	return []any{
		&q.ID, &q.UserID, &q.PaymentID, &q.ProjectName, &q.Description,
		&q.TechnicalInfo, &q.Deliverables, &q.Notes, &q.RequiredHour,
		&q.File.Path, &q.File.Type, &q.File.Size,
		&q.CompletedFile.Path, &q.CompletedFile.Type, &q.CompletedFile.Size,
		&q.Status, &q.POStatus, &q.ApprovedAt, &q.StartedAt, &q.CompletedAt,
		&q.CreatedAt, &q.UpdatedAt,
	}
}

func scanQuotationBase(row pgx.Row, q *entity.Quotation) error {
	return row.Scan(baseFields(q)...)
}

func scanQuotationJoined(row pgx.Row) (*entity.Quotation, error) {
	var q entity.Quotation
	var owner entity.OwnerInfo
	var hoursPurchased decimal.NullDecimal
	var poFile *string

	dst := append(baseFields(&q), &owner.Name, &owner.Email, &owner.Phone, &hoursPurchased, &poFile)
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	q.Owner = &owner
	if q.PaymentID != nil {
		pay := entity.PaymentInfo{HoursPurchased: hoursPurchased.Decimal}
		if poFile != nil {
			pay.PurchaseOrderFile = *poFile
		}
		q.Payment = &pay
	}
	return &q, nil
}

func scanQuotationsJoined(rows pgx.Rows) ([]*entity.Quotation, error) {
	var out []*entity.Quotation
	for rows.Next() {
		q, err := scanQuotationJoined(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quotation: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
