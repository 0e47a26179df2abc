package repository

import "github.com/makerforge/quote3d-api/internal/domain/entity"

// QuotationRepository define el puerto de persistencia para Quotation.
type QuotationRepository interface {
	Create(q *entity.Quotation) error
	GetByID(id string) (*entity.Quotation, error)
	// GetByIDForUpdate bloquea la fila (SELECT ... FOR UPDATE). Solo tiene
	// sentido dentro de una transacción; fuera de ella degrada a lectura.
	GetByIDForUpdate(id string) (*entity.Quotation, error)
	// Update persiste los campos mutables: textos, archivos, requiredHour,
	// status, poStatus, vínculo de pago y timestamps de transición.
	Update(q *entity.Quotation) error
	List() ([]*entity.Quotation, error)
	ListByUser(userID string) ([]*entity.Quotation, error)
	Delete(id string) error
}
