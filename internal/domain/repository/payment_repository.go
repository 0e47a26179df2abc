package repository

import "github.com/makerforge/quote3d-api/internal/domain/entity"

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	// Create persiste el pago. Devuelve ErrDuplicatePayment si las
	// referencias del proveedor ya fueron registradas (índice único).
	Create(p *entity.Payment) error
	GetByID(id string) (*entity.Payment, error)
	ListByUser(userID string) ([]*entity.Payment, error)
}
