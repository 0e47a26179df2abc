package payment

import (
	"context"

	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

// RazorpayGateway crea órdenes pendientes en Razorpay. La verificación no
// pasa por aquí: es un HMAC local con el secret compartido.
type RazorpayGateway interface {
	CreateOrder(amount int64, currency, receipt string) (orderID string, err error)
}

// PaypalGateway crea órdenes y las captura server-to-server.
type PaypalGateway interface {
	CreateOrder(ctx context.Context, value, currency, description string) (orderID string, err error)
	// CaptureOrder devuelve el status reportado por PayPal (p.ej. COMPLETED).
	CaptureOrder(ctx context.Context, orderID string) (status string, err error)
}

// TxRunner ejecuta el alta del pago y el abono de horas como una sola
// transacción: una verificación duplicada (violación del índice único)
// aborta sin acreditar dos veces.
type TxRunner interface {
	RunCredit(ctx context.Context, fn func(
		payments repository.PaymentRepository,
		users repository.UserRepository,
	) error) error
}

// ReceiptGenerator genera el comprobante PDF de un pago.
type ReceiptGenerator interface {
	GenerateReceipt(p *entity.Payment, owner *entity.User) ([]byte, error)
}
