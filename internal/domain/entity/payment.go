package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pasarelas de pago soportadas.
const (
	GatewayRazorpay      = "razorpay"
	GatewayPaypal        = "paypal"
	GatewayPurchaseOrder = "purchase_order"
)

// Estados de un pago.
const (
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
	PaymentPending = "pending"
)

// Payment registro de una compra de horas. Inmutable salvo el status y el
// vínculo posterior con una cotización (flujo de orden de compra).
// La tupla (gateway, order_ref, payment_ref) es única: una segunda
// verificación del mismo pago no puede acreditar horas dos veces.
type Payment struct {
	ID             string
	UserID         string
	QuotationID    *string
	Gateway        string // razorpay, paypal, purchase_order
	OrderRef       string // order id del proveedor
	PaymentRef     string // payment id del proveedor (razorpay)
	Signature      string // firma razorpay recibida del cliente
	Amount         decimal.Decimal
	Currency       string
	HoursPurchased decimal.Decimal
	Status         string
	PaymentDate    time.Time

	// Solo para gateway purchase_order.
	PurchaseOrderFile StoredFile
}
