package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

// CreateOrderRequest creación de una orden de pago. Amount va en unidades
// menores (paise/centavos), igual que lo envía el frontend.
type CreateOrderRequest struct {
	Amount  int64           `json:"amount"`
	Hours   decimal.Decimal `json:"hours"`
	Gateway string          `json:"gateway"`
}

// OrderResponse orden pendiente creada en la pasarela.
type OrderResponse struct {
	Gateway  string `json:"gateway"`
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// VerifyPaymentRequest identificadores del proveedor para verificar el pago.
type VerifyPaymentRequest struct {
	Gateway           string          `json:"gateway"`
	RazorpayOrderID   string          `json:"razorpay_order_id"`
	RazorpayPaymentID string          `json:"razorpay_payment_id"`
	RazorpaySignature string          `json:"razorpay_signature"`
	PaypalOrderID     string          `json:"paypal_order_id"`
	Amount            decimal.Decimal `json:"amount"`
	Hours             decimal.Decimal `json:"hours"`
}

// PurchaseOrderRequest campos de la orden de compra (el documento llega
// como multipart aparte).
type PurchaseOrderRequest struct {
	Amount      decimal.Decimal `json:"amount" form:"amount"`
	Hours       decimal.Decimal `json:"hours" form:"hours"`
	QuotationID string          `json:"quotationId" form:"quotationId"`
}

// PaymentResponse representación pública de un pago.
type PaymentResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user"`
	QuotationID       string          `json:"quotation,omitempty"`
	Gateway           string          `json:"gateway"`
	OrderRef          string          `json:"orderId,omitempty"`
	PaymentRef        string          `json:"paymentId,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	HoursPurchased    decimal.Decimal `json:"hoursPurchased"`
	Status            string          `json:"status"`
	PaymentDate       time.Time       `json:"paymentDate"`
	PurchaseOrderFile string          `json:"purchaseOrderFile,omitempty"`
}

// NewPaymentResponse mapea la entidad a su representación pública.
func NewPaymentResponse(p *entity.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	out := &PaymentResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		Gateway:           p.Gateway,
		OrderRef:          p.OrderRef,
		PaymentRef:        p.PaymentRef,
		Amount:            p.Amount,
		Currency:          p.Currency,
		HoursPurchased:    p.HoursPurchased,
		Status:            p.Status,
		PaymentDate:       p.PaymentDate,
		PurchaseOrderFile: p.PurchaseOrderFile.Path,
	}
	if p.QuotationID != nil {
		out.QuotationID = *p.QuotationID
	}
	return out
}

// NewPaymentResponses mapea un listado.
func NewPaymentResponses(list []*entity.Payment) []*PaymentResponse {
	out := make([]*PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, NewPaymentResponse(p))
	}
	return out
}
