// Package gateway adaptadores de las pasarelas de pago externas.
package gateway

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/makerforge/quote3d-api/internal/application/payment"
	"github.com/makerforge/quote3d-api/pkg/config"
)

var _ payment.RazorpayGateway = (*RazorpayClient)(nil)

// RazorpayClient adaptador del SDK de Razorpay.
type RazorpayClient struct {
	client *razorpay.Client
}

// NewRazorpayClient construye el cliente con las credenciales configuradas.
func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	return &RazorpayClient{client: razorpay.NewClient(cfg.KeyID, cfg.Secret)}
}

// CreateOrder abre una orden pendiente. El monto va en unidades menores (paise).
func (c *RazorpayClient) CreateOrder(amount int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := c.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("crear orden razorpay: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok {
		return "", fmt.Errorf("respuesta de razorpay sin order id")
	}
	return id, nil
}
