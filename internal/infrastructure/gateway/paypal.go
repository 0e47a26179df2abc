package gateway

import (
	"context"
	"fmt"

	paypal "github.com/plutov/paypal/v4"

	"github.com/makerforge/quote3d-api/internal/application/payment"
	"github.com/makerforge/quote3d-api/pkg/config"
)

var _ payment.PaypalGateway = (*PaypalClient)(nil)

// PaypalClient adaptador del SDK de PayPal (checkout server-to-server).
type PaypalClient struct {
	client *paypal.Client
}

// NewPaypalClient construye el cliente. Env "live" apunta a producción;
// cualquier otro valor usa sandbox.
func NewPaypalClient(cfg config.PayPalConfig) (*PaypalClient, error) {
	apiBase := paypal.APIBaseSandBox
	if cfg.Env == "live" {
		apiBase = paypal.APIBaseLive
	}
	client, err := paypal.NewClient(cfg.ClientID, cfg.Secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("crear cliente paypal: %w", err)
	}
	return &PaypalClient{client: client}, nil
}

// CreateOrder abre una orden con intent CAPTURE. Value va como string
// decimal ("10.00") según exige la API de PayPal.
func (c *PaypalClient) CreateOrder(ctx context.Context, value, currency, description string) (string, error) {
	units := []paypal.PurchaseUnitRequest{{
		Amount: &paypal.PurchaseUnitAmount{
			Currency: currency,
			Value:    value,
		},
		Description: description,
	}}
	order, err := c.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return "", fmt.Errorf("crear orden paypal: %w", err)
	}
	return order.ID, nil
}

// CaptureOrder captura la orden y devuelve el status final reportado.
func (c *PaypalClient) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	capture, err := c.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return "", fmt.Errorf("capturar orden paypal: %w", err)
	}
	return capture.Status, nil
}
