// Package pdf genera el comprobante de pago en PDF.
//
// Layout de la página A4:
//
//	┌───────────────────────────────────────────────┐
//	│  HEADER: nombre del servicio + "Payment       │
//	│  Receipt" + fecha                             │
//	│  ───────────────────────────────────────────  │
//	│  CLIENTE: nombre + email                      │
//	│  ───────────────────────────────────────────  │
//	│  DETALLE: gateway, referencias, horas, monto  │
//	│  ───────────────────────────────────────────  │
//	│  TOTAL                                         │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/application/payment"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 37, Green: 99, Blue: 235}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ payment.ReceiptGenerator = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa payment.ReceiptGenerator usando Maroto v2.
type ReceiptGenerator struct {
	serviceName string
}

// NewReceiptGenerator construye el generador con el nombre mostrado en el header.
func NewReceiptGenerator(serviceName string) *ReceiptGenerator {
	return &ReceiptGenerator{serviceName: serviceName}
}

// GenerateReceipt genera el comprobante y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceipt(p *entity.Payment, owner *entity.User) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Payment Receipt", true).
		WithAuthor(g.serviceName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(owner))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))

	m.AddRows(detailRow("Payment ID", p.ID))
	m.AddRows(detailRow("Gateway", p.Gateway))
	if p.OrderRef != "" {
		m.AddRows(detailRow("Order reference", p.OrderRef))
	}
	if p.PaymentRef != "" {
		m.AddRows(detailRow("Payment reference", p.PaymentRef))
	}
	m.AddRows(detailRow("Status", p.Status))
	m.AddRows(detailRow("Hours purchased", p.HoursPurchased.String()))

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(totalRow(p))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: nombre del servicio (izq) y fecha del pago (der).
func (g *ReceiptGenerator) headerRow(p *entity.Payment) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(g.serviceName, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Payment Receipt", props.Text{
				Size: 10, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(p.PaymentDate.Format("02/01/2006 15:04"), props.Text{
				Size: 10, Top: 4, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

func customerRow(owner *entity.User) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("Billed to: "+owner.Name, props.Text{Style: fontstyle.Bold, Top: 1}),
			text.New(owner.Email, props.Text{Size: 9, Top: 6, Color: colorGray}),
		),
	)
}

func detailRow(label, value string) core.Row {
	return row.New(7).Add(
		col.New(4).Add(text.New(label, props.Text{Color: colorGray, Top: 1})),
		col.New(8).Add(text.New(value, props.Text{Top: 1})),
	)
}

func totalRow(p *entity.Payment) core.Row {
	// El monto se guarda en unidades menores (paise/centavos).
	total := p.Amount.Div(decimal.NewFromInt(100)).StringFixed(2)
	return row.New(12).Add(
		col.New(8).Add(text.New("TOTAL PAID", props.Text{
			Style: fontstyle.Bold, Size: 12, Top: 3,
		})),
		col.New(4).Add(text.New(fmt.Sprintf("%s %s", total, p.Currency), props.Text{
			Style: fontstyle.Bold, Size: 12, Top: 3, Align: align.Right, Color: colorPrimary,
		})),
	)
}
