package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

// CreateQuotationRequest campos de texto de la solicitud (el archivo 3D
// llega como multipart aparte).
type CreateQuotationRequest struct {
	ProjectName   string `json:"projectName" form:"projectName"`
	Description   string `json:"description" form:"description"`
	TechnicalInfo string `json:"technicalInfo" form:"technicalInfo"`
	Deliverables  string `json:"deliverables" form:"deliverables"`
}

// UpdateQuotationRequest campos mutables por el dueño.
type UpdateQuotationRequest struct {
	ProjectName   string `json:"projectName" form:"projectName"`
	Description   string `json:"description" form:"description"`
	TechnicalInfo string `json:"technicalInfo" form:"technicalInfo"`
	Deliverables  string `json:"deliverables" form:"deliverables"`
}

// RaiseQuoteRequest horas que fija el admin al cotizar.
type RaiseQuoteRequest struct {
	RequiredHour decimal.Decimal `json:"requiredHour"`
}

// DecisionRequest decisión del dueño: approved | rejected.
type DecisionRequest struct {
	Status string `json:"status"`
}

// PoStatusRequest cambio del sub-estado de orden de compra.
type PoStatusRequest struct {
	PoStatus string `json:"poStatus"`
}

// QuotationOwner resumen del dueño en listados.
type QuotationOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// QuotationPayment resumen del pago vinculado en listados.
type QuotationPayment struct {
	HoursPurchased    decimal.Decimal `json:"hoursPurchased"`
	PurchaseOrderFile string          `json:"purchaseOrderFile,omitempty"`
}

// QuotationResponse representación completa de una cotización.
type QuotationResponse struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user"`
	ProjectName   string            `json:"projectName"`
	Description   string            `json:"description,omitempty"`
	TechnicalInfo string            `json:"technicalInfo,omitempty"`
	Deliverables  string            `json:"deliverables,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	RequiredHour  *decimal.Decimal  `json:"requiredHour,omitempty"`
	File          string            `json:"file,omitempty"`
	FileType      string            `json:"fileType,omitempty"`
	FileSize      int64             `json:"fileSize,omitempty"`
	CompletedFile string            `json:"completedFile,omitempty"`
	Status        string            `json:"status"`
	PoStatus      string            `json:"poStatus,omitempty"`
	ApprovedAt    *time.Time        `json:"approvedAt,omitempty"`
	StartedAt     *time.Time        `json:"startedAt,omitempty"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Owner         *QuotationOwner   `json:"owner,omitempty"`
	Payment       *QuotationPayment `json:"payment,omitempty"`
}

// NewQuotationResponse mapea la entidad a su representación pública.
func NewQuotationResponse(q *entity.Quotation) *QuotationResponse {
	if q == nil {
		return nil
	}
	out := &QuotationResponse{
		ID:            q.ID,
		UserID:        q.UserID,
		ProjectName:   q.ProjectName,
		Description:   q.Description,
		TechnicalInfo: q.TechnicalInfo,
		Deliverables:  q.Deliverables,
		Notes:         q.Notes,
		File:          q.File.Path,
		FileType:      q.File.Type,
		FileSize:      q.File.Size,
		CompletedFile: q.CompletedFile.Path,
		Status:        q.Status,
		PoStatus:      q.POStatus,
		ApprovedAt:    q.ApprovedAt,
		StartedAt:     q.StartedAt,
		CompletedAt:   q.CompletedAt,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
	if q.RequiredHour.Valid {
		h := q.RequiredHour.Decimal
		out.RequiredHour = &h
	}
	if q.Owner != nil {
		out.Owner = &QuotationOwner{Name: q.Owner.Name, Email: q.Owner.Email, Phone: q.Owner.Phone}
	}
	if q.Payment != nil {
		out.Payment = &QuotationPayment{
			HoursPurchased:    q.Payment.HoursPurchased,
			PurchaseOrderFile: q.Payment.PurchaseOrderFile,
		}
	}
	return out
}

// NewQuotationResponses mapea un listado.
func NewQuotationResponses(list []*entity.Quotation) []*QuotationResponse {
	out := make([]*QuotationResponse, 0, len(list))
	for _, q := range list {
		out = append(out, NewQuotationResponse(q))
	}
	return out
}
