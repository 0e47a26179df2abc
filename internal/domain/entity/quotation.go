package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una cotización.
// requested → quoted → {approved | rejected} ; approved → ongoing → completed
const (
	StatusRequested = "requested"
	StatusQuoted    = "quoted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// Sub-estados del flujo de orden de compra (independiente del status principal).
const (
	POStatusRequested = "requested"
	POStatusApproved  = "approved"
	POStatusRejected  = "rejected"
	POStatusPending   = "pending"
)

// ValidPOStatus indica si el sub-estado de orden de compra es aceptado.
func ValidPOStatus(s string) bool {
	switch s {
	case POStatusRequested, POStatusApproved, POStatusRejected, POStatusPending:
		return true
	}
	return false
}

// StoredFile referencia a un archivo subido: ruta relativa servida como
// estático, tipo (extensión en mayúsculas) y tamaño en bytes.
type StoredFile struct {
	Path string
	Type string
	Size int64
}

// OwnerInfo resumen del dueño de la cotización para listados (JOIN con users).
type OwnerInfo struct {
	Name  string
	Email string
	Phone string
}

// PaymentInfo resumen del pago vinculado para listados (JOIN con payments).
type PaymentInfo struct {
	HoursPurchased    decimal.Decimal
	PurchaseOrderFile string
}

// Quotation solicitud de trabajo 3D con su máquina de estados.
// RequiredHour lo fija el admin al cotizar; la aprobación exige que el dueño
// tenga saldo suficiente en ese momento.
type Quotation struct {
	ID            string
	UserID        string
	PaymentID     *string
	ProjectName   string
	Description   string
	TechnicalInfo string
	Deliverables  string
	Notes         string
	RequiredHour  decimal.NullDecimal
	File          StoredFile
	CompletedFile StoredFile
	Status        string
	POStatus      string // vacío hasta que entra al flujo de orden de compra
	ApprovedAt    *time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Poblados solo por las consultas de lectura (LEFT JOIN).
	Owner   *OwnerInfo
	Payment *PaymentInfo
}
