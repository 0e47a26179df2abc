package entity

import "time"

// Tipos de notificación, uno por evento del ciclo de vida.
const (
	NotifQuoteRequested = "quote_requested"
	NotifQuoteRaised    = "quote_raised"
	NotifQuoteApproved  = "quote_approved"
	NotifQuoteRejected  = "quote_rejected"
	NotifQuoteOngoing   = "quote_ongoing"
	NotifQuoteCompleted = "quote_completed"
)

// Notification aviso persistido para un usuario, opcionalmente ligado a una
// cotización. Solo el dueño puede marcarla como leída o eliminarla.
type Notification struct {
	ID          string
	UserID      string
	QuotationID *string
	Title       string
	Message     string
	Type        string
	IsRead      bool
	CreatedAt   time.Time
}
