package dto

import (
	"time"

	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

// NotificationResponse representación pública de una notificación.
type NotificationResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user"`
	QuotationID string    `json:"quotation,omitempty"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewNotificationResponse mapea la entidad a su representación pública.
func NewNotificationResponse(n *entity.Notification) *NotificationResponse {
	if n == nil {
		return nil
	}
	out := &NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.QuotationID != nil {
		out.QuotationID = *n.QuotationID
	}
	return out
}

// NewNotificationResponses mapea un listado.
func NewNotificationResponses(list []*entity.Notification) []*NotificationResponse {
	out := make([]*NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NewNotificationResponse(n))
	}
	return out
}
