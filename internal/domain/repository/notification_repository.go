package repository

import "github.com/makerforge/quote3d-api/internal/domain/entity"

// NotificationRepository define el puerto de persistencia para Notification.
type NotificationRepository interface {
	Create(n *entity.Notification) error
	GetByID(id string) (*entity.Notification, error)
	ListByUser(userID string) ([]*entity.Notification, error)
	MarkRead(id string) error
	Delete(id string) error
}
