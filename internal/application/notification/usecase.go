package notification

import (
	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/ports"
	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

// NotificationUseCase bandeja de avisos por usuario. Las operaciones de
// escritura exigen que el actor sea el dueño.
type NotificationUseCase struct {
	repo      repository.NotificationRepository
	publisher ports.Publisher
}

func NewNotificationUseCase(repo repository.NotificationRepository, publisher ports.Publisher) *NotificationUseCase {
	return &NotificationUseCase{repo: repo, publisher: publisher}
}

// List devuelve las notificaciones del usuario, más reciente primero.
func (uc *NotificationUseCase) List(userID string) ([]*dto.NotificationResponse, error) {
	list, err := uc.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponses(list), nil
}

// MarkRead marca una notificación del actor como leída.
func (uc *NotificationUseCase) MarkRead(actorID, id string) (*dto.NotificationResponse, error) {
	n, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	if !n.IsRead {
		if err := uc.repo.MarkRead(id); err != nil {
			return nil, err
		}
		n.IsRead = true
		uc.publisher.Publish(actorID, "notification:read", map[string]string{"id": id})
	}
	return dto.NewNotificationResponse(n), nil
}

// Delete elimina una notificación del actor.
func (uc *NotificationUseCase) Delete(actorID, id string) error {
	n, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if n.UserID != actorID {
		return domain.ErrForbidden
	}
	if err := uc.repo.Delete(id); err != nil {
		return err
	}
	uc.publisher.Publish(actorID, "notification:deleted", map[string]string{"id": id})
	return nil
}
