package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/ports"
	"github.com/makerforge/quote3d-api/internal/application/upload"
	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
	"github.com/makerforge/quote3d-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// TxRunner ejecuta la decisión del usuario dentro de una transacción: el
// bloqueo de la cotización y el débito condicional de horas deben confirmarse
// o revertirse juntos.
type TxRunner interface {
	RunDecision(ctx context.Context, fn func(
		users repository.UserRepository,
		quotations repository.QuotationRepository,
	) error) error
}

// QuotationUseCase máquina de estados de cotizaciones:
// requested → quoted → {approved | rejected} ; approved → ongoing → completed.
// Cada transición persiste el cambio y dispara notificación + email + push
// en tiempo real de forma best-effort (nunca revierten el cambio de estado).
type QuotationUseCase struct {
	quotationRepo repository.QuotationRepository
	userRepo      repository.UserRepository
	notifRepo     repository.NotificationRepository
	tx            TxRunner
	store         upload.FileStore
	mailer        ports.Mailer
	publisher     ports.Publisher
	log           *logger.Logger
	frontendURL   string
	supportEmail  string
}

// NewQuotationUseCase construye el caso de uso del ciclo de vida.
func NewQuotationUseCase(
	quotationRepo repository.QuotationRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	tx TxRunner,
	store upload.FileStore,
	mailer ports.Mailer,
	publisher ports.Publisher,
	log *logger.Logger,
	frontendURL, supportEmail string,
) *QuotationUseCase {
	return &QuotationUseCase{
		quotationRepo: quotationRepo,
		userRepo:      userRepo,
		notifRepo:     notifRepo,
		tx:            tx,
		store:         store,
		mailer:        mailer,
		publisher:     publisher,
		log:           log,
		frontendURL:   frontendURL,
		supportEmail:  supportEmail,
	}
}

// List devuelve todas las cotizaciones (admin) con resumen del dueño.
func (uc *QuotationUseCase) List() ([]*dto.QuotationResponse, error) {
	list, err := uc.quotationRepo.List()
	if err != nil {
		return nil, err
	}
	return dto.NewQuotationResponses(list), nil
}

// Get devuelve una cotización por ID.
func (uc *QuotationUseCase) Get(id string) (*dto.QuotationResponse, error) {
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewQuotationResponse(q), nil
}

// ListByUser devuelve las cotizaciones de un usuario.
func (uc *QuotationUseCase) ListByUser(userID string) ([]*dto.QuotationResponse, error) {
	list, err := uc.quotationRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return dto.NewQuotationResponses(list), nil
}

// Request crea una cotización en estado requested con su archivo 3D.
// La validación del archivo ocurre antes de cualquier escritura; si la
// persistencia falla después de mover el archivo, éste se elimina
// (limpieza compensatoria).
func (uc *QuotationUseCase) Request(actor *entity.User, in dto.CreateQuotationRequest, file upload.File) (*dto.QuotationResponse, error) {
	if in.ProjectName == "" || in.Description == "" {
		return nil, fmt.Errorf("%w: projectName y description son requeridos", domain.ErrInvalidInput)
	}

	stored, err := upload.Store(uc.store, file, upload.ModelFile, time.Now())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	q := &entity.Quotation{
		ID:            uuid.New().String(),
		UserID:        actor.ID,
		ProjectName:   in.ProjectName,
		Description:   in.Description,
		TechnicalInfo: in.TechnicalInfo,
		Deliverables:  in.Deliverables,
		File:          stored,
		Status:        entity.StatusRequested,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.quotationRepo.Create(q); err != nil {
		if rmErr := uc.store.Remove(stored.Path); rmErr != nil {
			uc.log.Warn().Err(rmErr).Str("path", stored.Path).Msg("limpieza del archivo huérfano")
		}
		return nil, err
	}

	uc.fanoutRequested(actor, q)
	return dto.NewQuotationResponse(q), nil
}

// RaiseQuote fija las horas requeridas y pasa la cotización a quoted.
func (uc *QuotationUseCase) RaiseQuote(id string, hours decimal.Decimal) (*dto.QuotationResponse, error) {
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if hours.IsNegative() || hours.IsZero() {
		return nil, fmt.Errorf("%w: requiredHour debe ser mayor que cero", domain.ErrInvalidInput)
	}

	q.RequiredHour = decimal.NullDecimal{Decimal: hours, Valid: true}
	q.Status = entity.StatusQuoted
	q.UpdatedAt = time.Now()
	if err := uc.quotationRepo.Update(q); err != nil {
		return nil, err
	}

	uc.fanoutRaised(q)
	return dto.NewQuotationResponse(q), nil
}

// UpdateRequiredHour cambia las horas cotizadas sin tocar el status y
// vuelve a avisar al dueño.
func (uc *QuotationUseCase) UpdateRequiredHour(id string, hours decimal.Decimal) (*dto.QuotationResponse, error) {
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if hours.IsNegative() || hours.IsZero() {
		return nil, fmt.Errorf("%w: requiredHour debe ser mayor que cero", domain.ErrInvalidInput)
	}

	q.RequiredHour = decimal.NullDecimal{Decimal: hours, Valid: true}
	q.UpdatedAt = time.Now()
	if err := uc.quotationRepo.Update(q); err != nil {
		return nil, err
	}

	uc.fanoutHourUpdated(q)
	return dto.NewQuotationResponse(q), nil
}

// Decision aplica la decisión del dueño sobre una cotización cotizada.
// En approved el chequeo de saldo y el débito son una sola unidad lógica:
// la fila se bloquea (FOR UPDATE) y el débito es un UPDATE condicional, de
// modo que dos aprobaciones concurrentes no pueden dejar saldo negativo ni
// descontar dos veces.
func (uc *QuotationUseCase) Decision(ctx context.Context, actor *entity.User, id, status string) (*dto.QuotationResponse, error) {
	if status != entity.StatusApproved && status != entity.StatusRejected {
		return nil, domain.ErrInvalidStatus
	}

	var result *entity.Quotation
	err := uc.tx.RunDecision(ctx, func(users repository.UserRepository, quotations repository.QuotationRepository) error {
		q, err := quotations.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if q == nil {
			return domain.ErrNotFound
		}
		if q.UserID != actor.ID {
			return domain.ErrForbidden
		}
		if q.Status == entity.StatusApproved {
			return fmt.Errorf("%w: la cotización ya fue aprobada", domain.ErrConflict)
		}

		now := time.Now()
		if status == entity.StatusApproved && q.RequiredHour.Valid {
			if err := users.DebitHours(q.UserID, q.RequiredHour.Decimal); err != nil {
				if errors.Is(err, domain.ErrInsufficientHours) {
					if u, uerr := users.GetByID(q.UserID); uerr == nil && u != nil {
						return fmt.Errorf("%w: tienes %s horas y necesitas %s",
							domain.ErrInsufficientHours, u.HoursBalance.String(), q.RequiredHour.Decimal.String())
					}
				}
				return err
			}
			q.ApprovedAt = &now
		}
		q.Status = status
		q.UpdatedAt = now
		if err := quotations.Update(q); err != nil {
			return err
		}
		result = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.fanoutDecision(actor, result, status)
	return dto.NewQuotationResponse(result), nil
}

// DecisionPO aplica la decisión sin chequeo ni débito de horas: el pago ya
// quedó conciliado por la vía de orden de compra.
func (uc *QuotationUseCase) DecisionPO(actor *entity.User, id, status string) (*dto.QuotationResponse, error) {
	if status != entity.StatusApproved && status != entity.StatusRejected {
		return nil, domain.ErrInvalidStatus
	}
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if q.UserID != actor.ID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if status == entity.StatusApproved {
		q.ApprovedAt = &now
	}
	q.Status = status
	q.UpdatedAt = now
	if err := uc.quotationRepo.Update(q); err != nil {
		return nil, err
	}

	uc.fanoutDecision(actor, q, status)
	return dto.NewQuotationResponse(q), nil
}

// MarkOngoing pasa una cotización aprobada a ongoing y estampa startedAt.
func (uc *QuotationUseCase) MarkOngoing(id string) (*dto.QuotationResponse, error) {
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if q.Status != entity.StatusApproved {
		return nil, fmt.Errorf("%w: la cotización debe estar aprobada antes de iniciar el trabajo", domain.ErrInvalidTransition)
	}

	now := time.Now()
	q.Status = entity.StatusOngoing
	q.StartedAt = &now
	q.UpdatedAt = now
	if err := uc.quotationRepo.Update(q); err != nil {
		return nil, err
	}

	uc.fanoutOngoing(q)
	return dto.NewQuotationResponse(q), nil
}

// Complete almacena el entregable final, estampa completedAt y pasa a
// completed. No se exige un status previo concreto: el flujo histórico
// permite completar directamente, p.ej. trabajos pactados fuera de línea.
func (uc *QuotationUseCase) Complete(id string, file upload.File) (*dto.QuotationResponse, error) {
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}

	stored, err := upload.Store(uc.store, file, upload.CompletedFile, time.Now())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	q.CompletedFile = stored
	q.Status = entity.StatusCompleted
	q.CompletedAt = &now
	q.UpdatedAt = now
	if err := uc.quotationRepo.Update(q); err != nil {
		if rmErr := uc.store.Remove(stored.Path); rmErr != nil {
			uc.log.Warn().Err(rmErr).Str("path", stored.Path).Msg("limpieza del entregable huérfano")
		}
		return nil, err
	}

	uc.fanoutCompleted(q)
	return dto.NewQuotationResponse(q), nil
}

// Update permite al dueño mutar los campos de texto y opcionalmente
// reemplazar el archivo 3D. El archivo anterior se borra solo después de
// que el nuevo quedó almacenado.
func (uc *QuotationUseCase) Update(actor *entity.User, id string, in dto.UpdateQuotationRequest, file *upload.File) (*dto.QuotationResponse, error) {
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if q.UserID != actor.ID {
		return nil, domain.ErrForbidden
	}

	if in.ProjectName != "" {
		q.ProjectName = in.ProjectName
	}
	if in.Description != "" {
		q.Description = in.Description
	}
	if in.TechnicalInfo != "" {
		q.TechnicalInfo = in.TechnicalInfo
	}
	if in.Deliverables != "" {
		q.Deliverables = in.Deliverables
	}

	oldPath := ""
	if file != nil {
		stored, err := upload.Store(uc.store, *file, upload.ModelFile, time.Now())
		if err != nil {
			return nil, err
		}
		oldPath = q.File.Path
		q.File = stored
	}

	q.UpdatedAt = time.Now()
	if err := uc.quotationRepo.Update(q); err != nil {
		if file != nil {
			if rmErr := uc.store.Remove(q.File.Path); rmErr != nil {
				uc.log.Warn().Err(rmErr).Str("path", q.File.Path).Msg("limpieza del reemplazo huérfano")
			}
		}
		return nil, err
	}

	if oldPath != "" {
		if rmErr := uc.store.Remove(oldPath); rmErr != nil {
			uc.log.Warn().Err(rmErr).Str("path", oldPath).Msg("borrado del archivo reemplazado")
		}
	}

	uc.publisher.Publish(q.UserID, "quotation:userUpdated", map[string]any{
		"user":        q.UserID,
		"quotationId": q.ID,
		"projectName": q.ProjectName,
		"message":     fmt.Sprintf("User updated quotation for %s", q.ProjectName),
	})
	return dto.NewQuotationResponse(q), nil
}

// UpdatePoStatus cambia el sub-estado de orden de compra.
func (uc *QuotationUseCase) UpdatePoStatus(id, poStatus string) (*dto.QuotationResponse, error) {
	if poStatus == "" {
		return nil, fmt.Errorf("%w: poStatus es requerido", domain.ErrInvalidInput)
	}
	if !entity.ValidPOStatus(poStatus) {
		return nil, fmt.Errorf("%w: poStatus %q no es válido", domain.ErrInvalidStatus, poStatus)
	}
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}

	q.POStatus = poStatus
	q.UpdatedAt = time.Now()
	if err := uc.quotationRepo.Update(q); err != nil {
		return nil, err
	}
	return dto.NewQuotationResponse(q), nil
}

// Delete elimina la cotización y, best-effort, sus archivos almacenados.
func (uc *QuotationUseCase) Delete(id string) error {
	q, err := uc.quotationRepo.GetByID(id)
	if err != nil {
		return err
	}
	if q == nil {
		return domain.ErrNotFound
	}
	if err := uc.quotationRepo.Delete(id); err != nil {
		return err
	}
	for _, p := range []string{q.File.Path, q.CompletedFile.Path} {
		if p == "" {
			continue
		}
		if rmErr := uc.store.Remove(p); rmErr != nil {
			uc.log.Warn().Err(rmErr).Str("path", p).Msg("borrado de archivos de la cotización eliminada")
		}
	}
	return nil
}
