package quotation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/makerforge/quote3d-api/internal/domain/entity"
)

// Fan-out de transiciones: notificación persistida + email con plantilla +
// evento en tiempo real. Ninguno es transaccional con el cambio de estado;
// los fallos se registran y se tragan.

func (uc *QuotationUseCase) fanoutRequested(actor *entity.User, q *entity.Quotation) {
	admins, err := uc.userRepo.ListAdmins()
	if err != nil {
		uc.log.Warn().Err(err).Msg("fan-out: listado de admins")
		admins = nil
	}

	adminEmails := make([]string, 0, len(admins))
	for _, a := range admins {
		adminEmails = append(adminEmails, a.Email)
		uc.persistNotification(a.ID, q,
			"New Quotation Request",
			fmt.Sprintf("New quotation requested for project: %s", q.ProjectName),
			entity.NotifQuoteRequested)
	}

	uc.sendEmail(adminEmails, fmt.Sprintf("New Quotation Request: %s", q.ProjectName),
		"quotation_requested_admin", map[string]any{
			"UserName":    actor.Name,
			"UserEmail":   actor.Email,
			"ProjectName": q.ProjectName,
			"Description": q.Description,
			"Date":        time.Now().Format("02/01/2006"),
		})

	uc.sendEmail([]string{actor.Email}, fmt.Sprintf("Quotation Request Received: %s", q.ProjectName),
		"quotation_requested_user", map[string]any{
			"UserName":     actor.Name,
			"ProjectName":  q.ProjectName,
			"SupportEmail": uc.supportEmail,
		})

	uc.publisher.Broadcast("quotation:requested", map[string]any{
		"user":        q.UserID,
		"projectName": q.ProjectName,
		"quotationId": q.ID,
		"message":     fmt.Sprintf("Quotation requested for %s", q.ProjectName),
	})
}

func (uc *QuotationUseCase) fanoutRaised(q *entity.Quotation) {
	owner := uc.owner(q)
	uc.persistNotification(q.UserID, q,
		"Quote Ready",
		fmt.Sprintf("A quote has been raised for your project %q", q.ProjectName),
		entity.NotifQuoteRaised)

	if owner != nil {
		uc.sendEmail([]string{owner.Email}, fmt.Sprintf("Your Quote is Ready: %s", q.ProjectName),
			"quote_raised", map[string]any{
				"UserName":     owner.Name,
				"ProjectName":  q.ProjectName,
				"RequiredHour": q.RequiredHour.Decimal.String(),
				"ProjectLink":  uc.projectLink(q.ID),
			})
	}

	uc.publisher.Publish(q.UserID, "quotation:raised", map[string]any{
		"user":         q.UserID,
		"quotationId":  q.ID,
		"requiredHour": q.RequiredHour.Decimal.String(),
		"message":      fmt.Sprintf("Quote raised for project %s", q.ProjectName),
	})
}

func (uc *QuotationUseCase) fanoutHourUpdated(q *entity.Quotation) {
	owner := uc.owner(q)
	if owner != nil {
		uc.sendEmail([]string{owner.Email}, fmt.Sprintf("Updated Quote Hours: %s", q.ProjectName),
			"quote_hour_updated", map[string]any{
				"UserName":     owner.Name,
				"ProjectName":  q.ProjectName,
				"RequiredHour": q.RequiredHour.Decimal.String(),
				"ProjectLink":  uc.projectLink(q.ID),
			})
	}

	uc.publisher.Publish(q.UserID, "quotation:hour-updated", map[string]any{
		"user":         q.UserID,
		"quotationId":  q.ID,
		"requiredHour": q.RequiredHour.Decimal.String(),
		"message":      fmt.Sprintf("Quote hours updated again for project %s", q.ProjectName),
	})
}

func (uc *QuotationUseCase) fanoutDecision(actor *entity.User, q *entity.Quotation, status string) {
	adminEmails := uc.adminEmails()
	requiredHour := ""
	if q.RequiredHour.Valid {
		requiredHour = q.RequiredHour.Decimal.String()
	}

	if status == entity.StatusApproved {
		uc.sendEmail([]string{actor.Email}, fmt.Sprintf("Quotation Approved: %s", q.ProjectName),
			"quote_approved_user", map[string]any{
				"UserName":     actor.Name,
				"ProjectName":  q.ProjectName,
				"RequiredHour": requiredHour,
				"SupportEmail": uc.supportEmail,
			})
		uc.sendEmail(adminEmails, fmt.Sprintf("Quotation Approved: %s", q.ProjectName),
			"quote_approved_admin", map[string]any{
				"UserName":     actor.Name,
				"UserEmail":    actor.Email,
				"ProjectName":  q.ProjectName,
				"RequiredHour": requiredHour,
				"Date":         time.Now().Format("02/01/2006"),
			})
	} else {
		uc.sendEmail([]string{actor.Email}, fmt.Sprintf("Quotation Rejected: %s", q.ProjectName),
			"quote_rejected_user", map[string]any{
				"UserName":     actor.Name,
				"ProjectName":  q.ProjectName,
				"SupportEmail": uc.supportEmail,
			})
		uc.sendEmail(adminEmails, fmt.Sprintf("Quotation Rejected: %s", q.ProjectName),
			"quote_rejected_admin", map[string]any{
				"UserName":    actor.Name,
				"UserEmail":   actor.Email,
				"ProjectName": q.ProjectName,
				"Date":        time.Now().Format("02/01/2006"),
			})
	}

	notifType := entity.NotifQuoteApproved
	title := "Quotation Approved"
	if status == entity.StatusRejected {
		notifType = entity.NotifQuoteRejected
		title = "Quotation Rejected"
	}
	uc.persistNotification(q.UserID, q, title,
		fmt.Sprintf("Your quotation %q has been %s", q.ProjectName, status), notifType)

	payload := map[string]any{
		"user":        q.UserID,
		"quotationId": q.ID,
		"status":      status,
		"message":     fmt.Sprintf("Quotation %s for project %s", status, q.ProjectName),
	}
	uc.publisher.Publish(q.UserID, "quotation:decision", payload)
	uc.publisher.Broadcast("quotation:decision", payload)
}

func (uc *QuotationUseCase) fanoutOngoing(q *entity.Quotation) {
	owner := uc.owner(q)
	if owner != nil {
		uc.sendEmail([]string{owner.Email}, fmt.Sprintf("Work Started: %s", q.ProjectName),
			"work_started", map[string]any{
				"UserName":     owner.Name,
				"ProjectName":  q.ProjectName,
				"SupportEmail": uc.supportEmail,
			})
	}

	uc.persistNotification(q.UserID, q, "Work Started",
		fmt.Sprintf("Work has started on your project %q", q.ProjectName),
		entity.NotifQuoteOngoing)

	uc.publisher.Publish(q.UserID, "quotation:ongoing", map[string]any{
		"user":        q.UserID,
		"quotationId": q.ID,
		"message":     fmt.Sprintf("Work started on project %s", q.ProjectName),
	})
}

func (uc *QuotationUseCase) fanoutCompleted(q *entity.Quotation) {
	owner := uc.owner(q)
	if owner != nil {
		uc.sendEmail([]string{owner.Email}, fmt.Sprintf("Project Completed: %s", q.ProjectName),
			"project_completed", map[string]any{
				"UserName":     owner.Name,
				"ProjectName":  q.ProjectName,
				"DownloadLink": uc.projectLink(q.ID),
				"SupportEmail": uc.supportEmail,
			})
	}

	uc.persistNotification(q.UserID, q, "Project Completed",
		fmt.Sprintf("Your project %q has been completed", q.ProjectName),
		entity.NotifQuoteCompleted)

	uc.publisher.Publish(q.UserID, "quotation:completed", map[string]any{
		"user":        q.UserID,
		"quotationId": q.ID,
		"message":     fmt.Sprintf("Quotation completed for %s", q.ProjectName),
	})
}

func (uc *QuotationUseCase) persistNotification(userID string, q *entity.Quotation, title, message, notifType string) {
	qid := q.ID
	n := &entity.Notification{
		ID:          uuid.New().String(),
		UserID:      userID,
		QuotationID: &qid,
		Title:       title,
		Message:     message,
		Type:        notifType,
		CreatedAt:   time.Now(),
	}
	if err := uc.notifRepo.Create(n); err != nil {
		uc.log.Warn().Err(err).Str("user", userID).Msg("fan-out: persistir notificación")
	}
}

func (uc *QuotationUseCase) sendEmail(to []string, subject, template string, data map[string]any) {
	if len(to) == 0 {
		return
	}
	if err := uc.mailer.Send(to, subject, template, data); err != nil {
		uc.log.Warn().Err(err).Str("template", template).Msg("fan-out: envío de email")
	}
}

func (uc *QuotationUseCase) owner(q *entity.Quotation) *entity.User {
	u, err := uc.userRepo.GetByID(q.UserID)
	if err != nil || u == nil {
		uc.log.Warn().Err(err).Str("user", q.UserID).Msg("fan-out: dueño de la cotización no encontrado")
		return nil
	}
	return u
}

func (uc *QuotationUseCase) adminEmails() []string {
	admins, err := uc.userRepo.ListAdmins()
	if err != nil {
		uc.log.Warn().Err(err).Msg("fan-out: listado de admins")
		return nil
	}
	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		emails = append(emails, a.Email)
	}
	return emails
}

func (uc *QuotationUseCase) projectLink(id string) string {
	return fmt.Sprintf("%s/quotations/%s", uc.frontendURL, id)
}
