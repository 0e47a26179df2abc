// Package ports declara los puertos hacia colaboradores externos que los
// casos de uso reciben inyectados (DIP): correo saliente y push en tiempo
// real. Las implementaciones viven en internal/infrastructure.
package ports

// Mailer envía un correo HTML renderizando la plantilla indicada.
// Los envíos de notificación son best-effort: el llamador registra el error
// y no lo propaga; el único envío obligatorio es el de verificación.
type Mailer interface {
	Send(to []string, subject, template string, data map[string]any) error
}

// Publisher push en tiempo real. Publish emite a la sala del usuario;
// Broadcast a todos los conectados. Ambos son fire-and-forget.
type Publisher interface {
	Publish(userID, event string, payload any)
	Broadcast(event string, payload any)
}
