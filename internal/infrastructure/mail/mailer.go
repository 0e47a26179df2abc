// Package mail envía los correos transaccionales del sistema vía SMTP
// (gomail) a partir de plantillas HTML embebidas en el binario.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"github.com/makerforge/quote3d-api/internal/application/ports"
	"github.com/makerforge/quote3d-api/pkg/config"
)

//go:embed templates/*.html
var templateFS embed.FS

var _ ports.Mailer = (*Mailer)(nil)

// Mailer adaptador SMTP del puerto ports.Mailer.
type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
}

// NewMailer construye el mailer con las plantillas embebidas.
func NewMailer(cfg config.SMTPConfig) (*Mailer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsear plantillas de email: %w", err)
	}
	return &Mailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:      cfg.From,
		templates: tpl,
	}, nil
}

// Send renderiza la plantilla indicada y envía el correo a los destinatarios.
func (m *Mailer) Send(to []string, subject, tplName string, data map[string]any) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, tplName+".html", data); err != nil {
		return fmt.Errorf("renderizar plantilla %s: %w", tplName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("enviar email: %w", err)
	}
	return nil
}
