package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/config"
	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/davidzaratecamp/paginacarebackend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Kind names a notification template.
type Kind string

const (
	KindNewContact Kind = "new_contact"
	KindNewReview  Kind = "new_review"
)

const sendTimeout = 30 * time.Second

type notificationTemplate struct {
	subject func(data any) string
	body    *template.Template
}

var templateFuncs = template.FuncMap{
	"stars": func(rating int) string {
		if rating < 0 {
			rating = 0
		}
		if rating > 5 {
			rating = 5
		}
		return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
	},
	"fecha": func(t time.Time) string {
		return t.Format("02/01/2006 15:04")
	},
}

var notificationTemplates = map[Kind]notificationTemplate{
	KindNewContact: {
		subject: func(data any) string {
			if c, ok := data.(models.Contact); ok {
				return "Nuevo contacto desde la web: " + c.Name
			}
			return "Nuevo contacto desde la web"
		},
		body: template.Must(template.New(string(KindNewContact)).Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="es">
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #0d6efd;">Nueva solicitud de contacto</h2>
  <p>Se ha recibido un nuevo formulario de contacto en {{.Site}}.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Nombre:</strong></td><td>{{.Data.Name}}</td></tr>
    <tr><td><strong>Teléfono:</strong></td><td>{{.Data.Phone}}</td></tr>
    <tr><td><strong>Correo electrónico:</strong></td><td>{{.Data.Email}}</td></tr>
    <tr><td><strong>Código postal:</strong></td><td>{{.Data.PostalCode}}</td></tr>
    <tr><td><strong>Fecha:</strong></td><td>{{fecha .Data.CreatedAt}}</td></tr>
  </table>
  <p style="font-size: 12px; color: #888;">Este mensaje se ha generado automáticamente.</p>
</body>
</html>`)),
	},
	KindNewReview: {
		subject: func(data any) string {
			if r, ok := data.(models.Review); ok {
				return fmt.Sprintf("Nueva reseña pendiente de aprobación (%d/5)", r.Rating)
			}
			return "Nueva reseña pendiente de aprobación"
		},
		body: template.Must(template.New(string(KindNewReview)).Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="es">
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #0d6efd;">Nueva reseña recibida</h2>
  <p>Un cliente ha dejado una reseña en {{.Site}}. Revísala en el panel de administración para aprobarla.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Nombre:</strong></td><td>{{.Data.Name}}</td></tr>
    <tr><td><strong>Correo electrónico:</strong></td><td>{{.Data.Email}}</td></tr>
    <tr><td><strong>Valoración:</strong></td><td>{{stars .Data.Rating}} ({{.Data.Rating}}/5)</td></tr>
    <tr><td><strong>Comentario:</strong></td><td>{{.Data.Comment}}</td></tr>
    <tr><td><strong>Fecha:</strong></td><td>{{fecha .Data.CreatedAt}}</td></tr>
  </table>
  <p style="font-size: 12px; color: #888;">Este mensaje se ha generado automáticamente.</p>
</body>
</html>`)),
	},
}

// Notifier sends admin notification emails in the background. Delivery
// problems are logged and never reach the caller.
type Notifier struct {
	mailer   Mailer
	from     string
	to       []string
	siteName string
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

// NewNotifier accepts a nil mailer; every Notify is then skipped.
func NewNotifier(mailer Mailer, cfg config.MailConfig) *Notifier {
	return &Notifier{
		mailer:   mailer,
		from:     cfg.From,
		to:       cfg.To,
		siteName: cfg.SiteName,
		logger:   log.With().Str("service", "notifier").Logger(),
	}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.mailer != nil && n.from != "" && len(n.to) > 0
}

// Notify renders the template for kind and sends it asynchronously.
func (n *Notifier) Notify(kind Kind, data any) {
	if !n.enabled() {
		log.Debug().Str("kind", string(kind)).Msg("mail transport not configured, skipping notification")
		return
	}

	msg, err := n.render(kind, data)
	if err != nil {
		n.logger.Error().Err(err).Str("kind", string(kind)).Msg("failed to render notification")
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error().Interface("panic", r).Str("kind", string(kind)).Msg("notification send panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.mailer.Send(ctx, msg); err != nil {
			n.logger.Error().Err(err).Str("kind", string(kind)).Msg("failed to send notification")
			return
		}
		n.logger.Info().Str("kind", string(kind)).Strs("to", n.to).Msg("notification sent")
	}()
}

func (n *Notifier) render(kind Kind, data any) (Message, error) {
	tmpl, ok := notificationTemplates[kind]
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", errs.ErrUnknownTemplate, kind)
	}

	var body bytes.Buffer
	err := tmpl.body.Execute(&body, struct {
		Site string
		Data any
	}{Site: n.siteName, Data: data})
	if err != nil {
		return Message{}, fmt.Errorf("render %s: %w", kind, err)
	}

	return Message{
		From:    n.from,
		To:      n.to,
		Subject: tmpl.subject(data),
		HTML:    body.String(),
	}, nil
}

// Wait blocks until in-flight sends finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
