package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/config"
	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

// Message is one outgoing HTML email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers a message through some transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer builds the transport named by cfg.Transport. It returns a nil
// Mailer when no transport is configured.
func NewMailer(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Transport {
	case "":
		return nil, nil
	case config.MailTransportSMTP:
		return NewSMTPMailer(cfg), nil
	case config.MailTransportResend:
		return NewResendMailer(cfg.ResendAPIKey, cfg.ResendURL, nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrMailNotConfigured, cfg.Transport)
	}
}

// SMTPMailer sends through an SMTP relay. A client is dialed per message.
type SMTPMailer struct {
	host    string
	options []mail.Option
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	options := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.SMTPUsername != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	return &SMTPMailer{host: cfg.SMTPHost, options: options}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewMsg()
	if err := email.From(msg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := email.To(msg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextHTML, msg.HTML)

	client, err := mail.NewClient(m.host, m.options...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("%w: smtp: %v", errs.ErrMailDelivery, err)
	}
	return nil
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	apiKey string
	url    string
	client *http.Client
}

// NewResendMailer uses a client with a 15s timeout when client is nil.
func NewResendMailer(apiKey, url string, client *http.Client) *ResendMailer {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &ResendMailer{apiKey: apiKey, url: url, client: client}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	// Build the Resend API payload
	payload := ResendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	// Marshal payload to JSON
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send request to Resend API: %v", errs.ErrMailDelivery, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("%w: resend API error (status %d): %s", errs.ErrMailDelivery, resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("%w: resend API error (status %d): %s", errs.ErrMailDelivery, resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}
