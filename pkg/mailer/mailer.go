package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/config"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/logger"
)

// Sender delivers transactional mail. Services depend on this so tests can
// swap in a recorder.
type Sender interface {
	SendOTP(ctx context.Context, to, code string) error
}

// Mailer sends transactional email through SendGrid.
type Mailer struct {
	client *sendgrid.Client
	from   string
	logg   *logger.Logger
}

// New constructs a SendGrid-backed mailer.
func New(cfg config.SendgridConfig, logg *logger.Logger) (*Mailer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, errors.New("sendgrid from address is required")
	}
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		logg:   logg,
	}, nil
}

// SendOTP delivers the verification code for a pending registration.
func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	if to == "" {
		return errors.New("recipient is required")
	}
	if code == "" {
		return errors.New("code is required")
	}

	from := mail.NewEmail("Amart Fashions", m.from)
	recipient := mail.NewEmail("", to)
	subject := "Your Amart verification code"
	plain := fmt.Sprintf("Your verification code is %s. It expires in one minute.", code)
	html := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires in one minute.</p>", code)

	message := mail.NewSingleEmail(from, subject, recipient, plain, html)
	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sending otp email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded with status %d", resp.StatusCode)
	}

	if m.logg != nil {
		m.logg.Info(m.logg.WithField(ctx, "recipient", to), "otp email dispatched")
	}
	return nil
}
