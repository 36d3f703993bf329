package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the connection parameters for the mail provider.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // sender address for all outgoing mail
	BaseURL  string // public base URL used in message bodies
}

// SMTPMailer sends OTP and welcome mail over SMTP.
type SMTPMailer struct {
	cfg    SMTPConfig
	client *mail.Client
}

// NewSMTPMailer builds a mailer from the given config. The connection is
// dialed per send, not held open.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}

	return &SMTPMailer{cfg: cfg, client: client}, nil
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, code string) error {
	body := fmt.Sprintf(
		"Namaste %s,\n\n"+
			"Your Sangrah verification code is %s.\n"+
			"It expires in 10 minutes. If you did not request this code, ignore this mail.\n\n"+
			"%s\n",
		name, code, m.cfg.BaseURL,
	)
	return m.send(ctx, to, "Your Sangrah verification code", body)
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(
		"Namaste %s,\n\n"+
			"Your Sangrah account has been verified. You can now sign in at %s.\n",
		name, m.cfg.BaseURL,
	)
	return m.send(ctx, to, "Welcome to Sangrah", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("notify: to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}
