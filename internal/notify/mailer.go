package notify

import (
	"context"

	"github.com/sangrahhq/sangrah/pkg/slogx"
)

// Mailer delivers account notifications. Delivery is best-effort from the
// caller's perspective: the auth flow logs failures and carries on, so
// implementations should not be relied on for correctness.
type Mailer interface {
	// SendOTP delivers a one-time code to the given address.
	SendOTP(ctx context.Context, to, name, code string) error

	// SendWelcome delivers a welcome message after first verification.
	SendWelcome(ctx context.Context, to, name string) error
}

// LogMailer is the fallback when SMTP is unconfigured: it logs instead of
// delivering, which keeps local development working without a mail server.
type LogMailer struct{}

func (LogMailer) SendOTP(ctx context.Context, to, name, code string) error {
	slogx.FromContext(ctx).Info("mail delivery disabled, logging OTP",
		"to", to,
		"code", code,
	)
	return nil
}

func (LogMailer) SendWelcome(ctx context.Context, to, name string) error {
	slogx.FromContext(ctx).Info("mail delivery disabled, skipping welcome mail",
		"to", to,
	)
	return nil
}
