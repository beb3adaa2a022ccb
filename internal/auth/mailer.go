package auth

import (
	"context"
	"log/slog"
)

// LogMailer writes outgoing mail to the log. Used until an SMTP relay is set up.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	slog.Info("mail", "to", to, "subject", subject, "body", body)
	return nil
}
