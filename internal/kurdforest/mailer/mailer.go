// Package mailer delivers outbound email.
package mailer

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends a message or returns an error describing why it could not.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var verificationTmpl = template.Must(template.New("verification").Parse(`<div style="font-family: sans-serif; text-align: center; color: #333;">
  <h1 style="color: #007bff;">Welcome to {{.Site}}!</h1>
  <p>We're excited to have you on board. To complete your registration, please verify your email address using the code below.</p>
  <p style="font-size: 24px; font-weight: bold; color: #28a745;">{{.Code}}</p>
  <p>This code will expire in <strong>{{.Expiry}}</strong>.</p>
  <p>If you did not create an account, please disregard this email.</p>
  <hr>
  <p style="font-size: 0.8em; color: #666;">Thank you for joining us!</p>
</div>`))

// VerificationEmail builds the message carrying a sign-up code.
func VerificationEmail(to, code, site, expiry string) (Message, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, struct{ Site, Code, Expiry string }{site, code, expiry}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Welcome! Please Verify Your Email",
		HTML:    buf.String(),
	}, nil
}

// Log writes messages to the request logger instead of sending them. It is
// used when no SMTP relay is configured.
type Log struct{}

func (Log) Send(ctx context.Context, msg Message) error {
	slogx.FromContext(ctx).Info("email not sent, no smtp relay configured",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.HTML),
	)
	return nil
}
