package mailer

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/kurdforest/pkg/retryx"
	"github.com/samber/oops"
	"github.com/wneessen/go-mail"
)

// SMTPConfig addresses an authenticated SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends mail through a relay, retrying transient failures.
type SMTP struct {
	Config SMTPConfig
	Retry  retryx.Policy

	client *mail.Client
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, oops.Code("SMTP_CLIENT_INIT_FAILED").With("host", cfg.Host).Wrap(err)
	}
	return &SMTP{Config: cfg, Retry: retryx.Default, client: client}, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	// 1. Build the message; address errors are permanent
	m := mail.NewMsg()
	if err := m.From(s.Config.From); err != nil {
		return oops.Code("SMTP_BAD_SENDER").With("from", s.Config.From).Wrap(err)
	}
	if err := m.To(msg.To); err != nil {
		return oops.Code("SMTP_BAD_RECIPIENT").With("to", msg.To).Wrap(err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	// 2. Deliver with bounded retry
	err := retryx.Do(ctx, s.Retry, func(ctx context.Context) error {
		err := s.client.DialAndSendWithContext(ctx, m)
		if err == nil {
			return nil
		}
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) && !sendErr.IsTemp() {
			return err
		}
		return retryx.Transient(err)
	})
	if err != nil {
		return oops.Code("SMTP_SEND_FAILED").With("host", s.Config.Host).Wrap(err)
	}
	return nil
}
