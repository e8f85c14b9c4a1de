package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/resend/resend-go/v2"
)

type Sender interface {
	Send(ctx context.Context, m domain.Mail) error
}

const (
	ProviderLog    = "log"
	ProviderResend = "resend"
	ProviderSES    = "ses"
)

type Config struct {
	Provider       string
	ResendAPIKey   string
	AWSRegion      string
	AWSAccessKeyID string
	AWSSecretKey   string
}

// LogSender logs emails instead of sending them. Used with MAIL_PROVIDER=log.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "log_sender")}
}

func (s *LogSender) Send(ctx context.Context, m domain.Mail) error {
	s.logger.InfoContext(ctx, "email (local dev)", "from", m.From, "to", m.To, "subject", m.Subject, "body", m.Body)
	return nil
}

// ResendSender sends plain-text emails via the Resend API.
type ResendSender struct {
	client *resend.Client
}

func (s *ResendSender) Send(ctx context.Context, m domain.Mail) error {
	params := &resend.SendEmailRequest{
		From:    m.From,
		To:      []string{m.To},
		Subject: m.Subject,
		Text:    m.Body,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender picks the provider named in cfg.
func NewSender(ctx context.Context, cfg Config, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case "", ProviderLog:
		return NewLogSender(logger), nil
	case ProviderResend:
		return &ResendSender{client: resend.NewClient(cfg.ResendAPIKey)}, nil
	case ProviderSES:
		return NewSESSender(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
