package email

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/config"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/circuitbreaker"
)

type Service interface {
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// NewService returns an SMTP sender, or a logging sender when no host is configured
func NewService(cfg config.SMTPConfig, cb *circuitbreaker.CircuitBreaker, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		return &logSender{logger: logger, resetURL: cfg.ResetURL}
	}
	return &smtpSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		resetURL: cfg.ResetURL,
		cb:       cb,
		logger:   logger,
	}
}

type smtpSender struct {
	dialer   *gomail.Dialer
	from     string
	resetURL string
	cb       *circuitbreaker.CircuitBreaker
	logger   *zap.Logger
}

func (s *smtpSender) SendPasswordReset(ctx context.Context, to, name, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "MediLink password reset")
	m.SetBody("text/plain", resetBody(name, resetLink(s.resetURL, token)))

	err := s.cb.Execute(ctx, func(ctx context.Context) error {
		return s.dialer.DialAndSend(m)
	})
	if err != nil {
		s.logger.Error("failed to send password reset email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	s.logger.Info("password reset email sent", zap.String("to", to))
	return nil
}

type logSender struct {
	logger   *zap.Logger
	resetURL string
}

func (s *logSender) SendPasswordReset(_ context.Context, to, _, token string) error {
	s.logger.Info("smtp not configured, password reset link logged instead",
		zap.String("to", to),
		zap.String("link", resetLink(s.resetURL, token)))
	return nil
}

func resetLink(base, token string) string {
	if base == "" {
		return token
	}
	return base + "?token=" + url.QueryEscape(token)
}

func resetBody(name, link string) string {
	return fmt.Sprintf(`Hello %s,

A password reset was requested for your MediLink account.
Use the link below within 10 minutes to choose a new password:

%s

If you did not request this, you can ignore this message.
`, name, link)
}
