// Package email holds the outbound mail senders used by the notification
// outbox.
package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/zenithhr/expensio/internal/notification/domain"
	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail over plain SMTP.
type SMTPSender struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (p *SMTPSender) Send(ctx context.Context, recipient, subject, body string) error {
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", recipient, subject, body))

	return smtp.SendMail(addr, auth, p.cfg.From, []string{recipient}, msg)
}

// NoOpSender logs instead of sending. Used when no SMTP host is configured,
// which keeps local development and tests free of mail infrastructure.
type NoOpSender struct {
	log *zap.Logger
}

func NewNoOp(log *zap.Logger) *NoOpSender {
	return &NoOpSender{log: log.Named("notification.noop")}
}

func (p *NoOpSender) Send(ctx context.Context, recipient, subject, body string) error {
	p.log.Info("notification suppressed",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}

var (
	_ domain.Sender = (*SMTPSender)(nil)
	_ domain.Sender = (*NoOpSender)(nil)
)
