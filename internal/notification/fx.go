package notification

import (
	"github.com/zenithhr/expensio/internal/config"
	"github.com/zenithhr/expensio/internal/notification/domain"
	"github.com/zenithhr/expensio/internal/notification/email"
	"github.com/zenithhr/expensio/internal/notification/repository"
	"github.com/zenithhr/expensio/internal/notification/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(newSender),
	fx.Provide(service.New),
)

// newSender picks SMTP when a host is configured, otherwise a logging no-op.
func newSender(cfg config.Config, log *zap.Logger) domain.Sender {
	if cfg.SMTPHost == "" {
		return email.NewNoOp(log)
	}
	return email.NewSMTP(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}
