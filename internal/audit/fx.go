package audit

import (
	"github.com/zenithhr/expensio/internal/audit/repository"
	"github.com/zenithhr/expensio/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
