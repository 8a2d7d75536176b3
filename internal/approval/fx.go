package approval

import (
	"github.com/zenithhr/expensio/internal/approval/repository"
	"github.com/zenithhr/expensio/internal/approval/service"
	"go.uber.org/fx"
)

var Module = fx.Module("approval.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
