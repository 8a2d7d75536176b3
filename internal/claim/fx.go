package claim

import (
	"github.com/zenithhr/expensio/internal/claim/repository"
	"github.com/zenithhr/expensio/internal/claim/service"
	"go.uber.org/fx"
)

var Module = fx.Module("claim.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideCounter),
	fx.Provide(service.New),
)
