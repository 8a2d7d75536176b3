package policy

import (
	"github.com/zenithhr/expensio/internal/policy/repository"
	"github.com/zenithhr/expensio/internal/policy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("policy.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
