package mileage

import (
	"github.com/zenithhr/expensio/internal/mileage/repository"
	"github.com/zenithhr/expensio/internal/mileage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mileage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
