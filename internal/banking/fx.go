package banking

import (
	"github.com/zenithhr/expensio/internal/banking/domain"
	"github.com/zenithhr/expensio/internal/banking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("banking.service",
	fx.Provide(func() domain.PaymentProcessor { return service.NewSimulatedProcessor() }),
	fx.Provide(service.New),
)
