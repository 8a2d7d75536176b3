package employee

import (
	approvaldomain "github.com/zenithhr/expensio/internal/approval/domain"
	"github.com/zenithhr/expensio/internal/employee/domain"
	"github.com/zenithhr/expensio/internal/employee/repository"
	"github.com/zenithhr/expensio/internal/employee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) approvaldomain.ApproverPool {
		return svc.(*service.Service)
	}),
)
