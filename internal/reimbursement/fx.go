package reimbursement

import (
	"github.com/zenithhr/expensio/internal/reimbursement/repository"
	"github.com/zenithhr/expensio/internal/reimbursement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reimbursement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
