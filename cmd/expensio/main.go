package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/approval"
	"github.com/zenithhr/expensio/internal/audit"
	"github.com/zenithhr/expensio/internal/banking"
	"github.com/zenithhr/expensio/internal/claim"
	"github.com/zenithhr/expensio/internal/clock"
	"github.com/zenithhr/expensio/internal/config"
	"github.com/zenithhr/expensio/internal/employee"
	"github.com/zenithhr/expensio/internal/logger"
	"github.com/zenithhr/expensio/internal/metrics"
	"github.com/zenithhr/expensio/internal/migration"
	"github.com/zenithhr/expensio/internal/mileage"
	"github.com/zenithhr/expensio/internal/notification"
	"github.com/zenithhr/expensio/internal/policy"
	"github.com/zenithhr/expensio/internal/reimbursement"
	"github.com/zenithhr/expensio/internal/server"
	"github.com/zenithhr/expensio/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		migration.Module,

		// Functional domains
		employee.Module,
		policy.Module,
		claim.Module,
		approval.Module,
		mileage.Module,
		reimbursement.Module,
		banking.Module,
		notification.Module,
		audit.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		panic(err)
	}
	return node
}
