package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	InsertDistanceLog(ctx context.Context, db *gorm.DB, log *DistanceLog) error
	SumDistance(ctx context.Context, db *gorm.DB, employeeID snowflake.ID, from, to time.Time) (decimal.Decimal, error)

	InsertMonthly(ctx context.Context, db *gorm.DB, monthly *MonthlyPetrolExpense) error
	FindMonthly(ctx context.Context, db *gorm.DB, employeeID snowflake.ID, month, year int) (*MonthlyPetrolExpense, error)
	LinkClaim(ctx context.Context, db *gorm.DB, monthlyID, claimID snowflake.ID) error
	DeleteMonthly(ctx context.Context, db *gorm.DB, monthlyID snowflake.ID) error

	InsertRateConfig(ctx context.Context, db *gorm.DB, config *PetrolExpenseConfig) error
	FindCurrentRate(ctx context.Context, db *gorm.DB, at time.Time) (*PetrolExpenseConfig, error)
}
