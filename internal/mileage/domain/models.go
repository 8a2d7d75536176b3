// Package domain contains persistence models for mileage claim generation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DistanceLog is one day of raw distance telemetry for an employee.
type DistanceLog struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	EmployeeID snowflake.ID    `gorm:"not null;index:idx_distance_employee_date"`
	LogDate    time.Time       `gorm:"not null;index:idx_distance_employee_date"`
	DistanceKM decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName sets the database table name.
func (DistanceLog) TableName() string { return "distance_logs" }

// MonthlyPetrolExpense aggregates one employee-month of telemetry. The
// unique index is the generator's idempotency key.
type MonthlyPetrolExpense struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	EmployeeID    snowflake.ID    `gorm:"not null;uniqueIndex:ux_monthly_petrol"`
	Month         int             `gorm:"not null;uniqueIndex:ux_monthly_petrol"`
	Year          int             `gorm:"not null;uniqueIndex:ux_monthly_petrol"`
	TotalDistance decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	RatePerKM     decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	ClaimID       *snowflake.ID   `gorm:"index"`
	GeneratedAt   time.Time       `gorm:"not null"`
}

// TableName sets the database table name.
func (MonthlyPetrolExpense) TableName() string { return "monthly_petrol_expenses" }

// PetrolExpenseConfig is an effective-dated mileage rate. Exactly one row is
// current for any instant; the most recently started window wins.
type PetrolExpenseConfig struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	RatePerKM     decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	EffectiveFrom time.Time       `gorm:"not null;index"`
	EffectiveTo   *time.Time
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (PetrolExpenseConfig) TableName() string { return "petrol_expense_configs" }
