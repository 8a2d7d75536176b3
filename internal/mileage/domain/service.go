package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// GenerateOutcome describes what a single generation attempt did.
type GenerateOutcome string

const (
	OutcomeGenerated         GenerateOutcome = "GENERATED"
	OutcomeSkippedExists     GenerateOutcome = "SKIPPED_EXISTS"
	OutcomeSkippedNoDistance GenerateOutcome = "SKIPPED_NO_DISTANCE"
)

type AddDistanceLogRequest struct {
	EmployeeID string
	LogDate    time.Time
	DistanceKM decimal.Decimal
}

type GenerateRequest struct {
	EmployeeID      string
	Month           int
	Year            int
	ForceRegenerate bool
}

type GenerateResult struct {
	Outcome GenerateOutcome       `json:"outcome"`
	Monthly *MonthlyPetrolExpense `json:"monthly,omitempty"`
}

type BatchGenerateRequest struct {
	EmployeeIDs     []string
	Month           int
	Year            int
	ForceRegenerate bool
}

// BatchGenerateResult accumulates per-employee outcomes; one employee's
// failure never aborts the rest of the batch.
type BatchGenerateResult struct {
	Generated int         `json:"generated"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors,omitempty"`
}

type ItemError struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type CreateRateConfigRequest struct {
	RatePerKM     decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

type Service interface {
	AddDistanceLog(ctx context.Context, req AddDistanceLogRequest) (DistanceLog, error)
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	GenerateForEmployees(ctx context.Context, req BatchGenerateRequest) (BatchGenerateResult, error)
	CreateRateConfig(ctx context.Context, req CreateRateConfigRequest) (PetrolExpenseConfig, error)
	CurrentRate(ctx context.Context) (PetrolExpenseConfig, error)
}

var (
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidMonth          = errors.New("invalid_month")
	ErrInvalidDistance       = errors.New("invalid_distance")
	ErrInvalidRate           = errors.New("invalid_rate")
	ErrInvalidEffectiveRange = errors.New("invalid_effective_range")
	ErrNoActiveRateConfig    = errors.New("no_active_rate_config")
	ErrPetrolCategoryMissing = errors.New("petrol_category_missing")
)
