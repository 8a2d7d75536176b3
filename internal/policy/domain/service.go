package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EvaluateRequest carries the claim facts the evaluator judges.
type EvaluateRequest struct {
	CategoryID     snowflake.ID
	EmployeeID     snowflake.ID
	Amount         decimal.Decimal
	ExpenseDate    time.Time
	HasReceipt     bool
	HasGPSLocation bool
}

// Evaluation is the outcome of running category checks and active rules
// against one claim. Warnings never block submission; violations do.
type Evaluation struct {
	IsValid                bool     `json:"is_valid"`
	Violations             []string `json:"violations"`
	Warnings               []string `json:"warnings"`
	RequiresApproval       bool     `json:"requires_approval"`
	RequiredApprovalLevels int      `json:"required_approval_levels"`

	Category *ExpenseCategory `json:"-"`
}

type CreateCategoryRequest struct {
	Name             string
	Code             string
	Currency         string
	MaxAmount        *decimal.Decimal
	RequiresReceipt  bool
	RequiresApproval bool
	ApprovalLevels   int
}

type CreateRuleRequest struct {
	CategoryID string
	RuleType   RuleType
	RuleValue  []byte
}

type UpdateRuleRequest struct {
	RuleID    string
	RuleValue []byte
	IsActive  *bool
}

type Service interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (Evaluation, error)

	CreateCategory(ctx context.Context, req CreateCategoryRequest) (ExpenseCategory, error)
	ListCategories(ctx context.Context) ([]ExpenseCategory, error)
	CreateRule(ctx context.Context, req CreateRuleRequest) (PolicyRule, error)
	ListRules(ctx context.Context, categoryID string) ([]PolicyRule, error)
	UpdateRule(ctx context.Context, req UpdateRuleRequest) (PolicyRule, error)
}

// ClaimCounter reports how many live (non-cancelled) claims an employee has
// in a category within a window. Implemented by the claim repository.
type ClaimCounter interface {
	CountActiveClaims(ctx context.Context, db *gorm.DB, employeeID, categoryID snowflake.ID, from, to time.Time) (int64, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidCode       = errors.New("invalid_code")
	ErrInvalidLevels     = errors.New("invalid_approval_levels")
	ErrInvalidRuleConfig = errors.New("invalid_rule_config")
	ErrCategoryNotFound  = errors.New("category_not_found")
	ErrRuleNotFound      = errors.New("rule_not_found")
	ErrDuplicateCode     = errors.New("duplicate_category_code")
)
