package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	"github.com/zenithhr/expensio/pkg/db/pagination"
)

type SubmitClaimRequest struct {
	EmployeeID     snowflake.ID
	CategoryID     string
	Amount         decimal.Decimal
	Description    string
	ExpenseDate    time.Time
	HasReceipt     bool
	HasGPSLocation bool
	IsReimbursable *bool
}

type SubmitClaimResponse struct {
	Claim       ExpenseClaim                `json:"claim"`
	Warnings    []string                    `json:"warnings,omitempty"`
	ApproverIDs []snowflake.ID              `json:"approver_ids,omitempty"`
	Evaluation  policydomain.Evaluation     `json:"-"`
}

type ValidateClaimRequest struct {
	EmployeeID     snowflake.ID
	CategoryID     string
	Amount         decimal.Decimal
	ExpenseDate    time.Time
	HasReceipt     bool
	HasGPSLocation bool
}

type GetClaimRequest struct {
	ID string
}

type ListClaimsRequest struct {
	PageToken  string
	PageSize   int32
	EmployeeID string
	CategoryID string
	Status     ClaimStatus
}

type ListClaimsResponse struct {
	pagination.PageInfo
	Claims []ExpenseClaim `json:"claims"`
}

type CancelClaimRequest struct {
	ID      string
	ActorID snowflake.ID
}

type Service interface {
	Submit(ctx context.Context, req SubmitClaimRequest) (SubmitClaimResponse, error)
	Validate(ctx context.Context, req ValidateClaimRequest) (policydomain.Evaluation, error)
	GetByID(ctx context.Context, req GetClaimRequest) (ExpenseClaim, error)
	List(ctx context.Context, req ListClaimsRequest) (ListClaimsResponse, error)
	Cancel(ctx context.Context, req CancelClaimRequest) (ExpenseClaim, error)
}

// ValidationFailedError carries the specific rule violations that blocked a
// submission; it is surfaced to the caller, never silently coerced.
type ValidationFailedError struct {
	Violations []string
	Warnings   []string
}

func (e *ValidationFailedError) Error() string { return "claim_validation_failed" }

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidDate     = errors.New("invalid_expense_date")
	ErrNotFound        = errors.New("not_found")
	ErrClaimNotPending = errors.New("claim_not_pending")
	ErrInvalidStatus   = errors.New("invalid_status")
)
