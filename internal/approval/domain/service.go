package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	"gorm.io/gorm"
)

// Decision is the verdict an approver records on their level.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

type DecisionRequest struct {
	ClaimID    string
	ApproverID snowflake.ID
	Decision   Decision
	Comments   string
}

type DecisionResult struct {
	Approval    ExpenseApproval         `json:"approval"`
	ClaimStatus claimdomain.ClaimStatus `json:"claim_status"`
}

type Service interface {
	// ResolveApprovers walks the employee's manager chain and backfills from
	// the back-office pool, returning at most requiredLevels approvers.
	ResolveApprovers(ctx context.Context, employeeID snowflake.ID, requiredLevels int) ([]snowflake.ID, error)

	// SetupChain resolves approvers and creates one PENDING record per level
	// on the given handle, so callers can keep it atomic with claim creation.
	SetupChain(ctx context.Context, db *gorm.DB, claimID, employeeID snowflake.ID, requiredLevels int) ([]snowflake.ID, error)

	RecordDecision(ctx context.Context, req DecisionRequest) (DecisionResult, error)
	ListForClaim(ctx context.Context, claimID string) ([]ExpenseApproval, error)
	ListPendingForApprover(ctx context.Context, approverID snowflake.ID) ([]ExpenseApproval, error)

	// DeleteForClaim removes a claim's approval records; used when a
	// generated claim is regenerated.
	DeleteForClaim(ctx context.Context, db *gorm.DB, claimID snowflake.ID) error
}

// ApproverPool supplies fallback approvers when a reporting chain is shorter
// than the required depth. Injected so the core carries no role taxonomy.
type ApproverPool interface {
	BackOfficeApprovers(ctx context.Context, exclude []snowflake.ID, limit int) ([]snowflake.ID, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidDecision     = errors.New("invalid_decision")
	ErrEmployeeNotFound    = errors.New("employee_not_found")
	ErrClaimNotFound       = errors.New("claim_not_found")
	ErrClaimNotPending     = errors.New("claim_not_pending")
	ErrNoPendingApproval   = errors.New("no_pending_approval_for_approver")
	ErrNoEligibleApprovers = errors.New("no_eligible_approvers")
)
