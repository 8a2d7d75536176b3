package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	EmployeeID snowflake.ID
	CategoryID snowflake.ID
	Status     ClaimStatus
	Cursor     *ListCursor
	Limit      int
}

type ListCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, claim *ExpenseClaim) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ExpenseClaim, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*ExpenseClaim, error)
	DeleteByID(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// UpdateStatusIfPending flips a PENDING claim to status and reports whether
	// the conditional update won; callers use the result to serialize
	// concurrent transitions on the same claim.
	UpdateStatusIfPending(ctx context.Context, db *gorm.DB, id snowflake.ID, status ClaimStatus) (bool, error)

	// CountActiveClaims counts non-cancelled claims in [from, to) for
	// frequency-limit evaluation. Rejected claims count by policy.
	CountActiveClaims(ctx context.Context, db *gorm.DB, employeeID, categoryID snowflake.ID, from, to time.Time) (int64, error)

	// FindEligibleForReimbursement returns the subset of ids that are
	// APPROVED, reimbursable and not yet linked to a batch.
	FindEligibleForReimbursement(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*ExpenseClaim, error)

	// MarkReimbursed conditionally flips claims to REIMBURSED, asserting
	// reimbursed_at IS NULL, and returns the number of rows updated.
	MarkReimbursed(ctx context.Context, db *gorm.DB, ids []snowflake.ID, batchID, actorID snowflake.ID, at time.Time) (int64, error)

	FindByBatchID(ctx context.Context, db *gorm.DB, batchID snowflake.ID) ([]*ExpenseClaim, error)
}
