package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertAll(ctx context.Context, db *gorm.DB, approvals []*ExpenseApproval) error
	FindByClaimID(ctx context.Context, db *gorm.DB, claimID snowflake.ID) ([]ExpenseApproval, error)
	FindPendingByApprover(ctx context.Context, db *gorm.DB, approverID snowflake.ID) ([]ExpenseApproval, error)
	DeleteByClaimID(ctx context.Context, db *gorm.DB, claimID snowflake.ID) error

	// MarkDecision conditionally resolves the PENDING record for the approver
	// on the claim and reports whether the update won.
	MarkDecision(ctx context.Context, db *gorm.DB, claimID, approverID snowflake.ID, status ApprovalStatus, comments string, at time.Time) (bool, error)
}
