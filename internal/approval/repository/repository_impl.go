package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/approval/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertAll(ctx context.Context, db *gorm.DB, approvals []*domain.ExpenseApproval) error {
	if len(approvals) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(approvals).Error
}

func (r *repo) FindByClaimID(ctx context.Context, db *gorm.DB, claimID snowflake.ID) ([]domain.ExpenseApproval, error) {
	var approvals []domain.ExpenseApproval
	err := db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("level asc").
		Find(&approvals).Error
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *repo) FindPendingByApprover(ctx context.Context, db *gorm.DB, approverID snowflake.ID) ([]domain.ExpenseApproval, error) {
	var approvals []domain.ExpenseApproval
	err := db.WithContext(ctx).
		Where("approver_id = ? AND status = ?", approverID, domain.ApprovalStatusPending).
		Order("created_at asc, level asc").
		Find(&approvals).Error
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *repo) DeleteByClaimID(ctx context.Context, db *gorm.DB, claimID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Delete(&domain.ExpenseApproval{}).Error
}

func (r *repo) MarkDecision(ctx context.Context, db *gorm.DB, claimID, approverID snowflake.ID, status domain.ApprovalStatus, comments string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.ExpenseApproval{}).
		Where("claim_id = ? AND approver_id = ? AND status = ?", claimID, approverID, domain.ApprovalStatusPending).
		Updates(map[string]any{
			"status":      status,
			"comments":    comments,
			"actioned_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
