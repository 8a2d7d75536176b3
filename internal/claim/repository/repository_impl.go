package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/claim/domain"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// ProvideCounter exposes the claim table as the frequency-limit counter the
// policy evaluator depends on.
func ProvideCounter(r domain.Repository) policydomain.ClaimCounter {
	return r.(*repo)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, claim *domain.ExpenseClaim) error {
	return db.WithContext(ctx).Create(claim).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ExpenseClaim, error) {
	var claim domain.ExpenseClaim
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&claim).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.ExpenseClaim, error) {
	stmt := db.WithContext(ctx).Model(&domain.ExpenseClaim{})
	if filter.EmployeeID != 0 {
		stmt = stmt.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.CategoryID != 0 {
		stmt = stmt.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	var claims []*domain.ExpenseClaim
	err := stmt.
		Order("created_at desc, id desc").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *repo) DeleteByID(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.ExpenseClaim{}).Error
}

func (r *repo) UpdateStatusIfPending(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.ClaimStatus) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.ExpenseClaim{}).
		Where("id = ? AND status = ?", id, domain.ClaimStatusPending).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) CountActiveClaims(ctx context.Context, db *gorm.DB, employeeID, categoryID snowflake.ID, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ExpenseClaim{}).
		Where("employee_id = ? AND category_id = ?", employeeID, categoryID).
		Where("expense_date >= ? AND expense_date < ?", from, to).
		Where("status <> ?", domain.ClaimStatusCancelled).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) FindEligibleForReimbursement(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*domain.ExpenseClaim, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var claims []*domain.ExpenseClaim
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("status = ?", domain.ClaimStatusApproved).
		Where("is_reimbursable = ?", true).
		Where("reimbursed_at IS NULL").
		Order("id asc").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *repo) MarkReimbursed(ctx context.Context, db *gorm.DB, ids []snowflake.ID, batchID, actorID snowflake.ID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.ExpenseClaim{}).
		Where("id IN ?", ids).
		Where("status = ?", domain.ClaimStatusApproved).
		Where("reimbursed_at IS NULL").
		Updates(map[string]any{
			"status":                 domain.ClaimStatusReimbursed,
			"reimbursed_at":          at,
			"reimbursed_by":          actorID,
			"reimbursement_amount":   gorm.Expr("amount"),
			"reimbursement_batch_id": batchID,
			"updated_at":             at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) FindByBatchID(ctx context.Context, db *gorm.DB, batchID snowflake.ID) ([]*domain.ExpenseClaim, error) {
	var claims []*domain.ExpenseClaim
	err := db.WithContext(ctx).
		Where("reimbursement_batch_id = ?", batchID).
		Order("id asc").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}
