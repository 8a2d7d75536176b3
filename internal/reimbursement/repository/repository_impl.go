package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/reimbursement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, batch *domain.ReimbursementBatch) error {
	return db.WithContext(ctx).Create(batch).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ReimbursementBatch, error) {
	var batch domain.ReimbursementBatch
	if err := db.WithContext(ctx).Where("id = ?", id).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *repo) UpdateStatusIfProcessing(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.BatchStatus) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.ReimbursementBatch{}).
		Where("id = ? AND status = ?", id, domain.BatchStatusProcessing).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
