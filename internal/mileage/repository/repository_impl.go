package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/zenithhr/expensio/internal/mileage/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertDistanceLog(ctx context.Context, db *gorm.DB, log *domain.DistanceLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) SumDistance(ctx context.Context, db *gorm.DB, employeeID snowflake.ID, from, to time.Time) (decimal.Decimal, error) {
	var total struct {
		Total decimal.Decimal
	}
	err := db.WithContext(ctx).
		Model(&domain.DistanceLog{}).
		Select("COALESCE(SUM(distance_km), 0) AS total").
		Where("employee_id = ?", employeeID).
		Where("log_date >= ? AND log_date < ?", from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total.Total, nil
}

func (r *repo) InsertMonthly(ctx context.Context, db *gorm.DB, monthly *domain.MonthlyPetrolExpense) error {
	return db.WithContext(ctx).Create(monthly).Error
}

func (r *repo) FindMonthly(ctx context.Context, db *gorm.DB, employeeID snowflake.ID, month, year int) (*domain.MonthlyPetrolExpense, error) {
	var monthly domain.MonthlyPetrolExpense
	err := db.WithContext(ctx).
		Where("employee_id = ? AND month = ? AND year = ?", employeeID, month, year).
		Take(&monthly).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &monthly, nil
}

func (r *repo) LinkClaim(ctx context.Context, db *gorm.DB, monthlyID, claimID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.MonthlyPetrolExpense{}).
		Where("id = ?", monthlyID).
		Update("claim_id", claimID).Error
}

func (r *repo) DeleteMonthly(ctx context.Context, db *gorm.DB, monthlyID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ?", monthlyID).
		Delete(&domain.MonthlyPetrolExpense{}).Error
}

func (r *repo) InsertRateConfig(ctx context.Context, db *gorm.DB, config *domain.PetrolExpenseConfig) error {
	return db.WithContext(ctx).Create(config).Error
}

func (r *repo) FindCurrentRate(ctx context.Context, db *gorm.DB, at time.Time) (*domain.PetrolExpenseConfig, error) {
	var config domain.PetrolExpenseConfig
	err := db.WithContext(ctx).
		Where("effective_from <= ?", at).
		Where("effective_to IS NULL OR effective_to > ?", at).
		Order("effective_from desc").
		Limit(1).
		Take(&config).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}
