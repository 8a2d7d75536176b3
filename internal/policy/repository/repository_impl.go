package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/policy/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertCategory(ctx context.Context, db *gorm.DB, category *domain.ExpenseCategory) error {
	return db.WithContext(ctx).Create(category).Error
}

func (r *repo) FindCategoryByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ExpenseCategory, error) {
	var category domain.ExpenseCategory
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *repo) FindCategoryByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ExpenseCategory, error) {
	var category domain.ExpenseCategory
	err := db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Take(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB) ([]domain.ExpenseCategory, error) {
	var categories []domain.ExpenseCategory
	err := db.WithContext(ctx).
		Order("code asc").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repo) InsertRule(ctx context.Context, db *gorm.DB, rule *domain.PolicyRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindRuleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PolicyRule, error) {
	var rule domain.PolicyRule
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&rule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) FindActiveRules(ctx context.Context, db *gorm.DB, categoryID snowflake.ID) ([]domain.PolicyRule, error) {
	var rules []domain.PolicyRule
	err := db.WithContext(ctx).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("id asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) ListRules(ctx context.Context, db *gorm.DB, categoryID snowflake.ID) ([]domain.PolicyRule, error) {
	var rules []domain.PolicyRule
	err := db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) UpdateRule(ctx context.Context, db *gorm.DB, rule *domain.PolicyRule) error {
	return db.WithContext(ctx).
		Model(&domain.PolicyRule{}).
		Where("id = ?", rule.ID).
		Updates(map[string]any{
			"rule_value": rule.RuleValue,
			"is_active":  rule.IsActive,
			"updated_at": rule.UpdatedAt,
		}).Error
}
