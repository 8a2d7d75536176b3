package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertCategory(ctx context.Context, db *gorm.DB, category *ExpenseCategory) error
	FindCategoryByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ExpenseCategory, error)
	FindCategoryByCode(ctx context.Context, db *gorm.DB, code string) (*ExpenseCategory, error)
	ListCategories(ctx context.Context, db *gorm.DB) ([]ExpenseCategory, error)

	InsertRule(ctx context.Context, db *gorm.DB, rule *PolicyRule) error
	FindRuleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PolicyRule, error)
	FindActiveRules(ctx context.Context, db *gorm.DB, categoryID snowflake.ID) ([]PolicyRule, error)
	ListRules(ctx context.Context, db *gorm.DB, categoryID snowflake.ID) ([]PolicyRule, error)
	UpdateRule(ctx context.Context, db *gorm.DB, rule *PolicyRule) error
}
