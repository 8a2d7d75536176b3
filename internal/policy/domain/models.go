// Package domain contains persistence models for expense policy administration.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ExpenseCategory groups claims and carries category-level policy defaults.
type ExpenseCategory struct {
	ID               snowflake.ID     `gorm:"primaryKey"`
	Name             string           `gorm:"type:text;not null"`
	Code             string           `gorm:"type:text;not null;uniqueIndex"`
	Currency         string           `gorm:"type:text;not null;default:'INR'"`
	MaxAmount        *decimal.Decimal `gorm:"type:decimal(20,4)"`
	RequiresReceipt  bool             `gorm:"not null;default:false"`
	RequiresApproval bool             `gorm:"not null;default:true"`
	ApprovalLevels   int              `gorm:"not null;default:1"`
	IsActive         bool             `gorm:"not null;default:true"`
	CreatedAt        time.Time        `gorm:"not null"`
	UpdatedAt        time.Time        `gorm:"not null"`
}

// TableName sets the database table name.
func (ExpenseCategory) TableName() string { return "expense_categories" }

// PolicyRule is one configurable rule owned by a category. RuleValue holds the
// typed payload for the rule's type; decode it with DecodeConfig.
type PolicyRule struct {
	ID         snowflake.ID   `gorm:"primaryKey"`
	CategoryID snowflake.ID   `gorm:"not null;index"`
	RuleType   RuleType       `gorm:"type:text;not null"`
	RuleValue  datatypes.JSON `gorm:"not null"`
	IsActive   bool           `gorm:"not null;default:true"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

// TableName sets the database table name.
func (PolicyRule) TableName() string { return "policy_rules" }

// DecodeConfig decodes the rule's payload into its typed variant.
func (r PolicyRule) DecodeConfig() (RuleConfig, error) {
	return DecodeRuleConfig(r.RuleType, r.RuleValue)
}
