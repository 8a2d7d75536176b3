// Package domain contains persistence models for claim approval chains.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ApprovalStatus represents one approver's decision state.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// ExpenseApproval is one level of a claim's approval chain. Levels are
// created together but may be decided in any order.
type ExpenseApproval struct {
	ID         snowflake.ID   `gorm:"primaryKey"`
	ClaimID    snowflake.ID   `gorm:"not null;index;uniqueIndex:ux_approval_claim_level"`
	Level      int            `gorm:"not null;uniqueIndex:ux_approval_claim_level"`
	ApproverID snowflake.ID   `gorm:"not null;index"`
	Status     ApprovalStatus `gorm:"type:text;not null;default:'PENDING'"`
	Comments   string         `gorm:"type:text"`
	ActionedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (ExpenseApproval) TableName() string { return "expense_approvals" }
