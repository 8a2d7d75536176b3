// Package domain contains persistence models for expense claims.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ClaimStatus represents claim lifecycle states.
type ClaimStatus string

const (
	ClaimStatusPending    ClaimStatus = "PENDING"
	ClaimStatusApproved   ClaimStatus = "APPROVED"
	ClaimStatusRejected   ClaimStatus = "REJECTED"
	ClaimStatusReimbursed ClaimStatus = "REIMBURSED"
	ClaimStatusCancelled  ClaimStatus = "CANCELLED"
)

// ExpenseClaim is one submitted expense. Reimbursement fields are set only
// when the claim joins a batch; ReimbursedAt is non-null iff status is
// REIMBURSED and a claim belongs to at most one batch.
type ExpenseClaim struct {
	ID              snowflake.ID     `gorm:"primaryKey"`
	EmployeeID      snowflake.ID     `gorm:"not null;index"`
	CategoryID      snowflake.ID     `gorm:"not null;index"`
	Amount          decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	Currency        string           `gorm:"type:text;not null;default:'INR'"`
	Description     string           `gorm:"type:text"`
	ExpenseDate     time.Time        `gorm:"not null;index"`
	Status          ClaimStatus      `gorm:"type:text;not null;default:'PENDING';index"`
	IsReimbursable  bool             `gorm:"not null;default:true"`
	IsPetrolExpense bool             `gorm:"not null;default:false"`
	HasReceipt      bool             `gorm:"not null;default:false"`
	HasGPSLocation  bool             `gorm:"not null;default:false"`
	DistanceTraveled *decimal.Decimal `gorm:"type:decimal(20,4)"`

	ReimbursedAt         *time.Time
	ReimbursedBy         *snowflake.ID
	ReimbursementAmount  *decimal.Decimal `gorm:"type:decimal(20,4)"`
	ReimbursementBatchID *snowflake.ID    `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (ExpenseClaim) TableName() string { return "expense_claims" }
