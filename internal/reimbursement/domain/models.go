// Package domain contains the reimbursement batch lifecycle.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a batch is paid out.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodNEFT         PaymentMethod = "NEFT"
	PaymentMethodRTGS         PaymentMethod = "RTGS"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
)

// BatchStatus represents batch lifecycle states. A batch is created
// PROCESSING; bank integration moves it to COMPLETED or FAILED.
type BatchStatus string

const (
	BatchStatusProcessing BatchStatus = "PROCESSING"
	BatchStatusCompleted  BatchStatus = "COMPLETED"
	BatchStatusFailed     BatchStatus = "FAILED"
)

// ReimbursementBatch groups approved claims paid out together. TotalAmount
// is the exact decimal sum of the member claims at the moment they were
// marked reimbursed.
type ReimbursementBatch struct {
	ID                snowflake.ID    `gorm:"primaryKey"`
	BatchNumber       string          `gorm:"type:text;not null;uniqueIndex"`
	PaymentMethod     PaymentMethod   `gorm:"type:text;not null"`
	Status            BatchStatus     `gorm:"type:text;not null;default:'PROCESSING';index"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency          string          `gorm:"type:text;not null;default:'INR'"`
	ClaimCount        int             `gorm:"not null"`
	ReimbursementDate time.Time       `gorm:"not null"`
	CreatedBy         snowflake.ID    `gorm:"not null;index"`
	Notes             string          `gorm:"type:text"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName sets the database table name.
func (ReimbursementBatch) TableName() string { return "reimbursement_batches" }
