// Package domain contains the notification outbox written alongside
// financial state changes and drained on a best-effort basis.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TemplateKind selects the message rendered for an outbox entry.
type TemplateKind string

const (
	TemplateClaimApproved          TemplateKind = "CLAIM_APPROVED"
	TemplateClaimRejected          TemplateKind = "CLAIM_REJECTED"
	TemplateReimbursementProcessed TemplateKind = "REIMBURSEMENT_PROCESSED"
	TemplateReimbursementSummary   TemplateKind = "REIMBURSEMENT_SUMMARY"
)

// OutboxStatus represents delivery state of an outbox entry.
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

// NotificationOutbox is one queued notification. Entries are written in the
// same transaction as the state change they announce, so a delivery outage
// can never be confused with a reimbursement failure.
type NotificationOutbox struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	Recipient    string            `gorm:"type:text;not null"`
	TemplateKind TemplateKind      `gorm:"type:text;not null"`
	Payload      datatypes.JSONMap `gorm:"not null"`
	Status       OutboxStatus      `gorm:"type:text;not null;default:'PENDING';index"`
	AttemptCount int               `gorm:"not null;default:0"`
	LastError    *string           `gorm:"type:text"`
	CreatedAt    time.Time         `gorm:"not null"`
	SentAt       *time.Time
}

// TableName sets the database table name.
func (NotificationOutbox) TableName() string { return "notification_outbox" }
