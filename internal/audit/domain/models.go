package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType distinguishes people from the scheduler/seed paths.
type ActorType string

const (
	ActorTypeEmployee ActorType = "employee"
	ActorTypeSystem   ActorType = "system"
)

// AuditLog is an append-only record of a state change. Entries are written
// best-effort and never block the operation they describe.
type AuditLog struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	ActorType    ActorType         `gorm:"type:text;not null"`
	ActorID      *string           `gorm:"type:text;index"`
	Action       string            `gorm:"type:text;not null;index"`
	ResourceType string            `gorm:"type:text;not null;index"`
	ResourceID   *string           `gorm:"type:text;index"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata"`
	CreatedAt    time.Time         `gorm:"not null;index"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }

// AuditCursor is the decoded list cursor.
type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

// ListFilter narrows List queries.
type ListFilter struct {
	Action       string
	ResourceType string
	ResourceID   string
	ActorType    string
	StartAt      *time.Time
	EndAt        *time.Time
	Cursor       *AuditCursor
	Limit        int
}
