// Package domain contains persistence models for the employee directory.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the coarse role an employee holds in the organization.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleHR       Role = "HR"
	RoleFinance  Role = "FINANCE"
	RoleAdmin    Role = "ADMIN"
)

// BackOfficeRoles are the roles eligible as fallback approvers when a
// reporting chain is shorter than the required approval depth.
var BackOfficeRoles = []Role{RoleHR, RoleFinance, RoleAdmin}

// Employee is a directory entry. ManagerID forms the reporting hierarchy.
type Employee struct {
	ID           snowflake.ID  `gorm:"primaryKey"`
	EmployeeCode string        `gorm:"type:text;not null;uniqueIndex"`
	Name         string        `gorm:"type:text;not null"`
	Email        string        `gorm:"type:text;not null"`
	Role         Role          `gorm:"type:text;not null;default:'EMPLOYEE';index"`
	ManagerID    *snowflake.ID `gorm:"index"`
	IsActive     bool          `gorm:"not null;default:true"`
	CreatedAt    time.Time     `gorm:"not null"`
	UpdatedAt    time.Time     `gorm:"not null"`
}

// TableName sets the database table name.
func (Employee) TableName() string { return "employees" }

// BankDetail holds payout details for one employee.
type BankDetail struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	EmployeeID        snowflake.ID `gorm:"not null;uniqueIndex"`
	AccountHolderName string       `gorm:"type:text"`
	AccountNumber     string       `gorm:"type:text"`
	IFSCCode          string       `gorm:"type:text"`
	BankName          string       `gorm:"type:text"`
	PANNumber         string       `gorm:"type:text"`
	CreatedAt         time.Time    `gorm:"not null"`
	UpdatedAt         time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (BankDetail) TableName() string { return "bank_details" }
