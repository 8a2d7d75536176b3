// Package migration creates the schema on startup so the engine is usable
// out of the box for local and self-hosted environments.
package migration

import (
	"errors"

	approvaldomain "github.com/zenithhr/expensio/internal/approval/domain"
	auditdomain "github.com/zenithhr/expensio/internal/audit/domain"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	mileagedomain "github.com/zenithhr/expensio/internal/mileage/domain"
	notificationdomain "github.com/zenithhr/expensio/internal/notification/domain"
	reimbursementdomain "github.com/zenithhr/expensio/internal/reimbursement/domain"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&employeedomain.Employee{},
		&employeedomain.BankDetail{},
		&policydomain.ExpenseCategory{},
		&policydomain.PolicyRule{},
		&claimdomain.ExpenseClaim{},
		&approvaldomain.ExpenseApproval{},
		&mileagedomain.DistanceLog{},
		&mileagedomain.MonthlyPetrolExpense{},
		&mileagedomain.PetrolExpenseConfig{},
		&reimbursementdomain.ReimbursementBatch{},
		&notificationdomain.NotificationOutbox{},
		&auditdomain.AuditLog{},
	)
}
