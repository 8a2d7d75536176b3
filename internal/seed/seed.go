// Package seed bootstraps reference data so a fresh database can accept
// claims immediately: default categories, a mileage rate and the back-office
// approver pool.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	mileagedomain "github.com/zenithhr/expensio/internal/mileage/domain"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	"gorm.io/gorm"
)

const (
	petrolCategoryCode = "PETROL"

	defaultRatePerKM = "4.50"
)

type defaultCategory struct {
	Name             string
	Code             string
	MaxAmount        string
	RequiresReceipt  bool
	RequiresApproval bool
	ApprovalLevels   int
}

var defaultCategories = []defaultCategory{
	{Name: "Travel", Code: "TRAVEL", MaxAmount: "50000", RequiresReceipt: true, RequiresApproval: true, ApprovalLevels: 2},
	{Name: "Meals", Code: "MEALS", MaxAmount: "2000", RequiresReceipt: true, RequiresApproval: true, ApprovalLevels: 1},
	{Name: "Office Supplies", Code: "OFFICE_SUPPLIES", MaxAmount: "10000", RequiresReceipt: true, RequiresApproval: true, ApprovalLevels: 1},
	{Name: "Petrol", Code: petrolCategoryCode, RequiresApproval: true, ApprovalLevels: 1},
}

type defaultEmployee struct {
	Code  string
	Name  string
	Email string
	Role  employeedomain.Role
}

var defaultBackOffice = []defaultEmployee{
	{Code: "HR-0001", Name: "Default HR", Email: "hr@expensio.local", Role: employeedomain.RoleHR},
	{Code: "FIN-0001", Name: "Default Finance", Email: "finance@expensio.local", Role: employeedomain.RoleFinance},
}

// EnsureDefaults is idempotent: re-running it against a seeded database is a
// no-op.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategories(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureRateConfig(ctx, tx, node); err != nil {
			return err
		}
		return ensureBackOffice(ctx, tx, node)
	})
}

func ensureCategories(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, def := range defaultCategories {
		var existing policydomain.ExpenseCategory
		err := tx.WithContext(ctx).Where("code = ?", def.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		category := policydomain.ExpenseCategory{
			ID:               node.Generate(),
			Name:             def.Name,
			Code:             def.Code,
			Currency:         "INR",
			RequiresReceipt:  def.RequiresReceipt,
			RequiresApproval: def.RequiresApproval,
			ApprovalLevels:   def.ApprovalLevels,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if def.MaxAmount != "" {
			amount, err := decimal.NewFromString(def.MaxAmount)
			if err != nil {
				return err
			}
			category.MaxAmount = &amount
		}
		if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureRateConfig(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&mileagedomain.PetrolExpenseConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rate, err := decimal.NewFromString(defaultRatePerKM)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	config := mileagedomain.PetrolExpenseConfig{
		ID:            node.Generate(),
		RatePerKM:     rate,
		EffectiveFrom: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:     now,
	}
	return tx.WithContext(ctx).Create(&config).Error
}

func ensureBackOffice(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, def := range defaultBackOffice {
		var existing employeedomain.Employee
		err := tx.WithContext(ctx).Where("employee_code = ?", def.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		employee := employeedomain.Employee{
			ID:           node.Generate(),
			EmployeeCode: def.Code,
			Name:         def.Name,
			Email:        def.Email,
			Role:         def.Role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(&employee).Error; err != nil {
			return err
		}
	}
	return nil
}
