package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/employee/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return db.WithContext(ctx).Create(employee).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Employee, error) {
	var employee domain.Employee
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&employee).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*domain.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var employees []*domain.Employee
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *repo) FindByRoles(ctx context.Context, db *gorm.DB, roles []domain.Role, exclude []snowflake.ID, limit int) ([]*domain.Employee, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("role IN ?", roles).
		Where("is_active = ?", true)
	if len(exclude) > 0 {
		stmt = stmt.Where("id NOT IN ?", exclude)
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var employees []*domain.Employee
	err := stmt.Order("id asc").Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *repo) UpsertBankDetail(ctx context.Context, db *gorm.DB, detail *domain.BankDetail) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"account_holder_name", "account_number", "ifsc_code", "bank_name", "pan_number", "updated_at",
			}),
		}).
		Create(detail).Error
}

func (r *repo) FindBankDetails(ctx context.Context, db *gorm.DB, employeeIDs []snowflake.ID) (map[snowflake.ID]*domain.BankDetail, error) {
	if len(employeeIDs) == 0 {
		return map[snowflake.ID]*domain.BankDetail{}, nil
	}
	var details []*domain.BankDetail
	err := db.WithContext(ctx).
		Where("employee_id IN ?", employeeIDs).
		Find(&details).Error
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[snowflake.ID]*domain.BankDetail, len(details))
	for _, detail := range details {
		byEmployee[detail.EmployeeID] = detail
	}
	return byEmployee, nil
}
