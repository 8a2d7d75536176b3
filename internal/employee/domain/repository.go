package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, employee *Employee) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Employee, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*Employee, error)
	FindByRoles(ctx context.Context, db *gorm.DB, roles []Role, exclude []snowflake.ID, limit int) ([]*Employee, error)
	UpsertBankDetail(ctx context.Context, db *gorm.DB, detail *BankDetail) error
	FindBankDetails(ctx context.Context, db *gorm.DB, employeeIDs []snowflake.ID) (map[snowflake.ID]*BankDetail, error)
}
