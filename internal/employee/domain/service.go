package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateEmployeeRequest struct {
	EmployeeCode string
	Name         string
	Email        string
	Role         Role
	ManagerID    *snowflake.ID
}

type GetEmployeeRequest struct {
	ID string
}

type SetBankDetailRequest struct {
	EmployeeID        string
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
	BankName          string
	PANNumber         string
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (Employee, error)
	GetByID(ctx context.Context, req GetEmployeeRequest) (Employee, error)
	SetBankDetail(ctx context.Context, req SetBankDetailRequest) (BankDetail, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidEmployeeCode = errors.New("invalid_employee_code")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrManagerNotFound     = errors.New("manager_not_found")
	ErrNotFound            = errors.New("not_found")
	ErrDuplicateCode       = errors.New("duplicate_employee_code")
)
