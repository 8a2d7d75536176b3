package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	pkgdb "github.com/zenithhr/expensio/pkg/db"

	"github.com/zenithhr/expensio/internal/employee/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("employee.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEmployeeRequest) (domain.Employee, error) {
	code := strings.TrimSpace(req.EmployeeCode)
	if code == "" {
		return domain.Employee{}, domain.ErrInvalidEmployeeCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Employee{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Employee{}, domain.ErrInvalidEmail
	}

	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	switch role {
	case domain.RoleEmployee, domain.RoleManager, domain.RoleHR, domain.RoleFinance, domain.RoleAdmin:
	default:
		return domain.Employee{}, domain.ErrInvalidRole
	}

	if req.ManagerID != nil {
		manager, err := s.repo.FindByID(ctx, s.db, *req.ManagerID)
		if err != nil {
			return domain.Employee{}, err
		}
		if manager == nil {
			return domain.Employee{}, domain.ErrManagerNotFound
		}
	}

	now := time.Now().UTC()
	employee := domain.Employee{
		ID:           s.genID.Generate(),
		EmployeeCode: code,
		Name:         name,
		Email:        email,
		Role:         role,
		ManagerID:    req.ManagerID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &employee); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Employee{}, domain.ErrDuplicateCode
		}
		return domain.Employee{}, err
	}

	return employee, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEmployeeRequest) (domain.Employee, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Employee{}, err
	}

	employee, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Employee{}, err
	}
	if employee == nil {
		return domain.Employee{}, domain.ErrNotFound
	}
	return *employee, nil
}

func (s *Service) SetBankDetail(ctx context.Context, req domain.SetBankDetailRequest) (domain.BankDetail, error) {
	id, err := s.parseID(req.EmployeeID)
	if err != nil {
		return domain.BankDetail{}, err
	}

	employee, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.BankDetail{}, err
	}
	if employee == nil {
		return domain.BankDetail{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	detail := domain.BankDetail{
		ID:                s.genID.Generate(),
		EmployeeID:        id,
		AccountHolderName: strings.TrimSpace(req.AccountHolderName),
		AccountNumber:     strings.TrimSpace(req.AccountNumber),
		IFSCCode:          strings.ToUpper(strings.TrimSpace(req.IFSCCode)),
		BankName:          strings.TrimSpace(req.BankName),
		PANNumber:         strings.ToUpper(strings.TrimSpace(req.PANNumber)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.UpsertBankDetail(ctx, s.db, &detail); err != nil {
		return domain.BankDetail{}, err
	}
	return detail, nil
}

// BackOfficeApprovers returns fallback approver IDs, deterministically ordered,
// excluding anyone already selected. Implements the approval pool collaborator.
func (s *Service) BackOfficeApprovers(ctx context.Context, exclude []snowflake.ID, limit int) ([]snowflake.ID, error) {
	employees, err := s.repo.FindByRoles(ctx, s.db, domain.BackOfficeRoles, exclude, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]snowflake.ID, 0, len(employees))
	for _, employee := range employees {
		ids = append(ids, employee.ID)
	}
	return ids, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
