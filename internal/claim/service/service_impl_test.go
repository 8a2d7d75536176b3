package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	approvaldomain "github.com/zenithhr/expensio/internal/approval/domain"
	approvalrepo "github.com/zenithhr/expensio/internal/approval/repository"
	approvalservice "github.com/zenithhr/expensio/internal/approval/service"
	"github.com/zenithhr/expensio/internal/claim/domain"
	claimrepo "github.com/zenithhr/expensio/internal/claim/repository"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	employeerepo "github.com/zenithhr/expensio/internal/employee/repository"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	policyrepo "github.com/zenithhr/expensio/internal/policy/repository"
	policyservice "github.com/zenithhr/expensio/internal/policy/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type poolStub struct {
	db   *gorm.DB
	repo employeedomain.Repository
}

func (p poolStub) BackOfficeApprovers(ctx context.Context, exclude []snowflake.ID, limit int) ([]snowflake.ID, error) {
	employees, err := p.repo.FindByRoles(ctx, p.db, employeedomain.BackOfficeRoles, exclude, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}
	return ids, nil
}

func setupClaimService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&employeedomain.Employee{},
		&policydomain.ExpenseCategory{},
		&policydomain.PolicyRule{},
		&domain.ExpenseClaim{},
		&approvaldomain.ExpenseApproval{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	claims := claimrepo.Provide()
	employees := employeerepo.Provide()

	policySvc := policyservice.New(policyservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Repo:   policyrepo.Provide(),
		Claims: claimrepo.ProvideCounter(claims),
	})
	approvalSvc := approvalservice.New(approvalservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      approvalrepo.Provide(),
		Claims:    claims,
		Employees: employees,
		Pool:      poolStub{db: db, repo: employees},
	})

	svc := New(Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      claims,
		Policy:    policySvc,
		Approvals: approvalSvc,
	})
	return svc, db, node
}

func seedClaimEmployee(t *testing.T, db *gorm.DB, node *snowflake.Node, role employeedomain.Role, managerID *snowflake.ID) employeedomain.Employee {
	t.Helper()

	now := time.Now().UTC()
	employee := employeedomain.Employee{
		ID:           node.Generate(),
		EmployeeCode: fmt.Sprintf("EMP-%s", node.Generate()),
		Name:         "Claimant",
		Email:        "claimant@example.com",
		Role:         role,
		ManagerID:    managerID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Create(&employee).Error)
	return employee
}

func seedClaimCategory(t *testing.T, db *gorm.DB, node *snowflake.Node, mutate func(*policydomain.ExpenseCategory)) policydomain.ExpenseCategory {
	t.Helper()

	now := time.Now().UTC()
	category := policydomain.ExpenseCategory{
		ID:               node.Generate(),
		Name:             "Meals",
		Code:             fmt.Sprintf("MEALS-%s", node.Generate()),
		Currency:         "INR",
		RequiresApproval: true,
		ApprovalLevels:   1,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if mutate != nil {
		mutate(&category)
	}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func TestSubmitAutoApproved(t *testing.T) {
	svc, db, node := setupClaimService(t)
	ctx := context.Background()

	emp := seedClaimEmployee(t, db, node, employeedomain.RoleEmployee, nil)
	category := seedClaimCategory(t, db, node, func(c *policydomain.ExpenseCategory) {
		c.RequiresApproval = false
	})

	resp, err := svc.Submit(ctx, domain.SubmitClaimRequest{
		EmployeeID:  emp.ID,
		CategoryID:  category.ID.String(),
		Amount:      decimal.NewFromInt(300),
		Description: "team lunch",
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusApproved, resp.Claim.Status)
	assert.Empty(t, resp.ApproverIDs)
	assert.Equal(t, "INR", resp.Claim.Currency)

	var approvalCount int64
	require.NoError(t, db.Model(&approvaldomain.ExpenseApproval{}).Count(&approvalCount).Error)
	assert.Zero(t, approvalCount)
}

func TestSubmitCreatesApprovalChain(t *testing.T) {
	svc, db, node := setupClaimService(t)
	ctx := context.Background()

	mgr2 := seedClaimEmployee(t, db, node, employeedomain.RoleManager, nil)
	mgr1 := seedClaimEmployee(t, db, node, employeedomain.RoleManager, &mgr2.ID)
	emp := seedClaimEmployee(t, db, node, employeedomain.RoleEmployee, &mgr1.ID)
	category := seedClaimCategory(t, db, node, func(c *policydomain.ExpenseCategory) {
		c.ApprovalLevels = 2
	})

	resp, err := svc.Submit(ctx, domain.SubmitClaimRequest{
		EmployeeID:  emp.ID,
		CategoryID:  category.ID.String(),
		Amount:      decimal.NewFromInt(1200),
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusPending, resp.Claim.Status)
	require.Len(t, resp.ApproverIDs, 2)
	assert.Equal(t, mgr1.ID, resp.ApproverIDs[0])
	assert.Equal(t, mgr2.ID, resp.ApproverIDs[1])

	var approvals []approvaldomain.ExpenseApproval
	require.NoError(t, db.Where("claim_id = ?", resp.Claim.ID).Order("level asc").Find(&approvals).Error)
	require.Len(t, approvals, 2)
	assert.Equal(t, 1, approvals[0].Level)
	assert.Equal(t, approvaldomain.ApprovalStatusPending, approvals[0].Status)
}

func TestSubmitPolicyViolation(t *testing.T) {
	svc, db, node := setupClaimService(t)
	ctx := context.Background()

	emp := seedClaimEmployee(t, db, node, employeedomain.RoleEmployee, nil)
	max := decimal.NewFromInt(500)
	category := seedClaimCategory(t, db, node, func(c *policydomain.ExpenseCategory) {
		c.MaxAmount = &max
	})

	_, err := svc.Submit(ctx, domain.SubmitClaimRequest{
		EmployeeID:  emp.ID,
		CategoryID:  category.ID.String(),
		Amount:      decimal.NewFromInt(900),
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  true,
	})

	var validationErr *domain.ValidationFailedError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Violations, 1)

	// A rejected submission leaves nothing behind.
	var claimCount int64
	require.NoError(t, db.Model(&domain.ExpenseClaim{}).Count(&claimCount).Error)
	assert.Zero(t, claimCount)
}

func TestSubmitValidatesInput(t *testing.T) {
	svc, _, node := setupClaimService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, domain.SubmitClaimRequest{
		EmployeeID:  node.Generate(),
		CategoryID:  "not-a-number",
		Amount:      decimal.NewFromInt(100),
		ExpenseDate: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Submit(ctx, domain.SubmitClaimRequest{
		EmployeeID:  node.Generate(),
		CategoryID:  node.Generate().String(),
		Amount:      decimal.Zero,
		ExpenseDate: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Submit(ctx, domain.SubmitClaimRequest{
		EmployeeID: node.Generate(),
		CategoryID: node.Generate().String(),
		Amount:     decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestCancelPendingClaim(t *testing.T) {
	svc, db, node := setupClaimService(t)
	ctx := context.Background()

	mgr := seedClaimEmployee(t, db, node, employeedomain.RoleManager, nil)
	emp := seedClaimEmployee(t, db, node, employeedomain.RoleEmployee, &mgr.ID)
	category := seedClaimCategory(t, db, node, nil)

	resp, err := svc.Submit(ctx, domain.SubmitClaimRequest{
		EmployeeID:  emp.ID,
		CategoryID:  category.ID.String(),
		Amount:      decimal.NewFromInt(200),
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  true,
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, domain.CancelClaimRequest{
		ID:      resp.Claim.ID.String(),
		ActorID: emp.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusCancelled, cancelled.Status)

	// The transition out of PENDING is one-way.
	_, err = svc.Cancel(ctx, domain.CancelClaimRequest{
		ID:      resp.Claim.ID.String(),
		ActorID: emp.ID,
	})
	assert.ErrorIs(t, err, domain.ErrClaimNotPending)
}

func TestCancelApprovedClaimConflicts(t *testing.T) {
	svc, db, node := setupClaimService(t)
	ctx := context.Background()

	emp := seedClaimEmployee(t, db, node, employeedomain.RoleEmployee, nil)
	category := seedClaimCategory(t, db, node, func(c *policydomain.ExpenseCategory) {
		c.RequiresApproval = false
	})

	resp, err := svc.Submit(ctx, domain.SubmitClaimRequest{
		EmployeeID:  emp.ID,
		CategoryID:  category.ID.String(),
		Amount:      decimal.NewFromInt(200),
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ClaimStatusApproved, resp.Claim.Status)

	_, err = svc.Cancel(ctx, domain.CancelClaimRequest{
		ID:      resp.Claim.ID.String(),
		ActorID: emp.ID,
	})
	assert.ErrorIs(t, err, domain.ErrClaimNotPending)
}

func TestListClaimsPaginates(t *testing.T) {
	svc, db, node := setupClaimService(t)
	ctx := context.Background()

	emp := seedClaimEmployee(t, db, node, employeedomain.RoleEmployee, nil)
	category := seedClaimCategory(t, db, node, func(c *policydomain.ExpenseCategory) {
		c.RequiresApproval = false
	})

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		claim := domain.ExpenseClaim{
			ID:          node.Generate(),
			EmployeeID:  emp.ID,
			CategoryID:  category.ID,
			Amount:      decimal.NewFromInt(int64(100 + i)),
			Currency:    "INR",
			ExpenseDate: base,
			Status:      domain.ClaimStatusApproved,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&claim).Error)
	}

	first, err := svc.List(ctx, domain.ListClaimsRequest{
		EmployeeID: emp.ID.String(),
		PageSize:   2,
	})
	require.NoError(t, err)
	assert.Len(t, first.Claims, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := svc.List(ctx, domain.ListClaimsRequest{
		EmployeeID: emp.ID.String(),
		PageSize:   2,
		PageToken:  first.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, second.Claims, 2)
	for _, c := range second.Claims {
		for _, f := range first.Claims {
			assert.NotEqual(t, f.ID, c.ID)
		}
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := setupClaimService(t)

	_, err := svc.List(context.Background(), domain.ListClaimsRequest{Status: "BOGUS"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
