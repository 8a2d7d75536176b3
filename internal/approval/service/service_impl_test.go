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
	"github.com/zenithhr/expensio/internal/approval/domain"
	approvalrepo "github.com/zenithhr/expensio/internal/approval/repository"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	claimrepo "github.com/zenithhr/expensio/internal/claim/repository"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	employeerepo "github.com/zenithhr/expensio/internal/employee/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// repoPool backfills approvers straight from the employee repository, the
// same query the employee service runs in production.
type repoPool struct {
	db   *gorm.DB
	repo employeedomain.Repository
}

func (p repoPool) BackOfficeApprovers(ctx context.Context, exclude []snowflake.ID, limit int) ([]snowflake.ID, error) {
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

func setupApprovalService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&employeedomain.Employee{},
		&claimdomain.ExpenseClaim{},
		&domain.ExpenseApproval{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	empRepo := employeerepo.Provide()
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      approvalrepo.Provide(),
		Claims:    claimrepo.Provide(),
		Employees: empRepo,
		Pool:      repoPool{db: db, repo: empRepo},
	})
	return svc.(*Service), db, node
}

func seedEmployee(t *testing.T, db *gorm.DB, node *snowflake.Node, role employeedomain.Role, managerID *snowflake.ID) employeedomain.Employee {
	t.Helper()

	now := time.Now().UTC()
	employee := employeedomain.Employee{
		ID:           node.Generate(),
		EmployeeCode: fmt.Sprintf("EMP-%s", node.Generate()),
		Name:         "Test Employee",
		Email:        "employee@example.com",
		Role:         role,
		ManagerID:    managerID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Create(&employee).Error)
	return employee
}

func seedPendingClaim(t *testing.T, db *gorm.DB, node *snowflake.Node, employeeID snowflake.ID) claimdomain.ExpenseClaim {
	t.Helper()

	now := time.Now().UTC()
	claim := claimdomain.ExpenseClaim{
		ID:             node.Generate(),
		EmployeeID:     employeeID,
		CategoryID:     node.Generate(),
		Amount:         decimal.NewFromInt(750),
		Currency:       "INR",
		ExpenseDate:    now,
		Status:         claimdomain.ClaimStatusPending,
		IsReimbursable: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&claim).Error)
	return claim
}

func TestResolveApproversManagerChain(t *testing.T) {
	svc, db, node := setupApprovalService(t)
	ctx := context.Background()

	mgr2 := seedEmployee(t, db, node, employeedomain.RoleManager, nil)
	mgr1 := seedEmployee(t, db, node, employeedomain.RoleManager, &mgr2.ID)
	emp := seedEmployee(t, db, node, employeedomain.RoleEmployee, &mgr1.ID)

	approvers, err := svc.ResolveApprovers(ctx, emp.ID, 2)
	require.NoError(t, err)
	require.Len(t, approvers, 2)
	assert.Equal(t, mgr1.ID, approvers[0])
	assert.Equal(t, mgr2.ID, approvers[1])

	// A shallower requirement truncates the chain.
	approvers, err = svc.ResolveApprovers(ctx, emp.ID, 1)
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, mgr1.ID, approvers[0])
}

func TestResolveApproversBackfillsFromPool(t *testing.T) {
	svc, db, node := setupApprovalService(t)
	ctx := context.Background()

	hr := seedEmployee(t, db, node, employeedomain.RoleHR, nil)
	finance := seedEmployee(t, db, node, employeedomain.RoleFinance, nil)
	mgr := seedEmployee(t, db, node, employeedomain.RoleManager, nil)
	emp := seedEmployee(t, db, node, employeedomain.RoleEmployee, &mgr.ID)

	approvers, err := svc.ResolveApprovers(ctx, emp.ID, 3)
	require.NoError(t, err)
	require.Len(t, approvers, 3)
	assert.Equal(t, mgr.ID, approvers[0])
	assert.ElementsMatch(t, []snowflake.ID{hr.ID, finance.ID}, approvers[1:])
}

func TestResolveApproversManagerCycle(t *testing.T) {
	svc, db, node := setupApprovalService(t)
	ctx := context.Background()

	hr := seedEmployee(t, db, node, employeedomain.RoleHR, nil)

	a := seedEmployee(t, db, node, employeedomain.RoleEmployee, nil)
	b := seedEmployee(t, db, node, employeedomain.RoleManager, &a.ID)
	require.NoError(t, db.Model(&employeedomain.Employee{}).
		Where("id = ?", a.ID).Update("manager_id", b.ID).Error)

	approvers, err := svc.ResolveApprovers(ctx, a.ID, 3)
	require.NoError(t, err)
	require.Len(t, approvers, 2)
	assert.Equal(t, b.ID, approvers[0])
	assert.Equal(t, hr.ID, approvers[1])
}

func TestSetupChainNoEligibleApprovers(t *testing.T) {
	svc, db, node := setupApprovalService(t)
	ctx := context.Background()

	emp := seedEmployee(t, db, node, employeedomain.RoleEmployee, nil)
	claim := seedPendingClaim(t, db, node, emp.ID)

	_, err := svc.SetupChain(ctx, db, claim.ID, emp.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNoEligibleApprovers)
}

func TestRecordDecisionApprovesClaim(t *testing.T) {
	svc, db, node := setupApprovalService(t)
	ctx := context.Background()

	mgr2 := seedEmployee(t, db, node, employeedomain.RoleManager, nil)
	mgr1 := seedEmployee(t, db, node, employeedomain.RoleManager, &mgr2.ID)
	emp := seedEmployee(t, db, node, employeedomain.RoleEmployee, &mgr1.ID)
	claim := seedPendingClaim(t, db, node, emp.ID)

	_, err := svc.SetupChain(ctx, db, claim.ID, emp.ID, 2)
	require.NoError(t, err)

	// Levels may be decided in any order; the higher level goes first here.
	result, err := svc.RecordDecision(ctx, domain.DecisionRequest{
		ClaimID:    claim.ID.String(),
		ApproverID: mgr2.ID,
		Decision:   domain.DecisionApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, claimdomain.ClaimStatusPending, result.ClaimStatus)

	result, err = svc.RecordDecision(ctx, domain.DecisionRequest{
		ClaimID:    claim.ID.String(),
		ApproverID: mgr1.ID,
		Decision:   domain.DecisionApproved,
		Comments:   "looks good",
	})
	require.NoError(t, err)
	assert.Equal(t, claimdomain.ClaimStatusApproved, result.ClaimStatus)
	assert.Equal(t, domain.ApprovalStatusApproved, result.Approval.Status)

	var persisted claimdomain.ExpenseClaim
	require.NoError(t, db.First(&persisted, "id = ?", claim.ID).Error)
	assert.Equal(t, claimdomain.ClaimStatusApproved, persisted.Status)
}

func TestRecordDecisionRejectionIsImmediate(t *testing.T) {
	svc, db, node := setupApprovalService(t)
	ctx := context.Background()

	mgr2 := seedEmployee(t, db, node, employeedomain.RoleManager, nil)
	mgr1 := seedEmployee(t, db, node, employeedomain.RoleManager, &mgr2.ID)
	emp := seedEmployee(t, db, node, employeedomain.RoleEmployee, &mgr1.ID)
	claim := seedPendingClaim(t, db, node, emp.ID)

	_, err := svc.SetupChain(ctx, db, claim.ID, emp.ID, 2)
	require.NoError(t, err)

	result, err := svc.RecordDecision(ctx, domain.DecisionRequest{
		ClaimID:    claim.ID.String(),
		ApproverID: mgr2.ID,
		Decision:   domain.DecisionRejected,
		Comments:   "no supporting documents",
	})
	require.NoError(t, err)
	assert.Equal(t, claimdomain.ClaimStatusRejected, result.ClaimStatus)

	// The other level can no longer act once the claim left PENDING.
	_, err = svc.RecordDecision(ctx, domain.DecisionRequest{
		ClaimID:    claim.ID.String(),
		ApproverID: mgr1.ID,
		Decision:   domain.DecisionApproved,
	})
	assert.ErrorIs(t, err, domain.ErrClaimNotPending)
}

func TestRecordDecisionNotAnApprover(t *testing.T) {
	svc, db, node := setupApprovalService(t)
	ctx := context.Background()

	mgr := seedEmployee(t, db, node, employeedomain.RoleManager, nil)
	emp := seedEmployee(t, db, node, employeedomain.RoleEmployee, &mgr.ID)
	outsider := seedEmployee(t, db, node, employeedomain.RoleEmployee, nil)
	claim := seedPendingClaim(t, db, node, emp.ID)

	_, err := svc.SetupChain(ctx, db, claim.ID, emp.ID, 1)
	require.NoError(t, err)

	_, err = svc.RecordDecision(ctx, domain.DecisionRequest{
		ClaimID:    claim.ID.String(),
		ApproverID: outsider.ID,
		Decision:   domain.DecisionApproved,
	})
	assert.ErrorIs(t, err, domain.ErrNoPendingApproval)
}

func TestRecordDecisionIsNotRepeatable(t *testing.T) {
	svc, db, node := setupApprovalService(t)
	ctx := context.Background()

	mgr2 := seedEmployee(t, db, node, employeedomain.RoleManager, nil)
	mgr1 := seedEmployee(t, db, node, employeedomain.RoleManager, &mgr2.ID)
	emp := seedEmployee(t, db, node, employeedomain.RoleEmployee, &mgr1.ID)
	claim := seedPendingClaim(t, db, node, emp.ID)

	_, err := svc.SetupChain(ctx, db, claim.ID, emp.ID, 2)
	require.NoError(t, err)

	_, err = svc.RecordDecision(ctx, domain.DecisionRequest{
		ClaimID:    claim.ID.String(),
		ApproverID: mgr1.ID,
		Decision:   domain.DecisionApproved,
	})
	require.NoError(t, err)

	_, err = svc.RecordDecision(ctx, domain.DecisionRequest{
		ClaimID:    claim.ID.String(),
		ApproverID: mgr1.ID,
		Decision:   domain.DecisionRejected,
	})
	assert.ErrorIs(t, err, domain.ErrNoPendingApproval)
}

func TestAggregateStatus(t *testing.T) {
	approved := domain.ExpenseApproval{Status: domain.ApprovalStatusApproved}
	rejected := domain.ExpenseApproval{Status: domain.ApprovalStatusRejected}
	pending := domain.ExpenseApproval{Status: domain.ApprovalStatusPending}

	assert.Equal(t, claimdomain.ClaimStatusPending, aggregateStatus(nil))
	assert.Equal(t, claimdomain.ClaimStatusPending, aggregateStatus([]domain.ExpenseApproval{approved, pending}))
	assert.Equal(t, claimdomain.ClaimStatusApproved, aggregateStatus([]domain.ExpenseApproval{approved, approved}))
	assert.Equal(t, claimdomain.ClaimStatusRejected, aggregateStatus([]domain.ExpenseApproval{approved, rejected, pending}))
}
