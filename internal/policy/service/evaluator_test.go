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
	"github.com/zenithhr/expensio/internal/policy/domain"
	"github.com/zenithhr/expensio/internal/policy/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type counterStub struct {
	count    int64
	err      error
	lastFrom time.Time
	lastTo   time.Time
}

func (c *counterStub) CountActiveClaims(ctx context.Context, db *gorm.DB, employeeID, categoryID snowflake.ID, from, to time.Time) (int64, error) {
	c.lastFrom = from
	c.lastTo = to
	return c.count, c.err
}

func setupPolicyService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node, *counterStub) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.ExpenseCategory{}, &domain.PolicyRule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	counter := &counterStub{}
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Claims: counter,
	})
	return svc.(*Service), db, node, counter
}

func seedCategory(t *testing.T, db *gorm.DB, node *snowflake.Node, mutate func(*domain.ExpenseCategory)) domain.ExpenseCategory {
	t.Helper()

	now := time.Now().UTC()
	category := domain.ExpenseCategory{
		ID:               node.Generate(),
		Name:             "Travel",
		Code:             fmt.Sprintf("TRAVEL-%s", node.Generate()),
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

func seedRule(t *testing.T, db *gorm.DB, node *snowflake.Node, categoryID snowflake.ID, cfg domain.RuleConfig) {
	t.Helper()

	raw, err := domain.EncodeRuleConfig(cfg)
	require.NoError(t, err)

	now := time.Now().UTC()
	rule := domain.PolicyRule{
		ID:         node.Generate(),
		CategoryID: categoryID,
		RuleType:   cfg.RuleType(),
		RuleValue:  raw,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&rule).Error)
}

func TestEvaluateCategoryAmountLimit(t *testing.T) {
	svc, db, node, _ := setupPolicyService(t)

	max := decimal.NewFromInt(1000)
	category := seedCategory(t, db, node, func(c *domain.ExpenseCategory) {
		c.MaxAmount = &max
	})

	result, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		CategoryID:  category.ID,
		EmployeeID:  node.Generate(),
		Amount:      decimal.NewFromInt(1500),
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  true,
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "exceeds category limit")
}

func TestEvaluateReceiptRequired(t *testing.T) {
	svc, db, node, _ := setupPolicyService(t)

	category := seedCategory(t, db, node, func(c *domain.ExpenseCategory) {
		c.RequiresReceipt = true
	})

	result, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		CategoryID:  category.ID,
		EmployeeID:  node.Generate(),
		Amount:      decimal.NewFromInt(100),
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  false,
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Violations, "receipt is required for this category")
}

func TestEvaluateInactiveCategory(t *testing.T) {
	svc, db, node, _ := setupPolicyService(t)

	category := seedCategory(t, db, node, func(c *domain.ExpenseCategory) {
		c.IsActive = false
	})

	result, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		CategoryID:  category.ID,
		EmployeeID:  node.Generate(),
		Amount:      decimal.NewFromInt(100),
		ExpenseDate: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 1)
}

func TestEvaluateFrequencyLimit(t *testing.T) {
	svc, db, node, counter := setupPolicyService(t)

	category := seedCategory(t, db, node, nil)
	seedRule(t, db, node, category.ID, domain.FrequencyLimitConfig{
		Period:   domain.PeriodMonthly,
		MaxCount: 5,
	})

	req := domain.EvaluateRequest{
		CategoryID:  category.ID,
		EmployeeID:  node.Generate(),
		Amount:      decimal.NewFromInt(100),
		ExpenseDate: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		HasReceipt:  true,
	}

	counter.count = 3
	result, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)

	counter.count = 4
	result, err = svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "approaching claim limit")

	counter.count = 5
	result, err = svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "claim limit of 5")
}

func TestFrequencyWindows(t *testing.T) {
	// Wednesday, March 18 2026.
	date := time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC)

	from, to := frequencyWindow(domain.PeriodDaily, date)
	assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC), to)

	// Weeks run Sunday through Saturday.
	from, to = frequencyWindow(domain.PeriodWeekly, date)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC), to)

	from, to = frequencyWindow(domain.PeriodMonthly, date)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestEvaluateFrequencyWindowPassedToCounter(t *testing.T) {
	svc, db, node, counter := setupPolicyService(t)

	category := seedCategory(t, db, node, nil)
	seedRule(t, db, node, category.ID, domain.FrequencyLimitConfig{
		Period:   domain.PeriodDaily,
		MaxCount: 2,
	})

	_, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		CategoryID:  category.ID,
		EmployeeID:  node.Generate(),
		Amount:      decimal.NewFromInt(100),
		ExpenseDate: time.Date(2026, 7, 4, 23, 59, 0, 0, time.UTC),
		HasReceipt:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC), counter.lastFrom)
	assert.Equal(t, time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC), counter.lastTo)
}

func TestEvaluateApprovalEscalation(t *testing.T) {
	svc, db, node, _ := setupPolicyService(t)

	category := seedCategory(t, db, node, func(c *domain.ExpenseCategory) {
		c.ApprovalLevels = 1
	})
	seedRule(t, db, node, category.ID, domain.ApprovalRequiredConfig{
		MinAmount: decimal.NewFromInt(500),
		Levels:    3,
	})

	result, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		CategoryID:  category.ID,
		EmployeeID:  node.Generate(),
		Amount:      decimal.NewFromInt(600),
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  true,
	})
	require.NoError(t, err)
	assert.True(t, result.RequiresApproval)
	assert.Equal(t, 3, result.RequiredApprovalLevels)

	// Below the threshold the category default stands.
	result, err = svc.Evaluate(context.Background(), domain.EvaluateRequest{
		CategoryID:  category.ID,
		EmployeeID:  node.Generate(),
		Amount:      decimal.NewFromInt(400),
		ExpenseDate: time.Now().UTC(),
		HasReceipt:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RequiredApprovalLevels)
}

func TestEvaluateGPSRequired(t *testing.T) {
	svc, db, node, _ := setupPolicyService(t)

	category := seedCategory(t, db, node, nil)
	seedRule(t, db, node, category.ID, domain.GPSRequiredConfig{})

	result, err := svc.Evaluate(context.Background(), domain.EvaluateRequest{
		CategoryID:     category.ID,
		EmployeeID:     node.Generate(),
		Amount:         decimal.NewFromInt(100),
		ExpenseDate:    time.Now().UTC(),
		HasReceipt:     true,
		HasGPSLocation: false,
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Violations, "GPS location is required by policy rule")
}
