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
	auditdomain "github.com/zenithhr/expensio/internal/audit/domain"
	"github.com/zenithhr/expensio/internal/banking/domain"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	claimrepo "github.com/zenithhr/expensio/internal/claim/repository"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	employeerepo "github.com/zenithhr/expensio/internal/employee/repository"
	reimbursementdomain "github.com/zenithhr/expensio/internal/reimbursement/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type batchServiceStub struct {
	batch    *reimbursementdomain.ReimbursementBatch
	statuses []reimbursementdomain.BatchStatus
}

func (s *batchServiceStub) ProcessBatch(ctx context.Context, req reimbursementdomain.ProcessBatchRequest) (*reimbursementdomain.ProcessBatchResponse, error) {
	panic("not used")
}

func (s *batchServiceStub) GetByID(ctx context.Context, id string) (*reimbursementdomain.ReimbursementBatch, error) {
	if s.batch == nil {
		return nil, reimbursementdomain.ErrBatchNotFound
	}
	return s.batch, nil
}

func (s *batchServiceStub) ClaimsForBatch(ctx context.Context, id string) ([]*claimdomain.ExpenseClaim, error) {
	panic("not used")
}

func (s *batchServiceStub) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status reimbursementdomain.BatchStatus) error {
	s.statuses = append(s.statuses, status)
	s.batch.Status = status
	return nil
}

type processorStub struct {
	response *domain.PaymentResponse
	err      error
	calls    int
}

func (p *processorStub) Process(ctx context.Context, provider domain.Provider, mode domain.PaymentMode, batchRef string, payments []domain.EmployeePayment) (*domain.PaymentResponse, error) {
	p.calls++
	return p.response, p.err
}

type bankAuditStub struct {
	actions []string
}

func (a *bankAuditStub) Record(ctx context.Context, action string, resourceType string, resourceID *string, metadata map[string]any) {
	a.actions = append(a.actions, action)
}

func (a *bankAuditStub) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	return auditdomain.ListAuditLogResponse{}, nil
}

type bankingFixture struct {
	svc       domain.Service
	db        *gorm.DB
	node      *snowflake.Node
	batches   *batchServiceStub
	processor *processorStub
	audit     *bankAuditStub
}

func setupBankingService(t *testing.T) *bankingFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&employeedomain.Employee{},
		&employeedomain.BankDetail{},
		&claimdomain.ExpenseClaim{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	batches := &batchServiceStub{}
	processor := &processorStub{response: &domain.PaymentResponse{Success: true, ReferenceID: "UTR000000000001"}}
	audit := &bankAuditStub{}

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Employees: employeerepo.Provide(),
		Claims:    claimrepo.Provide(),
		Batches:   batches,
		Processor: processor,
		Audit:     audit,
	})

	return &bankingFixture{svc: svc, db: db, node: node, batches: batches, processor: processor, audit: audit}
}

func (f *bankingFixture) seedEmployee(t *testing.T, name string) employeedomain.Employee {
	t.Helper()

	now := time.Now().UTC()
	employee := employeedomain.Employee{
		ID:           f.node.Generate(),
		EmployeeCode: fmt.Sprintf("EMP-%s", f.node.Generate()),
		Name:         name,
		Email:        "payee@example.com",
		Role:         employeedomain.RoleEmployee,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.db.Create(&employee).Error)
	return employee
}

func (f *bankingFixture) seedBankDetail(t *testing.T, employeeID snowflake.ID, mutate func(*employeedomain.BankDetail)) {
	t.Helper()

	now := time.Now().UTC()
	detail := employeedomain.BankDetail{
		ID:                f.node.Generate(),
		EmployeeID:        employeeID,
		AccountHolderName: "Account Holder",
		AccountNumber:     "123456789012",
		IFSCCode:          "HDFC0001234",
		BankName:          "HDFC Bank",
		PANNumber:         "ABCDE1234F",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if mutate != nil {
		mutate(&detail)
	}
	require.NoError(t, f.db.Create(&detail).Error)
}

func (f *bankingFixture) seedBatchWithClaims(t *testing.T, employees ...employeedomain.Employee) *reimbursementdomain.ReimbursementBatch {
	t.Helper()

	batch := &reimbursementdomain.ReimbursementBatch{
		ID:            f.node.Generate(),
		BatchNumber:   "RB-TEST",
		PaymentMethod: reimbursementdomain.PaymentMethodNEFT,
		Status:        reimbursementdomain.BatchStatusProcessing,
		Currency:      "INR",
	}
	total := decimal.Zero

	now := time.Now().UTC()
	for i, emp := range employees {
		amount := decimal.NewFromInt(int64(100 * (i + 1)))
		total = total.Add(amount)
		batchID := batch.ID
		claim := claimdomain.ExpenseClaim{
			ID:                   f.node.Generate(),
			EmployeeID:           emp.ID,
			CategoryID:           f.node.Generate(),
			Amount:               amount,
			Currency:             "INR",
			ExpenseDate:          now,
			Status:               claimdomain.ClaimStatusReimbursed,
			IsReimbursable:       true,
			ReimbursementBatchID: &batchID,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		require.NoError(t, f.db.Create(&claim).Error)
	}

	batch.ClaimCount = len(employees)
	batch.TotalAmount = total
	f.batches.batch = batch
	return batch
}

func TestValidateBankDetails(t *testing.T) {
	f := setupBankingService(t)
	ctx := context.Background()

	valid := f.seedEmployee(t, "Alice Kumar")
	f.seedBankDetail(t, valid.ID, nil)

	broken := f.seedEmployee(t, "Bob Singh")
	f.seedBankDetail(t, broken.ID, func(d *employeedomain.BankDetail) {
		d.AccountNumber = "12345"
		d.IFSCCode = "BAD"
		d.BankName = ""
		d.PANNumber = "NOTAPAN"
	})

	missing := f.seedEmployee(t, "Carol Das")
	unknown := f.node.Generate()

	statuses, err := f.svc.ValidateBankDetails(ctx, []string{
		valid.ID.String(), broken.ID.String(), missing.ID.String(), unknown.String(),
	})
	require.NoError(t, err)
	require.Len(t, statuses, 4)

	assert.True(t, statuses[0].Valid)
	assert.Equal(t, "****9012", statuses[0].MaskedAccount)
	assert.Equal(t, "****234F", statuses[0].MaskedPAN)

	assert.False(t, statuses[1].Valid)
	assert.ElementsMatch(t, []string{
		"account number must be 9-18 digits",
		"invalid IFSC code",
		"bank name missing",
		"invalid PAN number",
	}, statuses[1].Issues)

	assert.False(t, statuses[2].Valid)
	assert.Equal(t, []string{"bank details not on file"}, statuses[2].Issues)

	assert.False(t, statuses[3].Valid)
	assert.Equal(t, []string{"employee not found"}, statuses[3].Issues)
}

func TestValidateBankDetailsInput(t *testing.T) {
	f := setupBankingService(t)

	_, err := f.svc.ValidateBankDetails(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoEmployees)

	_, err = f.svc.ValidateBankDetails(context.Background(), []string{"garbage"})
	assert.ErrorIs(t, err, employeedomain.ErrInvalidID)
}

func TestIntegrateGeneratesFile(t *testing.T) {
	f := setupBankingService(t)
	ctx := context.Background()

	alice := f.seedEmployee(t, "Alice Kumar")
	f.seedBankDetail(t, alice.ID, nil)
	bob := f.seedEmployee(t, "Bob Singh")
	f.seedBankDetail(t, bob.ID, func(d *employeedomain.BankDetail) {
		d.AccountHolderName = ""
		d.AccountNumber = "987654321000"
		d.IFSCCode = "ICIC0004321"
		d.BankName = "ICICI Bank"
	})
	batch := f.seedBatchWithClaims(t, alice, bob)

	result, err := f.svc.Integrate(ctx, domain.IntegrateRequest{
		BatchID:      batch.ID.String(),
		Provider:     domain.ProviderHDFC,
		PaymentMode:  domain.PaymentModeNEFT,
		GenerateFile: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "RB-TEST", result.BatchNumber)
	require.NotNil(t, result.File)
	assert.Equal(t, "hdfc_payments_rb-test.txt", result.File.FileName)
	assert.Nil(t, result.Payment)
	assert.Zero(t, f.processor.calls)

	// Responses never carry raw account numbers.
	require.Len(t, result.Payments, 2)
	for _, p := range result.Payments {
		assert.Contains(t, p.MaskedAccount, "****")
	}
	// With no account holder on file the employee name is the beneficiary.
	assert.Equal(t, "Bob Singh", result.Payments[1].BeneficiaryName)
}

func TestIntegrateIncompleteDetails(t *testing.T) {
	f := setupBankingService(t)
	ctx := context.Background()

	alice := f.seedEmployee(t, "Alice Kumar")
	f.seedBankDetail(t, alice.ID, nil)
	bob := f.seedEmployee(t, "Bob Singh") // no bank detail
	batch := f.seedBatchWithClaims(t, alice, bob)

	_, err := f.svc.Integrate(ctx, domain.IntegrateRequest{
		BatchID:      batch.ID.String(),
		Provider:     domain.ProviderICICI,
		PaymentMode:  domain.PaymentModeNEFT,
		GenerateFile: true,
	})

	var incomplete *domain.IncompleteDetailsError
	require.ErrorAs(t, err, &incomplete)
	require.Len(t, incomplete.Invalid, 1)
	assert.Equal(t, bob.ID, incomplete.Invalid[0].EmployeeID)
	assert.True(t, incomplete.PayableTotal.Equal(decimal.NewFromInt(100)))
}

func TestIntegrateProcessesPayment(t *testing.T) {
	f := setupBankingService(t)
	ctx := context.Background()

	alice := f.seedEmployee(t, "Alice Kumar")
	f.seedBankDetail(t, alice.ID, nil)
	batch := f.seedBatchWithClaims(t, alice)

	result, err := f.svc.Integrate(ctx, domain.IntegrateRequest{
		BatchID:        batch.ID.String(),
		Provider:       domain.ProviderYES,
		PaymentMode:    domain.PaymentModeIMPS,
		ProcessPayment: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.True(t, result.Payment.Success)
	assert.Equal(t, string(reimbursementdomain.BatchStatusCompleted), result.BatchStatus)
	assert.Equal(t, []reimbursementdomain.BatchStatus{reimbursementdomain.BatchStatusCompleted}, f.batches.statuses)
	assert.Contains(t, f.audit.actions, "banking.payment.simulated")
}

func TestIntegrateFailedPaymentFailsBatch(t *testing.T) {
	f := setupBankingService(t)
	ctx := context.Background()

	f.processor.response = &domain.PaymentResponse{Success: false, ErrorCode: "BANK_GATEWAY_DECLINED"}

	alice := f.seedEmployee(t, "Alice Kumar")
	f.seedBankDetail(t, alice.ID, nil)
	batch := f.seedBatchWithClaims(t, alice)

	result, err := f.svc.Integrate(ctx, domain.IntegrateRequest{
		BatchID:        batch.ID.String(),
		Provider:       domain.ProviderHDFC,
		PaymentMode:    domain.PaymentModeNEFT,
		ProcessPayment: true,
	})
	require.NoError(t, err)
	assert.Equal(t, string(reimbursementdomain.BatchStatusFailed), result.BatchStatus)
	assert.Equal(t, []reimbursementdomain.BatchStatus{reimbursementdomain.BatchStatusFailed}, f.batches.statuses)
}

func TestIntegrateRejectsNonProcessingBatch(t *testing.T) {
	f := setupBankingService(t)
	ctx := context.Background()

	alice := f.seedEmployee(t, "Alice Kumar")
	batch := f.seedBatchWithClaims(t, alice)
	batch.Status = reimbursementdomain.BatchStatusCompleted

	_, err := f.svc.Integrate(ctx, domain.IntegrateRequest{
		BatchID:     batch.ID.String(),
		Provider:    domain.ProviderHDFC,
		PaymentMode: domain.PaymentModeNEFT,
	})
	assert.ErrorIs(t, err, reimbursementdomain.ErrBatchNotProcessing)
}

func TestIntegrateValidatesRequest(t *testing.T) {
	f := setupBankingService(t)
	ctx := context.Background()

	_, err := f.svc.Integrate(ctx, domain.IntegrateRequest{
		Provider:    domain.Provider("AXIS"),
		PaymentMode: domain.PaymentModeNEFT,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)

	_, err = f.svc.Integrate(ctx, domain.IntegrateRequest{
		Provider:    domain.ProviderHDFC,
		PaymentMode: domain.PaymentMode("UPI"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMode)
}
