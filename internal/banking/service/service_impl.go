package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/zenithhr/expensio/internal/audit/domain"
	"github.com/zenithhr/expensio/internal/audit/masking"
	"github.com/zenithhr/expensio/internal/banking/domain"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	"github.com/zenithhr/expensio/internal/metrics"
	reimbursementdomain "github.com/zenithhr/expensio/internal/reimbursement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	accountNumberPattern = regexp.MustCompile(`^[0-9]{9,18}$`)
	ifscPattern          = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	panPattern           = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Employees employeedomain.Repository
	Claims    claimdomain.Repository
	Batches   reimbursementdomain.Service
	Processor domain.PaymentProcessor
	Audit     auditdomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	employees employeedomain.Repository
	claims    claimdomain.Repository
	batches   reimbursementdomain.Service
	processor domain.PaymentProcessor
	audit     auditdomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("banking.service"),
		employees: p.Employees,
		claims:    p.Claims,
		batches:   p.Batches,
		processor: p.Processor,
		audit:     p.Audit,
		metrics:   p.Metrics,
	}
}

func (s *Service) ValidateBankDetails(ctx context.Context, employeeIDs []string) ([]domain.BankDetailStatus, error) {
	if len(employeeIDs) == 0 {
		return nil, domain.ErrNoEmployees
	}

	ids := make([]snowflake.ID, 0, len(employeeIDs))
	for _, raw := range employeeIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id == 0 {
			return nil, employeedomain.ErrInvalidID
		}
		ids = append(ids, id)
	}

	employees, err := s.employees.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]*employeedomain.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	details, err := s.employees.FindBankDetails(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.BankDetailStatus, 0, len(ids))
	for _, id := range ids {
		emp, ok := byID[id]
		if !ok {
			statuses = append(statuses, domain.BankDetailStatus{
				EmployeeID: id,
				Valid:      false,
				Issues:     []string{"employee not found"},
			})
			continue
		}
		statuses = append(statuses, buildDetailStatus(emp, details[id]))
	}
	return statuses, nil
}

func (s *Service) Integrate(ctx context.Context, req domain.IntegrateRequest) (*domain.IntegrateResult, error) {
	switch req.Provider {
	case domain.ProviderHDFC, domain.ProviderICICI, domain.ProviderYES, domain.ProviderRegister:
	default:
		return nil, domain.ErrInvalidProvider
	}
	switch req.PaymentMode {
	case domain.PaymentModeNEFT, domain.PaymentModeRTGS, domain.PaymentModeIMPS:
	default:
		return nil, domain.ErrInvalidPaymentMode
	}

	batch, err := s.batches.GetByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	if batch.Status != reimbursementdomain.BatchStatusProcessing {
		return nil, reimbursementdomain.ErrBatchNotProcessing
	}

	claims, err := s.claims.FindByBatchID(ctx, s.db, batch.ID)
	if err != nil {
		return nil, err
	}
	if len(claims) == 0 {
		return nil, domain.ErrNoPayments
	}

	payments, err := s.buildPayments(ctx, batch, claims)
	if err != nil {
		return nil, err
	}

	result := &domain.IntegrateResult{
		BatchNumber: batch.BatchNumber,
		BatchStatus: string(batch.Status),
		TotalAmount: batch.TotalAmount,
		Payments:    maskPayments(payments),
	}

	if req.GenerateFile {
		file, err := buildFile(req.Provider, batch.BatchNumber, payments)
		if err != nil {
			return nil, err
		}
		result.File = file
	}

	if req.ProcessPayment {
		response, err := s.processor.Process(ctx, req.Provider, req.PaymentMode, batch.BatchNumber, payments)
		if err != nil {
			return nil, err
		}
		result.Payment = response

		status := reimbursementdomain.BatchStatusCompleted
		outcome := "success"
		if !response.Success {
			status = reimbursementdomain.BatchStatusFailed
			outcome = "failure"
		}
		if s.metrics != nil {
			s.metrics.PaymentsSimulated.WithLabelValues(outcome).Inc()
		}

		if err := s.batches.UpdateStatus(ctx, nil, batch.ID, status); err != nil {
			return nil, err
		}
		result.BatchStatus = string(status)

		batchID := batch.ID.String()
		s.audit.Record(ctx, "banking.payment.simulated", "reimbursement_batch", &batchID, map[string]any{
			"batch_number": batch.BatchNumber,
			"provider":     string(req.Provider),
			"payment_mode": string(req.PaymentMode),
			"outcome":      outcome,
			"reference_id": response.ReferenceID,
			"error_code":   response.ErrorCode,
		})
	}

	return result, nil
}

// buildPayments aggregates the batch's claims per employee, ordered by
// employee ID so file content is stable across regenerations.
func (s *Service) buildPayments(ctx context.Context, batch *reimbursementdomain.ReimbursementBatch, claims []*claimdomain.ExpenseClaim) ([]domain.EmployeePayment, error) {
	perEmployee := make(map[snowflake.ID]*domain.EmployeePayment)
	ids := make([]snowflake.ID, 0)
	for _, c := range claims {
		payment, ok := perEmployee[c.EmployeeID]
		if !ok {
			payment = &domain.EmployeePayment{EmployeeID: c.EmployeeID}
			perEmployee[c.EmployeeID] = payment
			ids = append(ids, c.EmployeeID)
		}
		payment.Amount = payment.Amount.Add(c.Amount)
		payment.ClaimCount++
	}

	employees, err := s.employees.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]*employeedomain.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	details, err := s.employees.FindBankDetails(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	var invalid []domain.BankDetailStatus
	payableTotal := decimal.Zero

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	payments := make([]domain.EmployeePayment, 0, len(ids))
	for _, id := range ids {
		emp := byID[id]
		var status domain.BankDetailStatus
		if emp == nil {
			status = domain.BankDetailStatus{
				EmployeeID: id,
				Valid:      false,
				Issues:     []string{"employee not found"},
			}
		} else {
			status = buildDetailStatus(emp, details[id])
		}

		if !status.Valid {
			invalid = append(invalid, status)
			continue
		}

		detail := details[id]
		payment := perEmployee[id]
		payment.Serial = len(payments) + 1
		payment.BeneficiaryName = beneficiaryName(emp, detail)
		payment.AccountNumber = detail.AccountNumber
		payment.IFSCCode = strings.ToUpper(detail.IFSCCode)
		payment.Narration = fmt.Sprintf("Expense reimbursement %s", batch.BatchNumber)
		payableTotal = payableTotal.Add(payment.Amount)
		payments = append(payments, *payment)
	}

	if len(invalid) > 0 {
		return nil, &domain.IncompleteDetailsError{Invalid: invalid, PayableTotal: payableTotal}
	}
	return payments, nil
}

func buildDetailStatus(emp *employeedomain.Employee, detail *employeedomain.BankDetail) domain.BankDetailStatus {
	status := domain.BankDetailStatus{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
	}

	if detail == nil {
		status.Issues = append(status.Issues, "bank details not on file")
		return status
	}

	status.AccountHolderName = detail.AccountHolderName
	status.MaskedAccount = masking.MaskSecret(detail.AccountNumber)
	status.IFSCCode = strings.ToUpper(detail.IFSCCode)
	status.BankName = detail.BankName
	status.MaskedPAN = masking.MaskSecret(detail.PANNumber)

	if !accountNumberPattern.MatchString(detail.AccountNumber) {
		status.Issues = append(status.Issues, "account number must be 9-18 digits")
	}
	if !ifscPattern.MatchString(strings.ToUpper(detail.IFSCCode)) {
		status.Issues = append(status.Issues, "invalid IFSC code")
	}
	if strings.TrimSpace(detail.BankName) == "" {
		status.Issues = append(status.Issues, "bank name missing")
	}
	if !panPattern.MatchString(strings.ToUpper(detail.PANNumber)) {
		status.Issues = append(status.Issues, "invalid PAN number")
	}

	status.Valid = len(status.Issues) == 0
	return status
}

func beneficiaryName(emp *employeedomain.Employee, detail *employeedomain.BankDetail) string {
	if detail != nil && strings.TrimSpace(detail.AccountHolderName) != "" {
		return detail.AccountHolderName
	}
	return emp.Name
}

func maskPayments(payments []domain.EmployeePayment) []domain.PaymentMasked {
	masked := make([]domain.PaymentMasked, 0, len(payments))
	for _, p := range payments {
		masked = append(masked, domain.PaymentMasked{
			Serial:          p.Serial,
			EmployeeID:      p.EmployeeID.String(),
			BeneficiaryName: p.BeneficiaryName,
			MaskedAccount:   masking.MaskSecret(p.AccountNumber),
			IFSCCode:        p.IFSCCode,
			Amount:          p.Amount,
			Narration:       p.Narration,
			ClaimCount:      p.ClaimCount,
		})
	}
	return masked
}
