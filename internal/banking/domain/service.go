package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type IntegrateRequest struct {
	BatchID        string      `json:"batch_id"`
	Provider       Provider    `json:"provider"`
	PaymentMode    PaymentMode `json:"payment_mode"`
	GenerateFile   bool        `json:"generate_file"`
	ProcessPayment bool        `json:"process_payment"`
}

// PaymentMasked is an EmployeePayment shaped for API responses.
type PaymentMasked struct {
	Serial          int             `json:"serial"`
	EmployeeID      string          `json:"employee_id"`
	BeneficiaryName string          `json:"beneficiary_name"`
	MaskedAccount   string          `json:"masked_account"`
	IFSCCode        string          `json:"ifsc_code"`
	Amount          decimal.Decimal `json:"amount"`
	Narration       string          `json:"narration"`
	ClaimCount      int             `json:"claim_count"`
}

type IntegrateResult struct {
	BatchNumber string           `json:"batch_number"`
	BatchStatus string           `json:"batch_status"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Payments    []PaymentMasked  `json:"payments"`
	File        *BankingFile     `json:"file,omitempty"`
	Payment     *PaymentResponse `json:"payment,omitempty"`
}

type Service interface {
	// ValidateBankDetails checks each employee's stored details for payout
	// readiness and returns masked per-employee results.
	ValidateBankDetails(ctx context.Context, employeeIDs []string) ([]BankDetailStatus, error)

	// Integrate builds the payment list for a PROCESSING batch and,
	// optionally, a bank file and a simulated payment run. Any employee with
	// incomplete details fails the whole call.
	Integrate(ctx context.Context, req IntegrateRequest) (*IntegrateResult, error)
}

// PaymentProcessor submits a payment list to a bank rail.
type PaymentProcessor interface {
	Process(ctx context.Context, provider Provider, mode PaymentMode, batchRef string, payments []EmployeePayment) (*PaymentResponse, error)
}

// IncompleteDetailsError fails an integration closed: it reports every
// employee whose details block the batch and the total that would have been
// payable to the valid ones.
type IncompleteDetailsError struct {
	Invalid      []BankDetailStatus
	PayableTotal decimal.Decimal
}

func (e *IncompleteDetailsError) Error() string {
	return fmt.Sprintf("incomplete_bank_details: %d employee(s)", len(e.Invalid))
}

var (
	ErrInvalidProvider    = errors.New("invalid_provider")
	ErrInvalidPaymentMode = errors.New("invalid_payment_mode")
	ErrNoEmployees        = errors.New("no_employees_requested")
	ErrNoPayments         = errors.New("batch_has_no_claims")
)
