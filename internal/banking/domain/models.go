// Package domain describes the bank integration surface: detail validation,
// payment file generation and simulated payment processing.
package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Provider selects a bank file format.
type Provider string

const (
	ProviderHDFC     Provider = "HDFC"
	ProviderICICI    Provider = "ICICI"
	ProviderYES      Provider = "YES"
	ProviderRegister Provider = "REGISTER"
)

// PaymentMode is the rail used when submitting the file to the bank.
type PaymentMode string

const (
	PaymentModeNEFT PaymentMode = "NEFT"
	PaymentModeRTGS PaymentMode = "RTGS"
	PaymentModeIMPS PaymentMode = "IMPS"
)

// BankDetailStatus is the per-employee validation result. Account and PAN
// are always masked before leaving the service.
type BankDetailStatus struct {
	EmployeeID        snowflake.ID `json:"employee_id"`
	EmployeeName      string       `json:"employee_name"`
	Valid             bool         `json:"valid"`
	Issues            []string     `json:"issues,omitempty"`
	AccountHolderName string       `json:"account_holder_name,omitempty"`
	MaskedAccount     string       `json:"masked_account,omitempty"`
	IFSCCode          string       `json:"ifsc_code,omitempty"`
	BankName          string       `json:"bank_name,omitempty"`
	MaskedPAN         string       `json:"masked_pan,omitempty"`
}

// EmployeePayment is one line of a bank file: an employee's aggregated
// payout within a batch. AccountNumber is unmasked here because the file
// needs it; response shaping masks it.
type EmployeePayment struct {
	Serial          int
	EmployeeID      snowflake.ID
	BeneficiaryName string
	AccountNumber   string
	IFSCCode        string
	Amount          decimal.Decimal
	Narration       string
	ClaimCount      int
}

// BankingFile is a generated payment file. Content is deterministic for a
// given batch and payment list.
type BankingFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// PaymentResponse is the outcome of a (simulated) payment submission.
type PaymentResponse struct {
	Success     bool   `json:"success"`
	ReferenceID string `json:"reference_id,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`
}
