package service

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/zenithhr/expensio/internal/banking/domain"
)

func filePayments() []domain.EmployeePayment {
	return []domain.EmployeePayment{
		{
			Serial:          1,
			EmployeeID:      snowflake.ID(101),
			BeneficiaryName: "Alice Kumar",
			AccountNumber:   "123456789012",
			IFSCCode:        "HDFC0001234",
			Amount:          decimal.RequireFromString("150.5"),
			Narration:       "Expense reimbursement RB-TEST",
			ClaimCount:      2,
		},
		{
			Serial:          2,
			EmployeeID:      snowflake.ID(102),
			BeneficiaryName: "Bob Singh",
			AccountNumber:   "987654321000",
			IFSCCode:        "ICIC0004321",
			Amount:          decimal.RequireFromString("200"),
			Narration:       "Expense reimbursement RB-TEST",
			ClaimCount:      1,
		},
	}
}

func TestBuildHDFCFile(t *testing.T) {
	file, err := buildFile(domain.ProviderHDFC, "RB-TEST", filePayments())
	require.NoError(t, err)

	assert.Equal(t, "hdfc_payments_rb-test.txt", file.FileName)
	assert.Equal(t, contentTypeText, file.ContentType)

	want := "1|Alice Kumar|123456789012|HDFC0001234|150.50|Expense reimbursement RB-TEST\n" +
		"2|Bob Singh|987654321000|ICIC0004321|200.00|Expense reimbursement RB-TEST\n"
	assert.Equal(t, want, string(file.Content))
}

func TestBuildICICIFile(t *testing.T) {
	file, err := buildFile(domain.ProviderICICI, "RB-TEST", filePayments())
	require.NoError(t, err)

	assert.Equal(t, "icici_payments_rb-test.csv", file.FileName)
	assert.Equal(t, contentTypeCSV, file.ContentType)

	want := "SERIAL,BENEFICIARY,ACCOUNT,IFSC,AMOUNT,NARRATION\n" +
		"1,Alice Kumar,123456789012,HDFC0001234,150.50,Expense reimbursement RB-TEST\n" +
		"2,Bob Singh,987654321000,ICIC0004321,200.00,Expense reimbursement RB-TEST\n"
	assert.Equal(t, want, string(file.Content))
}

func TestBuildYESFile(t *testing.T) {
	file, err := buildFile(domain.ProviderYES, "RB-TEST", filePayments())
	require.NoError(t, err)

	assert.Equal(t, "yes_payments_rb-test.json", file.FileName)
	assert.Equal(t, contentTypeJSON, file.ContentType)

	var decoded yesFile
	require.NoError(t, json.Unmarshal(file.Content, &decoded))
	assert.Equal(t, "RB-TEST", decoded.BatchReference)
	assert.Equal(t, 2, decoded.PaymentCount)
	require.Len(t, decoded.Payments, 2)
	assert.Equal(t, "150.50", decoded.Payments[0].Amount)
	assert.Equal(t, "987654321000", decoded.Payments[1].AccountNumber)
}

func TestBuildRegisterFile(t *testing.T) {
	file, err := buildFile(domain.ProviderRegister, "RB-TEST", filePayments())
	require.NoError(t, err)

	assert.Equal(t, "payment_register_rb-test.xlsx", file.FileName)
	assert.Equal(t, contentTypeXLSX, file.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue("Payments", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Serial", header)

	beneficiary, err := book.GetCellValue("Payments", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Alice Kumar", beneficiary)

	amount, err := book.GetCellValue("Payments", "E3")
	require.NoError(t, err)
	assert.Equal(t, "200.00", amount)
}

func TestBuildFileIsDeterministic(t *testing.T) {
	for _, provider := range []domain.Provider{domain.ProviderHDFC, domain.ProviderICICI, domain.ProviderYES} {
		first, err := buildFile(provider, "RB-TEST", filePayments())
		require.NoError(t, err)
		second, err := buildFile(provider, "RB-TEST", filePayments())
		require.NoError(t, err)
		assert.Equal(t, first.Content, second.Content, "provider %s", provider)
	}
}

func TestBuildFileUnknownProvider(t *testing.T) {
	_, err := buildFile(domain.Provider("AXIS"), "RB-TEST", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
}
