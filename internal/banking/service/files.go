package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/zenithhr/expensio/internal/banking/domain"
)

const (
	contentTypeText = "text/plain"
	contentTypeCSV  = "text/csv"
	contentTypeJSON = "application/json"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// buildFile renders the payment list into the provider's format. Output is
// deterministic: the payment list is already ordered by employee ID and no
// timestamps are embedded.
func buildFile(provider domain.Provider, batchNumber string, payments []domain.EmployeePayment) (*domain.BankingFile, error) {
	switch provider {
	case domain.ProviderHDFC:
		return buildHDFCFile(batchNumber, payments)
	case domain.ProviderICICI:
		return buildICICIFile(batchNumber, payments)
	case domain.ProviderYES:
		return buildYESFile(batchNumber, payments)
	case domain.ProviderRegister:
		return buildRegisterFile(batchNumber, payments)
	default:
		return nil, domain.ErrInvalidProvider
	}
}

func buildHDFCFile(batchNumber string, payments []domain.EmployeePayment) (*domain.BankingFile, error) {
	var buf bytes.Buffer
	for _, p := range payments {
		fmt.Fprintf(&buf, "%d|%s|%s|%s|%s|%s\n",
			p.Serial, p.BeneficiaryName, p.AccountNumber, p.IFSCCode,
			p.Amount.StringFixed(2), p.Narration)
	}

	return &domain.BankingFile{
		FileName:    fmt.Sprintf("hdfc_payments_%s.txt", strings.ToLower(batchNumber)),
		ContentType: contentTypeText,
		Content:     buf.Bytes(),
	}, nil
}

func buildICICIFile(batchNumber string, payments []domain.EmployeePayment) (*domain.BankingFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"SERIAL", "BENEFICIARY", "ACCOUNT", "IFSC", "AMOUNT", "NARRATION"}); err != nil {
		return nil, err
	}
	for _, p := range payments {
		record := []string{
			strconv.Itoa(p.Serial),
			p.BeneficiaryName,
			p.AccountNumber,
			p.IFSCCode,
			p.Amount.StringFixed(2),
			p.Narration,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &domain.BankingFile{
		FileName:    fmt.Sprintf("icici_payments_%s.csv", strings.ToLower(batchNumber)),
		ContentType: contentTypeCSV,
		Content:     buf.Bytes(),
	}, nil
}

type yesPayment struct {
	Serial          int    `json:"serial"`
	BeneficiaryName string `json:"beneficiary_name"`
	AccountNumber   string `json:"account_number"`
	IFSCCode        string `json:"ifsc_code"`
	Amount          string `json:"amount"`
	Narration       string `json:"narration"`
}

type yesFile struct {
	BatchReference string       `json:"batch_reference"`
	PaymentCount   int          `json:"payment_count"`
	Payments       []yesPayment `json:"payments"`
}

func buildYESFile(batchNumber string, payments []domain.EmployeePayment) (*domain.BankingFile, error) {
	file := yesFile{
		BatchReference: batchNumber,
		PaymentCount:   len(payments),
		Payments:       make([]yesPayment, 0, len(payments)),
	}
	for _, p := range payments {
		file.Payments = append(file.Payments, yesPayment{
			Serial:          p.Serial,
			BeneficiaryName: p.BeneficiaryName,
			AccountNumber:   p.AccountNumber,
			IFSCCode:        p.IFSCCode,
			Amount:          p.Amount.StringFixed(2),
			Narration:       p.Narration,
		})
	}

	content, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, err
	}

	return &domain.BankingFile{
		FileName:    fmt.Sprintf("yes_payments_%s.json", strings.ToLower(batchNumber)),
		ContentType: contentTypeJSON,
		Content:     content,
	}, nil
}

func buildRegisterFile(batchNumber string, payments []domain.EmployeePayment) (*domain.BankingFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Serial", "Beneficiary", "Account", "IFSC", "Amount", "Narration"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, p := range payments {
		values := []any{
			p.Serial,
			p.BeneficiaryName,
			p.AccountNumber,
			p.IFSCCode,
			p.Amount.StringFixed(2),
			p.Narration,
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return &domain.BankingFile{
		FileName:    fmt.Sprintf("payment_register_%s.xlsx", strings.ToLower(batchNumber)),
		ContentType: contentTypeXLSX,
		Content:     buf.Bytes(),
	}, nil
}
