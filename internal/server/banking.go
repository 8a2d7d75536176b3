package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bankingdomain "github.com/zenithhr/expensio/internal/banking/domain"
)

type validateBankDetailsRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

func (s *Server) ValidateBankDetails(c *gin.Context) {
	var req validateBankDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bankingSvc.ValidateBankDetails(c.Request.Context(), req.EmployeeIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type integrateBankingRequest struct {
	BatchID        string `json:"batch_id"`
	Provider       string `json:"provider"`
	PaymentMode    string `json:"payment_mode"`
	GenerateFile   bool   `json:"generate_file"`
	ProcessPayment bool   `json:"process_payment"`
}

func (s *Server) IntegrateBanking(c *gin.Context) {
	var req integrateBankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bankingSvc.Integrate(c.Request.Context(), bankingdomain.IntegrateRequest{
		BatchID:        strings.TrimSpace(req.BatchID),
		Provider:       bankingdomain.Provider(strings.ToUpper(strings.TrimSpace(req.Provider))),
		PaymentMode:    bankingdomain.PaymentMode(strings.ToUpper(strings.TrimSpace(req.PaymentMode))),
		GenerateFile:   req.GenerateFile,
		ProcessPayment: req.ProcessPayment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
