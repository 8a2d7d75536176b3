package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	"github.com/zenithhr/expensio/internal/principal"
)

type createEmployeeRequest struct {
	EmployeeCode string `json:"employee_code"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	ManagerID    string `json:"manager_id"`
}

func (s *Server) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	domainReq := employeedomain.CreateEmployeeRequest{
		EmployeeCode: strings.TrimSpace(req.EmployeeCode),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Role:         employeedomain.Role(strings.ToUpper(strings.TrimSpace(req.Role))),
	}
	if raw := strings.TrimSpace(req.ManagerID); raw != "" {
		id, ok := principal.ParseEmployeeID(raw)
		if !ok {
			AbortWithError(c, newValidationError("manager_id", "invalid_manager_id", "invalid manager id"))
			return
		}
		domainReq.ManagerID = &id
	}

	resp, err := s.employeeSvc.Create(c.Request.Context(), domainReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	employeeID := resp.ID.String()
	s.auditSvc.Record(c.Request.Context(), "employee.create", "employee", &employeeID, map[string]any{
		"employee_code": resp.EmployeeCode,
		"role":          string(resp.Role),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEmployeeByID(c *gin.Context) {
	resp, err := s.employeeSvc.GetByID(c.Request.Context(), employeedomain.GetEmployeeRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setBankDetailRequest struct {
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
	BankName          string `json:"bank_name"`
	PANNumber         string `json:"pan_number"`
}

func (s *Server) SetBankDetail(c *gin.Context) {
	var req setBankDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.SetBankDetail(c.Request.Context(), employeedomain.SetBankDetailRequest{
		EmployeeID:        strings.TrimSpace(c.Param("id")),
		AccountHolderName: strings.TrimSpace(req.AccountHolderName),
		AccountNumber:     strings.TrimSpace(req.AccountNumber),
		IFSCCode:          strings.TrimSpace(req.IFSCCode),
		BankName:          strings.TrimSpace(req.BankName),
		PANNumber:         strings.TrimSpace(req.PANNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	employeeID := resp.EmployeeID.String()
	s.auditSvc.Record(c.Request.Context(), "employee.bank_detail.set", "employee", &employeeID, map[string]any{
		"account_number": resp.AccountNumber,
		"pan_number":     resp.PANNumber,
		"ifsc_code":      resp.IFSCCode,
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"employee_id":         resp.EmployeeID.String(),
		"account_holder_name": resp.AccountHolderName,
		"bank_name":           resp.BankName,
		"ifsc_code":           resp.IFSCCode,
	}})
}
