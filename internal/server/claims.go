package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	"github.com/zenithhr/expensio/internal/principal"
	"github.com/zenithhr/expensio/pkg/db/pagination"
)

type submitClaimRequest struct {
	CategoryID     string `json:"category_id"`
	Amount         string `json:"amount"`
	Description    string `json:"description"`
	ExpenseDate    string `json:"expense_date"`
	HasReceipt     bool   `json:"has_receipt"`
	HasGPSLocation bool   `json:"has_gps_location"`
	IsReimbursable *bool  `json:"is_reimbursable"`
}

func (s *Server) SubmitClaim(c *gin.Context) {
	var req submitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	employeeID, _ := principal.EmployeeIDFromContext(c.Request.Context())

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	expenseDate, err := parseDate(req.ExpenseDate)
	if err != nil {
		AbortWithError(c, newValidationError("expense_date", "invalid_expense_date", "invalid expense date"))
		return
	}

	resp, err := s.claimSvc.Submit(c.Request.Context(), claimdomain.SubmitClaimRequest{
		EmployeeID:     employeeID,
		CategoryID:     strings.TrimSpace(req.CategoryID),
		Amount:         amount,
		Description:    strings.TrimSpace(req.Description),
		ExpenseDate:    expenseDate,
		HasReceipt:     req.HasReceipt,
		HasGPSLocation: req.HasGPSLocation,
		IsReimbursable: req.IsReimbursable,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	claimID := resp.Claim.ID.String()
	s.auditSvc.Record(c.Request.Context(), "claim.submit", "expense_claim", &claimID, map[string]any{
		"category_id": resp.Claim.CategoryID.String(),
		"amount":      resp.Claim.Amount.String(),
		"status":      string(resp.Claim.Status),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type validateClaimRequest struct {
	CategoryID     string `json:"category_id"`
	Amount         string `json:"amount"`
	ExpenseDate    string `json:"expense_date"`
	HasReceipt     bool   `json:"has_receipt"`
	HasGPSLocation bool   `json:"has_gps_location"`
}

// ValidateClaim is the dry-run evaluation: same checks as submission, no
// writes, so clients can pre-flight a claim.
func (s *Server) ValidateClaim(c *gin.Context) {
	var req validateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	employeeID, _ := principal.EmployeeIDFromContext(c.Request.Context())

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	expenseDate, err := parseDate(req.ExpenseDate)
	if err != nil {
		AbortWithError(c, newValidationError("expense_date", "invalid_expense_date", "invalid expense date"))
		return
	}

	resp, err := s.claimSvc.Validate(c.Request.Context(), claimdomain.ValidateClaimRequest{
		EmployeeID:     employeeID,
		CategoryID:     strings.TrimSpace(req.CategoryID),
		Amount:         amount,
		ExpenseDate:    expenseDate,
		HasReceipt:     req.HasReceipt,
		HasGPSLocation: req.HasGPSLocation,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClaims(c *gin.Context) {
	var query struct {
		pagination.Pagination
		EmployeeID string `form:"employee_id"`
		CategoryID string `form:"category_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.claimSvc.List(c.Request.Context(), claimdomain.ListClaimsRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		EmployeeID: strings.TrimSpace(query.EmployeeID),
		CategoryID: strings.TrimSpace(query.CategoryID),
		Status:     claimdomain.ClaimStatus(strings.ToUpper(strings.TrimSpace(query.Status))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClaimByID(c *gin.Context) {
	resp, err := s.claimSvc.GetByID(c.Request.Context(), claimdomain.GetClaimRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelClaim(c *gin.Context) {
	actorID, _ := principal.EmployeeIDFromContext(c.Request.Context())

	resp, err := s.claimSvc.Cancel(c.Request.Context(), claimdomain.CancelClaimRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		ActorID: actorID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	claimID := resp.ID.String()
	s.auditSvc.Record(c.Request.Context(), "claim.cancel", "expense_claim", &claimID, nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
