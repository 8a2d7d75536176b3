package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	reimbursementdomain "github.com/zenithhr/expensio/internal/reimbursement/domain"
)

type processBatchRequest struct {
	ClaimIDs          []string `json:"claim_ids"`
	PaymentMethod     string   `json:"payment_method"`
	ReimbursementDate string   `json:"reimbursement_date"`
	Notes             string   `json:"notes"`
}

func (s *Server) ProcessReimbursementBatch(c *gin.Context) {
	var req processBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var reimbursementDate *time.Time
	if raw := strings.TrimSpace(req.ReimbursementDate); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			AbortWithError(c, newValidationError("reimbursement_date", "invalid_reimbursement_date", "invalid reimbursement date"))
			return
		}
		reimbursementDate = &t
	}

	resp, err := s.reimbursementSvc.ProcessBatch(c.Request.Context(), reimbursementdomain.ProcessBatchRequest{
		ClaimIDs:          req.ClaimIDs,
		PaymentMethod:     reimbursementdomain.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		ReimbursementDate: reimbursementDate,
		Notes:             req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetReimbursementBatch(c *gin.Context) {
	resp, err := s.reimbursementSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReimbursementBatchClaims(c *gin.Context) {
	resp, err := s.reimbursementSvc.ClaimsForBatch(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
