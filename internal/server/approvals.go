package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/zenithhr/expensio/internal/approval/domain"
	"github.com/zenithhr/expensio/internal/principal"
)

type approvalDecisionRequest struct {
	ClaimID  string `json:"claim_id"`
	Decision string `json:"decision"`
	Comments string `json:"comments"`
}

func (s *Server) RecordApprovalDecision(c *gin.Context) {
	var req approvalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	approverID, _ := principal.EmployeeIDFromContext(c.Request.Context())

	resp, err := s.approvalSvc.RecordDecision(c.Request.Context(), approvaldomain.DecisionRequest{
		ClaimID:    strings.TrimSpace(req.ClaimID),
		ApproverID: approverID,
		Decision:   approvaldomain.Decision(strings.ToUpper(strings.TrimSpace(req.Decision))),
		Comments:   strings.TrimSpace(req.Comments),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	claimID := resp.Approval.ClaimID.String()
	s.auditSvc.Record(c.Request.Context(), "approval.decision", "expense_claim", &claimID, map[string]any{
		"decision":     string(resp.Approval.Status),
		"level":        resp.Approval.Level,
		"claim_status": string(resp.ClaimStatus),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPendingApprovals(c *gin.Context) {
	approverID, _ := principal.EmployeeIDFromContext(c.Request.Context())

	resp, err := s.approvalSvc.ListPendingForApprover(c.Request.Context(), approverID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClaimApprovals(c *gin.Context) {
	resp, err := s.approvalSvc.ListForClaim(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
