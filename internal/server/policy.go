package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
)

type createCategoryRequest struct {
	Name             string `json:"name"`
	Code             string `json:"code"`
	Currency         string `json:"currency"`
	MaxAmount        string `json:"max_amount"`
	RequiresReceipt  bool   `json:"requires_receipt"`
	RequiresApproval bool   `json:"requires_approval"`
	ApprovalLevels   int    `json:"approval_levels"`
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	domainReq := policydomain.CreateCategoryRequest{
		Name:             strings.TrimSpace(req.Name),
		Code:             strings.TrimSpace(req.Code),
		Currency:         strings.TrimSpace(req.Currency),
		RequiresReceipt:  req.RequiresReceipt,
		RequiresApproval: req.RequiresApproval,
		ApprovalLevels:   req.ApprovalLevels,
	}
	if raw := strings.TrimSpace(req.MaxAmount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("max_amount", "invalid_max_amount", "invalid max amount"))
			return
		}
		domainReq.MaxAmount = &amount
	}

	resp, err := s.policySvc.CreateCategory(c.Request.Context(), domainReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	categoryID := resp.ID.String()
	s.auditSvc.Record(c.Request.Context(), "policy.category.create", "expense_category", &categoryID, map[string]any{
		"code": resp.Code,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCategories(c *gin.Context) {
	resp, err := s.policySvc.ListCategories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createPolicyRuleRequest struct {
	CategoryID string          `json:"category_id"`
	RuleType   string          `json:"rule_type"`
	RuleValue  json.RawMessage `json:"rule_value"`
}

func (s *Server) CreatePolicyRule(c *gin.Context) {
	var req createPolicyRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.policySvc.CreateRule(c.Request.Context(), policydomain.CreateRuleRequest{
		CategoryID: strings.TrimSpace(req.CategoryID),
		RuleType:   policydomain.RuleType(strings.ToUpper(strings.TrimSpace(req.RuleType))),
		RuleValue:  req.RuleValue,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ruleID := resp.ID.String()
	s.auditSvc.Record(c.Request.Context(), "policy.rule.create", "policy_rule", &ruleID, map[string]any{
		"category_id": resp.CategoryID.String(),
		"rule_type":   string(resp.RuleType),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPolicyRules(c *gin.Context) {
	resp, err := s.policySvc.ListRules(c.Request.Context(), strings.TrimSpace(c.Query("category_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePolicyRuleRequest struct {
	RuleValue json.RawMessage `json:"rule_value"`
	IsActive  *bool           `json:"is_active"`
}

func (s *Server) UpdatePolicyRule(c *gin.Context) {
	var req updatePolicyRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.policySvc.UpdateRule(c.Request.Context(), policydomain.UpdateRuleRequest{
		RuleID:    strings.TrimSpace(c.Param("id")),
		RuleValue: req.RuleValue,
		IsActive:  req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ruleID := resp.ID.String()
	s.auditSvc.Record(c.Request.Context(), "policy.rule.update", "policy_rule", &ruleID, map[string]any{
		"is_active": resp.IsActive,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
