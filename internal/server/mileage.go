package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	mileagedomain "github.com/zenithhr/expensio/internal/mileage/domain"
)

type addDistanceLogRequest struct {
	EmployeeID string `json:"employee_id"`
	LogDate    string `json:"log_date"`
	DistanceKM string `json:"distance_km"`
}

func (s *Server) AddDistanceLog(c *gin.Context) {
	var req addDistanceLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	logDate, err := parseDate(req.LogDate)
	if err != nil {
		AbortWithError(c, newValidationError("log_date", "invalid_log_date", "invalid log date"))
		return
	}

	distance, err := decimal.NewFromString(strings.TrimSpace(req.DistanceKM))
	if err != nil {
		AbortWithError(c, newValidationError("distance_km", "invalid_distance", "invalid distance"))
		return
	}

	resp, err := s.mileageSvc.AddDistanceLog(c.Request.Context(), mileagedomain.AddDistanceLogRequest{
		EmployeeID: strings.TrimSpace(req.EmployeeID),
		LogDate:    logDate,
		DistanceKM: distance,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type generateMileageRequest struct {
	EmployeeID      string `json:"employee_id"`
	Month           int    `json:"month"`
	Year            int    `json:"year"`
	ForceRegenerate bool   `json:"force_regenerate"`
}

func (s *Server) GenerateMileageClaim(c *gin.Context) {
	var req generateMileageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.mileageSvc.Generate(c.Request.Context(), mileagedomain.GenerateRequest{
		EmployeeID:      strings.TrimSpace(req.EmployeeID),
		Month:           req.Month,
		Year:            req.Year,
		ForceRegenerate: req.ForceRegenerate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), "mileage.generate", "monthly_petrol_expense", nil, map[string]any{
		"employee_id": req.EmployeeID,
		"month":       req.Month,
		"year":        req.Year,
		"outcome":     string(resp.Outcome),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type generateMileageBatchRequest struct {
	EmployeeIDs     []string `json:"employee_ids"`
	Month           int      `json:"month"`
	Year            int      `json:"year"`
	ForceRegenerate bool     `json:"force_regenerate"`
}

func (s *Server) GenerateMileageClaims(c *gin.Context) {
	var req generateMileageBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.mileageSvc.GenerateForEmployees(c.Request.Context(), mileagedomain.BatchGenerateRequest{
		EmployeeIDs:     req.EmployeeIDs,
		Month:           req.Month,
		Year:            req.Year,
		ForceRegenerate: req.ForceRegenerate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), "mileage.generate_batch", "monthly_petrol_expense", nil, map[string]any{
		"month":     req.Month,
		"year":      req.Year,
		"generated": resp.Generated,
		"skipped":   resp.Skipped,
		"failed":    resp.Failed,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createPetrolConfigRequest struct {
	RatePerKM     string `json:"rate_per_km"`
	EffectiveFrom string `json:"effective_from"`
	EffectiveTo   string `json:"effective_to"`
}

func (s *Server) CreatePetrolConfig(c *gin.Context) {
	var req createPetrolConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(req.RatePerKM))
	if err != nil {
		AbortWithError(c, newValidationError("rate_per_km", "invalid_rate", "invalid rate"))
		return
	}

	effectiveFrom, err := parseDate(req.EffectiveFrom)
	if err != nil {
		AbortWithError(c, newValidationError("effective_from", "invalid_effective_range", "invalid effective_from"))
		return
	}

	var effectiveTo *time.Time
	if raw := strings.TrimSpace(req.EffectiveTo); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			AbortWithError(c, newValidationError("effective_to", "invalid_effective_range", "invalid effective_to"))
			return
		}
		effectiveTo = &t
	}

	resp, err := s.mileageSvc.CreateRateConfig(c.Request.Context(), mileagedomain.CreateRateConfigRequest{
		RatePerKM:     rate,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	configID := resp.ID.String()
	s.auditSvc.Record(c.Request.Context(), "mileage.rate_config.create", "petrol_expense_config", &configID, map[string]any{
		"rate_per_km": resp.RatePerKM.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCurrentPetrolConfig(c *gin.Context) {
	resp, err := s.mileageSvc.CurrentRate(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
