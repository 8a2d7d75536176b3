package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	approvaldomain "github.com/zenithhr/expensio/internal/approval/domain"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	"github.com/zenithhr/expensio/internal/clock"
	"github.com/zenithhr/expensio/internal/metrics"
	"github.com/zenithhr/expensio/internal/mileage/domain"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	pkgdb "github.com/zenithhr/expensio/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PetrolCategoryCode identifies the expense category generated mileage
// claims are filed under.
const PetrolCategoryCode = "PETROL"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Claims    claimdomain.Repository
	Policies  policydomain.Repository
	Approvals approvaldomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	claims    claimdomain.Repository
	policies  policydomain.Repository
	approvals approvaldomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("mileage.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		claims:    p.Claims,
		policies:  p.Policies,
		approvals: p.Approvals,
		metrics:   p.Metrics,
	}
}

func (s *Service) AddDistanceLog(ctx context.Context, req domain.AddDistanceLogRequest) (domain.DistanceLog, error) {
	employeeID, err := s.parseID(req.EmployeeID)
	if err != nil {
		return domain.DistanceLog{}, err
	}
	if !req.DistanceKM.IsPositive() {
		return domain.DistanceLog{}, domain.ErrInvalidDistance
	}
	if req.LogDate.IsZero() {
		return domain.DistanceLog{}, domain.ErrInvalidMonth
	}

	log := domain.DistanceLog{
		ID:         s.genID.Generate(),
		EmployeeID: employeeID,
		LogDate:    req.LogDate.UTC(),
		DistanceKM: req.DistanceKM,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.InsertDistanceLog(ctx, s.db, &log); err != nil {
		return domain.DistanceLog{}, err
	}
	return log, nil
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	employeeID, err := s.parseID(req.EmployeeID)
	if err != nil {
		return domain.GenerateResult{}, err
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
		return domain.GenerateResult{}, domain.ErrInvalidMonth
	}

	var result domain.GenerateResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindMonthly(ctx, tx, employeeID, req.Month, req.Year)
		if err != nil {
			return err
		}
		if existing != nil {
			if !req.ForceRegenerate {
				result = domain.GenerateResult{Outcome: domain.OutcomeSkippedExists, Monthly: existing}
				return nil
			}
			if err := s.tearDown(ctx, tx, existing); err != nil {
				return err
			}
		}

		monthStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, 0)

		totalDistance, err := s.repo.SumDistance(ctx, tx, employeeID, monthStart, monthEnd)
		if err != nil {
			return err
		}
		if !totalDistance.IsPositive() {
			result = domain.GenerateResult{Outcome: domain.OutcomeSkippedNoDistance}
			return nil
		}

		rate, err := s.repo.FindCurrentRate(ctx, tx, s.clock.Now())
		if err != nil {
			return err
		}
		if rate == nil {
			return domain.ErrNoActiveRateConfig
		}

		category, err := s.policies.FindCategoryByCode(ctx, tx, PetrolCategoryCode)
		if err != nil {
			return err
		}
		if category == nil || !category.IsActive {
			return domain.ErrPetrolCategoryMissing
		}

		totalAmount := totalDistance.Mul(rate.RatePerKM).Round(2)
		now := time.Now().UTC()

		monthly := domain.MonthlyPetrolExpense{
			ID:            s.genID.Generate(),
			EmployeeID:    employeeID,
			Month:         req.Month,
			Year:          req.Year,
			TotalDistance: totalDistance,
			RatePerKM:     rate.RatePerKM,
			TotalAmount:   totalAmount,
			GeneratedAt:   now,
		}
		if err := s.repo.InsertMonthly(ctx, tx, &monthly); err != nil {
			return err
		}

		status := claimdomain.ClaimStatusPending
		if !category.RequiresApproval {
			status = claimdomain.ClaimStatusApproved
		}

		distance := totalDistance
		claim := claimdomain.ExpenseClaim{
			ID:         s.genID.Generate(),
			EmployeeID: employeeID,
			CategoryID: category.ID,
			Amount:     totalAmount,
			Currency:   category.Currency,
			Description: fmt.Sprintf("Petrol expense for %s %d (%s km)",
				time.Month(req.Month), req.Year, totalDistance.String()),
			ExpenseDate:      monthEnd.AddDate(0, 0, -1),
			Status:           status,
			IsReimbursable:   true,
			IsPetrolExpense:  true,
			HasGPSLocation:   true,
			DistanceTraveled: &distance,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.claims.Insert(ctx, tx, &claim); err != nil {
			return err
		}

		if err := s.repo.LinkClaim(ctx, tx, monthly.ID, claim.ID); err != nil {
			return err
		}
		claimID := claim.ID
		monthly.ClaimID = &claimID

		if category.RequiresApproval {
			if _, err := s.approvals.SetupChain(ctx, tx, claim.ID, employeeID, category.ApprovalLevels); err != nil {
				return err
			}
		}

		result = domain.GenerateResult{Outcome: domain.OutcomeGenerated, Monthly: &monthly}
		return nil
	})
	if err != nil {
		// A concurrent trigger may have generated the same employee-month;
		// the idempotency key makes that a skip, not a failure.
		if pkgdb.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindMonthly(ctx, s.db, employeeID, req.Month, req.Year)
			if findErr == nil && existing != nil {
				return domain.GenerateResult{Outcome: domain.OutcomeSkippedExists, Monthly: existing}, nil
			}
		}
		return domain.GenerateResult{}, err
	}

	s.countGeneration(result.Outcome)
	return result, nil
}

func (s *Service) GenerateForEmployees(ctx context.Context, req domain.BatchGenerateRequest) (domain.BatchGenerateResult, error) {
	var result domain.BatchGenerateResult
	for _, employeeID := range req.EmployeeIDs {
		generated, err := s.Generate(ctx, domain.GenerateRequest{
			EmployeeID:      employeeID,
			Month:           req.Month,
			Year:            req.Year,
			ForceRegenerate: req.ForceRegenerate,
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.ItemError{
				EmployeeID: employeeID,
				Reason:     err.Error(),
			})
			s.log.Warn("mileage generation failed for employee",
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
			continue
		}
		if generated.Outcome == domain.OutcomeGenerated {
			result.Generated++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

func (s *Service) CreateRateConfig(ctx context.Context, req domain.CreateRateConfigRequest) (domain.PetrolExpenseConfig, error) {
	if !req.RatePerKM.IsPositive() {
		return domain.PetrolExpenseConfig{}, domain.ErrInvalidRate
	}
	if req.EffectiveFrom.IsZero() {
		return domain.PetrolExpenseConfig{}, domain.ErrInvalidEffectiveRange
	}
	if req.EffectiveTo != nil && !req.EffectiveTo.After(req.EffectiveFrom) {
		return domain.PetrolExpenseConfig{}, domain.ErrInvalidEffectiveRange
	}

	config := domain.PetrolExpenseConfig{
		ID:            s.genID.Generate(),
		RatePerKM:     req.RatePerKM,
		EffectiveFrom: req.EffectiveFrom.UTC(),
		EffectiveTo:   req.EffectiveTo,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.InsertRateConfig(ctx, s.db, &config); err != nil {
		return domain.PetrolExpenseConfig{}, err
	}
	return config, nil
}

func (s *Service) CurrentRate(ctx context.Context) (domain.PetrolExpenseConfig, error) {
	rate, err := s.repo.FindCurrentRate(ctx, s.db, s.clock.Now())
	if err != nil {
		return domain.PetrolExpenseConfig{}, err
	}
	if rate == nil {
		return domain.PetrolExpenseConfig{}, domain.ErrNoActiveRateConfig
	}
	return *rate, nil
}

// tearDown removes a prior generation: approvals first, then the claim,
// then the aggregate.
func (s *Service) tearDown(ctx context.Context, tx *gorm.DB, monthly *domain.MonthlyPetrolExpense) error {
	if monthly.ClaimID != nil {
		if err := s.approvals.DeleteForClaim(ctx, tx, *monthly.ClaimID); err != nil {
			return err
		}
		if err := s.claims.DeleteByID(ctx, tx, *monthly.ClaimID); err != nil {
			return err
		}
	}
	return s.repo.DeleteMonthly(ctx, tx, monthly.ID)
}

func (s *Service) countGeneration(outcome domain.GenerateOutcome) {
	if s.metrics != nil {
		s.metrics.MileageGenerated.WithLabelValues(string(outcome)).Inc()
	}
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
