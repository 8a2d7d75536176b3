package service

import (
	"context"
	"fmt"
	"time"

	"github.com/zenithhr/expensio/internal/policy/domain"
)

// warnThreshold is the share of a frequency limit at which a warning is
// emitted even though the claim is still allowed.
const warnThreshold = 0.8

func (s *Service) Evaluate(ctx context.Context, req domain.EvaluateRequest) (domain.Evaluation, error) {
	result := domain.Evaluation{
		Violations: []string{},
		Warnings:   []string{},
	}

	category, err := s.repo.FindCategoryByID(ctx, s.db, req.CategoryID)
	if err != nil {
		return domain.Evaluation{}, err
	}
	if category == nil || !category.IsActive {
		result.Violations = append(result.Violations, "expense category is inactive or does not exist")
		return result, nil
	}
	result.Category = category

	// Category-level checks run before configured rules.
	if category.MaxAmount != nil && req.Amount.GreaterThan(*category.MaxAmount) {
		result.Violations = append(result.Violations,
			fmt.Sprintf("amount %s exceeds category limit of %s", req.Amount.String(), category.MaxAmount.String()))
	}
	if category.RequiresReceipt && !req.HasReceipt {
		result.Violations = append(result.Violations, "receipt is required for this category")
	}

	if category.RequiresApproval {
		result.RequiresApproval = true
		result.RequiredApprovalLevels = category.ApprovalLevels
	}

	rules, err := s.repo.FindActiveRules(ctx, s.db, category.ID)
	if err != nil {
		return domain.Evaluation{}, err
	}

	for _, rule := range rules {
		cfg, err := rule.DecodeConfig()
		if err != nil {
			return domain.Evaluation{}, fmt.Errorf("rule %s: %w", rule.ID, err)
		}

		switch c := cfg.(type) {
		case domain.AmountLimitConfig:
			if req.Amount.GreaterThan(c.MaxAmount) {
				result.Violations = append(result.Violations,
					fmt.Sprintf("amount %s exceeds rule limit of %s", req.Amount.String(), c.MaxAmount.String()))
			}
			if c.MinAmount != nil && req.Amount.LessThan(*c.MinAmount) {
				result.Violations = append(result.Violations,
					fmt.Sprintf("amount %s is below the minimum of %s", req.Amount.String(), c.MinAmount.String()))
			}

		case domain.ReceiptRequiredConfig:
			if !req.HasReceipt {
				result.Violations = append(result.Violations, "receipt is required by policy rule")
			}

		case domain.GPSRequiredConfig:
			if !req.HasGPSLocation {
				result.Violations = append(result.Violations, "GPS location is required by policy rule")
			}

		case domain.FrequencyLimitConfig:
			from, to := frequencyWindow(c.Period, req.ExpenseDate)
			count, err := s.claims.CountActiveClaims(ctx, s.db, req.EmployeeID, category.ID, from, to)
			if err != nil {
				return domain.Evaluation{}, err
			}
			// Count is taken before this claim is added.
			if count >= int64(c.MaxCount) {
				result.Violations = append(result.Violations,
					fmt.Sprintf("claim limit of %d per %s period reached (%d already filed)",
						c.MaxCount, c.Period, count))
			} else if float64(count) >= warnThreshold*float64(c.MaxCount) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("approaching claim limit: %d of %d used this %s period",
						count, c.MaxCount, c.Period))
			}

		case domain.ApprovalRequiredConfig:
			if req.Amount.GreaterThanOrEqual(c.MinAmount) {
				result.RequiresApproval = true
				levels := c.Levels
				if category.ApprovalLevels > levels {
					levels = category.ApprovalLevels
				}
				if levels > result.RequiredApprovalLevels {
					result.RequiredApprovalLevels = levels
				}
			}
		}
	}

	result.IsValid = len(result.Violations) == 0
	return result, nil
}

// frequencyWindow returns the half-open [from, to) window the period spans
// around the expense date. Weeks run Sunday through Saturday.
func frequencyWindow(period domain.FrequencyPeriod, date time.Time) (time.Time, time.Time) {
	date = date.UTC()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case domain.PeriodDaily:
		return day, day.AddDate(0, 0, 1)
	case domain.PeriodWeekly:
		weekStart := day.AddDate(0, 0, -int(day.Weekday()))
		return weekStart, weekStart.AddDate(0, 0, 7)
	default: // MONTHLY
		monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		return monthStart, monthStart.AddDate(0, 1, 0)
	}
}
