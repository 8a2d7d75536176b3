package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/approval/domain"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	"github.com/zenithhr/expensio/internal/metrics"
	notificationdomain "github.com/zenithhr/expensio/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	Claims        claimdomain.Repository
	Employees     employeedomain.Repository
	Pool          domain.ApproverPool
	Notifications notificationdomain.Service `optional:"true"`
	Metrics       *metrics.Metrics           `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	claims        claimdomain.Repository
	employees     employeedomain.Repository
	pool          domain.ApproverPool
	notifications notificationdomain.Service
	metrics       *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("approval.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		claims:        p.Claims,
		employees:     p.Employees,
		pool:          p.Pool,
		notifications: p.Notifications,
		metrics:       p.Metrics,
	}
}

func (s *Service) SetupChain(ctx context.Context, db *gorm.DB, claimID, employeeID snowflake.ID, requiredLevels int) ([]snowflake.ID, error) {
	approverIDs, err := s.ResolveApprovers(ctx, employeeID, requiredLevels)
	if err != nil {
		return nil, err
	}
	if len(approverIDs) == 0 {
		// An approval chain was demanded but nobody can serve on it. This is
		// an administrative gap, not a bad request.
		return nil, domain.ErrNoEligibleApprovers
	}

	now := time.Now().UTC()
	approvals := make([]*domain.ExpenseApproval, 0, len(approverIDs))
	for i, approverID := range approverIDs {
		approvals = append(approvals, &domain.ExpenseApproval{
			ID:         s.genID.Generate(),
			ClaimID:    claimID,
			Level:      i + 1,
			ApproverID: approverID,
			Status:     domain.ApprovalStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if err := s.repo.InsertAll(ctx, db, approvals); err != nil {
		return nil, err
	}
	return approverIDs, nil
}

func (s *Service) RecordDecision(ctx context.Context, req domain.DecisionRequest) (domain.DecisionResult, error) {
	claimID, err := s.parseID(req.ClaimID)
	if err != nil {
		return domain.DecisionResult{}, err
	}

	var status domain.ApprovalStatus
	switch req.Decision {
	case domain.DecisionApproved:
		status = domain.ApprovalStatusApproved
	case domain.DecisionRejected:
		status = domain.ApprovalStatusRejected
	default:
		return domain.DecisionResult{}, domain.ErrInvalidDecision
	}

	var result domain.DecisionResult
	var claim *claimdomain.ExpenseClaim
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim, err = s.claims.FindByID(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return domain.ErrClaimNotFound
		}
		if claim.Status != claimdomain.ClaimStatusPending {
			return domain.ErrClaimNotPending
		}

		now := time.Now().UTC()
		updated, err := s.repo.MarkDecision(ctx, tx, claimID, req.ApproverID, status, strings.TrimSpace(req.Comments), now)
		if err != nil {
			return err
		}
		if !updated {
			return domain.ErrNoPendingApproval
		}

		approvals, err := s.repo.FindByClaimID(ctx, tx, claimID)
		if err != nil {
			return err
		}

		claimStatus := aggregateStatus(approvals)
		if claimStatus != claimdomain.ClaimStatusPending {
			// The conditional update serializes concurrent decisions: only
			// one transition out of PENDING can win.
			won, err := s.claims.UpdateStatusIfPending(ctx, tx, claimID, claimStatus)
			if err != nil {
				return err
			}
			if !won {
				return domain.ErrClaimNotPending
			}
		}

		for _, approval := range approvals {
			if approval.ClaimID == claimID && approval.ApproverID == req.ApproverID && approval.Status == status {
				result.Approval = approval
				break
			}
		}
		result.ClaimStatus = claimStatus
		return nil
	})
	if err != nil {
		return domain.DecisionResult{}, err
	}

	if s.metrics != nil {
		s.metrics.ApprovalDecisions.WithLabelValues(strings.ToLower(string(req.Decision))).Inc()
	}

	if result.ClaimStatus != claimdomain.ClaimStatusPending {
		s.notifyOutcome(ctx, claim, result.ClaimStatus, strings.TrimSpace(req.Comments))
	}

	s.log.Info("approval decision recorded",
		zap.String("claim_id", claimID.String()),
		zap.String("approver_id", req.ApproverID.String()),
		zap.String("decision", string(req.Decision)),
		zap.String("claim_status", string(result.ClaimStatus)),
	)
	return result, nil
}

// notifyOutcome tells the claim owner their claim reached a terminal state.
// Best-effort: the decision is already committed, so delivery problems are
// only logged.
func (s *Service) notifyOutcome(ctx context.Context, claim *claimdomain.ExpenseClaim, status claimdomain.ClaimStatus, comments string) {
	if s.notifications == nil {
		return
	}

	owner, err := s.employees.FindByID(ctx, s.db, claim.EmployeeID)
	if err != nil || owner == nil {
		s.log.Warn("failed to load claim owner for notification",
			zap.String("claim_id", claim.ID.String()),
			zap.Error(err))
		return
	}

	kind := notificationdomain.TemplateClaimApproved
	if status == claimdomain.ClaimStatusRejected {
		kind = notificationdomain.TemplateClaimRejected
	}

	messages := []notificationdomain.Message{{
		Recipient:    owner.Email,
		TemplateKind: kind,
		Payload: map[string]any{
			"claim_id": claim.ID.String(),
			"amount":   claim.Amount.String(),
			"currency": claim.Currency,
			"comments": comments,
		},
	}}
	if err := s.notifications.Enqueue(ctx, s.db, messages); err != nil {
		s.log.Warn("failed to enqueue decision notification",
			zap.String("claim_id", claim.ID.String()),
			zap.Error(err))
		return
	}
	if _, err := s.notifications.Dispatch(ctx); err != nil {
		s.log.Warn("failed to dispatch decision notification",
			zap.String("claim_id", claim.ID.String()),
			zap.Error(err))
	}
}

func (s *Service) ListForClaim(ctx context.Context, claimID string) ([]domain.ExpenseApproval, error) {
	id, err := s.parseID(claimID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByClaimID(ctx, s.db, id)
}

func (s *Service) ListPendingForApprover(ctx context.Context, approverID snowflake.ID) ([]domain.ExpenseApproval, error) {
	return s.repo.FindPendingByApprover(ctx, s.db, approverID)
}

func (s *Service) DeleteForClaim(ctx context.Context, db *gorm.DB, claimID snowflake.ID) error {
	return s.repo.DeleteByClaimID(ctx, db, claimID)
}

// aggregateStatus derives the claim outcome from its approval records:
// any rejection rejects the claim, full approval approves it, anything
// else leaves it pending. Holds regardless of decision order.
func aggregateStatus(approvals []domain.ExpenseApproval) claimdomain.ClaimStatus {
	if len(approvals) == 0 {
		return claimdomain.ClaimStatusPending
	}

	allApproved := true
	for _, approval := range approvals {
		switch approval.Status {
		case domain.ApprovalStatusRejected:
			return claimdomain.ClaimStatusRejected
		case domain.ApprovalStatusPending:
			allApproved = false
		}
	}
	if allApproved {
		return claimdomain.ClaimStatusApproved
	}
	return claimdomain.ClaimStatusPending
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
