package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	approvaldomain "github.com/zenithhr/expensio/internal/approval/domain"
	"github.com/zenithhr/expensio/internal/claim/domain"
	"github.com/zenithhr/expensio/internal/metrics"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	"github.com/zenithhr/expensio/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Policy    policydomain.Service
	Approvals approvaldomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	policy    policydomain.Service
	approvals approvaldomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("claim.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		policy:    p.Policy,
		approvals: p.Approvals,
		metrics:   p.Metrics,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitClaimRequest) (domain.SubmitClaimResponse, error) {
	categoryID, err := s.parseID(req.CategoryID)
	if err != nil {
		return domain.SubmitClaimResponse{}, err
	}
	if !req.Amount.IsPositive() {
		return domain.SubmitClaimResponse{}, domain.ErrInvalidAmount
	}
	if req.ExpenseDate.IsZero() {
		return domain.SubmitClaimResponse{}, domain.ErrInvalidDate
	}

	evaluation, err := s.policy.Evaluate(ctx, policydomain.EvaluateRequest{
		CategoryID:     categoryID,
		EmployeeID:     req.EmployeeID,
		Amount:         req.Amount,
		ExpenseDate:    req.ExpenseDate,
		HasReceipt:     req.HasReceipt,
		HasGPSLocation: req.HasGPSLocation,
	})
	if err != nil {
		return domain.SubmitClaimResponse{}, err
	}
	if !evaluation.IsValid {
		s.countSubmission("rejected_by_policy")
		return domain.SubmitClaimResponse{}, &domain.ValidationFailedError{
			Violations: evaluation.Violations,
			Warnings:   evaluation.Warnings,
		}
	}

	reimbursable := true
	if req.IsReimbursable != nil {
		reimbursable = *req.IsReimbursable
	}

	status := domain.ClaimStatusPending
	if !evaluation.RequiresApproval {
		status = domain.ClaimStatusApproved
	}

	now := time.Now().UTC()
	claim := domain.ExpenseClaim{
		ID:             s.genID.Generate(),
		EmployeeID:     req.EmployeeID,
		CategoryID:     categoryID,
		Amount:         req.Amount,
		Currency:       evaluation.Category.Currency,
		Description:    strings.TrimSpace(req.Description),
		ExpenseDate:    req.ExpenseDate.UTC(),
		Status:         status,
		IsReimbursable: reimbursable,
		HasReceipt:     req.HasReceipt,
		HasGPSLocation: req.HasGPSLocation,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var approverIDs []snowflake.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &claim); err != nil {
			return err
		}
		if evaluation.RequiresApproval {
			ids, err := s.approvals.SetupChain(ctx, tx, claim.ID, req.EmployeeID, evaluation.RequiredApprovalLevels)
			if err != nil {
				return err
			}
			approverIDs = ids
		}
		return nil
	})
	if err != nil {
		return domain.SubmitClaimResponse{}, err
	}

	s.countSubmission("accepted")
	s.log.Info("claim submitted",
		zap.String("claim_id", claim.ID.String()),
		zap.String("employee_id", req.EmployeeID.String()),
		zap.String("status", string(claim.Status)),
		zap.Int("approval_levels", len(approverIDs)),
	)

	return domain.SubmitClaimResponse{
		Claim:       claim,
		Warnings:    evaluation.Warnings,
		ApproverIDs: approverIDs,
		Evaluation:  evaluation,
	}, nil
}

func (s *Service) Validate(ctx context.Context, req domain.ValidateClaimRequest) (policydomain.Evaluation, error) {
	categoryID, err := s.parseID(req.CategoryID)
	if err != nil {
		return policydomain.Evaluation{}, err
	}

	return s.policy.Evaluate(ctx, policydomain.EvaluateRequest{
		CategoryID:     categoryID,
		EmployeeID:     req.EmployeeID,
		Amount:         req.Amount,
		ExpenseDate:    req.ExpenseDate,
		HasReceipt:     req.HasReceipt,
		HasGPSLocation: req.HasGPSLocation,
	})
}

func (s *Service) GetByID(ctx context.Context, req domain.GetClaimRequest) (domain.ExpenseClaim, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ExpenseClaim{}, err
	}

	claim, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ExpenseClaim{}, err
	}
	if claim == nil {
		return domain.ExpenseClaim{}, domain.ErrNotFound
	}
	return *claim, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClaimsRequest) (domain.ListClaimsResponse, error) {
	filter := domain.ListFilter{}

	if strings.TrimSpace(req.EmployeeID) != "" {
		id, err := s.parseID(req.EmployeeID)
		if err != nil {
			return domain.ListClaimsResponse{}, err
		}
		filter.EmployeeID = id
	}
	if strings.TrimSpace(req.CategoryID) != "" {
		id, err := s.parseID(req.CategoryID)
		if err != nil {
			return domain.ListClaimsResponse{}, err
		}
		filter.CategoryID = id
	}
	if req.Status != "" {
		switch req.Status {
		case domain.ClaimStatusPending, domain.ClaimStatusApproved, domain.ClaimStatusRejected,
			domain.ClaimStatusReimbursed, domain.ClaimStatusCancelled:
		default:
			return domain.ListClaimsResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = req.Status
	}

	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListClaimsResponse{}, domain.ErrInvalidID
		}
		createdAt, err := time.Parse(time.RFC3339, decoded.CreatedAt)
		if err != nil {
			return domain.ListClaimsResponse{}, domain.ErrInvalidID
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return domain.ListClaimsResponse{}, domain.ErrInvalidID
		}
		filter.Cursor = &domain.ListCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}
	filter.Limit = int(pageSize)

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListClaimsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(claim *domain.ExpenseClaim) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        claim.ID.String(),
			CreatedAt: claim.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	claims := make([]domain.ExpenseClaim, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		claims = append(claims, *item)
	}

	resp := domain.ListClaimsResponse{Claims: claims}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Cancel(ctx context.Context, req domain.CancelClaimRequest) (domain.ExpenseClaim, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ExpenseClaim{}, err
	}

	claim, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ExpenseClaim{}, err
	}
	if claim == nil {
		return domain.ExpenseClaim{}, domain.ErrNotFound
	}

	won, err := s.repo.UpdateStatusIfPending(ctx, s.db, id, domain.ClaimStatusCancelled)
	if err != nil {
		return domain.ExpenseClaim{}, err
	}
	if !won {
		return domain.ExpenseClaim{}, domain.ErrClaimNotPending
	}

	claim.Status = domain.ClaimStatusCancelled
	return *claim, nil
}

func (s *Service) countSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.ClaimsSubmitted.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
