package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	auditdomain "github.com/zenithhr/expensio/internal/audit/domain"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	"github.com/zenithhr/expensio/internal/clock"
	"github.com/zenithhr/expensio/internal/config"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	"github.com/zenithhr/expensio/internal/metrics"
	notificationdomain "github.com/zenithhr/expensio/internal/notification/domain"
	"github.com/zenithhr/expensio/internal/principal"
	"github.com/zenithhr/expensio/internal/reimbursement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Config        config.Config
	Repo          domain.Repository
	Claims        claimdomain.Repository
	Employees     employeedomain.Repository
	Notifications notificationdomain.Service
	Audit         auditdomain.Service
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	cfg           config.Config
	repo          domain.Repository
	claims        claimdomain.Repository
	employees     employeedomain.Repository
	notifications notificationdomain.Service
	audit         auditdomain.Service
	metrics       *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("reimbursement.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		cfg:           p.Config,
		repo:          p.Repo,
		claims:        p.Claims,
		employees:     p.Employees,
		notifications: p.Notifications,
		audit:         p.Audit,
		metrics:       p.Metrics,
	}
}

func (s *Service) ProcessBatch(ctx context.Context, req domain.ProcessBatchRequest) (*domain.ProcessBatchResponse, error) {
	actorID, ok := principal.EmployeeIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrMissingActor
	}

	ids, err := parseClaimIDs(req.ClaimIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domain.ErrNoClaims
	}

	switch req.PaymentMethod {
	case domain.PaymentMethodBankTransfer, domain.PaymentMethodNEFT,
		domain.PaymentMethodRTGS, domain.PaymentMethodCheque:
	default:
		return nil, domain.ErrInvalidPaymentMethod
	}

	now := s.clock.Now()
	reimbursementDate := now
	if req.ReimbursementDate != nil {
		reimbursementDate = req.ReimbursementDate.UTC()
	}

	batch := &domain.ReimbursementBatch{
		ID:                s.genID.Generate(),
		BatchNumber:       fmt.Sprintf("RB-%s", uuid.NewString()),
		PaymentMethod:     req.PaymentMethod,
		Status:            domain.BatchStatusProcessing,
		ClaimCount:        len(ids),
		ReimbursementDate: reimbursementDate,
		CreatedBy:         actorID,
		Notes:             strings.TrimSpace(req.Notes),
	}

	var claims []*claimdomain.ExpenseClaim

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eligible, err := s.claims.FindEligibleForReimbursement(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(eligible) != len(ids) {
			return &domain.IneligibleClaimsError{IneligibleIDs: missingIDs(ids, eligible)}
		}

		total := decimal.Zero
		currency := ""
		for _, c := range eligible {
			total = total.Add(c.Amount)
			if currency == "" {
				currency = c.Currency
			}
		}
		batch.TotalAmount = total
		if currency != "" {
			batch.Currency = currency
		}

		if err := s.repo.Insert(ctx, tx, batch); err != nil {
			return err
		}

		updated, err := s.claims.MarkReimbursed(ctx, tx, ids, batch.ID, actorID, now)
		if err != nil {
			return err
		}
		// A claim that passed the eligibility read but lost the conditional
		// update was grabbed by a concurrent batch.
		if updated != int64(len(ids)) {
			return &domain.IneligibleClaimsError{IneligibleIDs: req.ClaimIDs}
		}

		claims, err = s.claims.FindByBatchID(ctx, tx, batch.ID)
		return err
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.BatchesProcessed.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BatchesProcessed.WithLabelValues("processing").Inc()
	}

	claimIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		claimIDs = append(claimIDs, id.String())
	}
	batchID := batch.ID.String()
	s.audit.Record(ctx, "reimbursement.batch.processed", "reimbursement_batch", &batchID, map[string]any{
		"batch_number":   batch.BatchNumber,
		"payment_method": string(batch.PaymentMethod),
		"claim_ids":      claimIDs,
		"claim_count":    batch.ClaimCount,
		"total_amount":   batch.TotalAmount.String(),
	})

	s.notifyBatch(ctx, batch, claims)

	return &domain.ProcessBatchResponse{Batch: batch, Claims: claims}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.ReimbursementBatch, error) {
	batchID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || batchID == 0 {
		return nil, domain.ErrInvalidID
	}

	batch, err := s.repo.FindByID(ctx, s.db, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrBatchNotFound
	}
	return batch, nil
}

func (s *Service) ClaimsForBatch(ctx context.Context, id string) ([]*claimdomain.ExpenseClaim, error) {
	batch, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.claims.FindByBatchID(ctx, s.db, batch.ID)
}

func (s *Service) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.BatchStatus) error {
	if db == nil {
		db = s.db
	}

	won, err := s.repo.UpdateStatusIfProcessing(ctx, db, id, status)
	if err != nil {
		return err
	}
	if !won {
		return domain.ErrBatchNotProcessing
	}

	if s.metrics != nil {
		s.metrics.BatchesProcessed.WithLabelValues(strings.ToLower(string(status))).Inc()
	}
	return nil
}

// notifyBatch enqueues and dispatches per-employee notifications plus a
// finance summary. Delivery is best-effort: failures are logged and never
// unwind the already-committed batch.
func (s *Service) notifyBatch(ctx context.Context, batch *domain.ReimbursementBatch, claims []*claimdomain.ExpenseClaim) {
	perEmployee := make(map[snowflake.ID]struct {
		amount decimal.Decimal
		count  int
	})
	employeeIDs := make([]snowflake.ID, 0, len(claims))
	for _, c := range claims {
		agg, seen := perEmployee[c.EmployeeID]
		if !seen {
			employeeIDs = append(employeeIDs, c.EmployeeID)
		}
		agg.amount = agg.amount.Add(c.Amount)
		agg.count++
		perEmployee[c.EmployeeID] = agg
	}

	employees, err := s.employees.FindByIDs(ctx, s.db, employeeIDs)
	if err != nil {
		s.log.Warn("failed to load employees for batch notification",
			zap.String("batch_number", batch.BatchNumber),
			zap.Error(err))
		return
	}

	messages := make([]notificationdomain.Message, 0, len(employees)+1)
	for _, emp := range employees {
		agg := perEmployee[emp.ID]
		messages = append(messages, notificationdomain.Message{
			Recipient:    emp.Email,
			TemplateKind: notificationdomain.TemplateReimbursementProcessed,
			Payload: map[string]any{
				"batch_number": batch.BatchNumber,
				"amount":       agg.amount.String(),
				"currency":     batch.Currency,
				"claim_count":  agg.count,
			},
		})
	}
	messages = append(messages, notificationdomain.Message{
		Recipient:    s.cfg.FinanceEmail,
		TemplateKind: notificationdomain.TemplateReimbursementSummary,
		Payload: map[string]any{
			"batch_number":   batch.BatchNumber,
			"claim_count":    batch.ClaimCount,
			"total_amount":   batch.TotalAmount.String(),
			"currency":       batch.Currency,
			"employee_count": len(employeeIDs),
		},
	})

	if err := s.notifications.Enqueue(ctx, s.db, messages); err != nil {
		s.log.Warn("failed to enqueue batch notifications",
			zap.String("batch_number", batch.BatchNumber),
			zap.Error(err))
		return
	}

	if _, err := s.notifications.Dispatch(ctx); err != nil {
		s.log.Warn("failed to dispatch batch notifications",
			zap.String("batch_number", batch.BatchNumber),
			zap.Error(err))
	}
}

func parseClaimIDs(raw []string) ([]snowflake.ID, error) {
	seen := make(map[snowflake.ID]struct{}, len(raw))
	ids := make([]snowflake.ID, 0, len(raw))
	for _, value := range raw {
		id, err := snowflake.ParseString(strings.TrimSpace(value))
		if err != nil || id == 0 {
			return nil, claimdomain.ErrInvalidID
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func missingIDs(requested []snowflake.ID, found []*claimdomain.ExpenseClaim) []string {
	present := make(map[snowflake.ID]struct{}, len(found))
	for _, c := range found {
		present[c.ID] = struct{}{}
	}

	var missing []string
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return missing
}
