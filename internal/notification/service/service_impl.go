package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dispatchBatchSize = 100

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Sender domain.Sender
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	sender domain.Sender
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("notification.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		sender: p.Sender,
	}
}

func (s *Service) Enqueue(ctx context.Context, db *gorm.DB, messages []domain.Message) error {
	if db == nil {
		db = s.db
	}

	entries := make([]*domain.NotificationOutbox, 0, len(messages))
	for _, m := range messages {
		recipient := strings.TrimSpace(m.Recipient)
		if recipient == "" || !strings.Contains(recipient, "@") {
			return domain.ErrInvalidRecipient
		}
		entries = append(entries, &domain.NotificationOutbox{
			ID:           s.genID.Generate(),
			Recipient:    recipient,
			TemplateKind: m.TemplateKind,
			Payload:      datatypes.JSONMap(m.Payload),
			Status:       domain.OutboxStatusPending,
		})
	}

	return s.repo.InsertAll(ctx, db, entries)
}

func (s *Service) Dispatch(ctx context.Context) (domain.DispatchResult, error) {
	var result domain.DispatchResult

	entries, err := s.repo.FindPending(ctx, s.db, dispatchBatchSize)
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		subject, body := render(entry.TemplateKind, entry.Payload)

		entry.AttemptCount++
		if err := s.sender.Send(ctx, entry.Recipient, subject, body); err != nil {
			msg := err.Error()
			entry.Status = domain.OutboxStatusFailed
			entry.LastError = &msg
			result.Failed++
			s.log.Warn("notification delivery failed",
				zap.Int64("outbox_id", entry.ID.Int64()),
				zap.String("template", string(entry.TemplateKind)),
				zap.Error(err))
		} else {
			now := time.Now().UTC()
			entry.Status = domain.OutboxStatusSent
			entry.SentAt = &now
			entry.LastError = nil
			result.Sent++
		}

		if err := s.repo.MarkResult(ctx, s.db, entry); err != nil {
			s.log.Warn("failed to persist outbox result",
				zap.Int64("outbox_id", entry.ID.Int64()),
				zap.Error(err))
		}
	}

	return result, nil
}

func render(kind domain.TemplateKind, payload map[string]any) (subject, body string) {
	switch kind {
	case domain.TemplateClaimApproved:
		subject = "Your expense claim has been approved"
		body = fmt.Sprintf("Claim %v for %v %v has been approved.",
			payload["claim_id"], payload["currency"], payload["amount"])
	case domain.TemplateClaimRejected:
		subject = "Your expense claim has been rejected"
		body = fmt.Sprintf("Claim %v for %v %v has been rejected. Comments: %v",
			payload["claim_id"], payload["currency"], payload["amount"], payload["comments"])
	case domain.TemplateReimbursementProcessed:
		subject = "Your reimbursement has been processed"
		body = fmt.Sprintf("Reimbursement of %v %v for %v claim(s) was processed in batch %v.",
			payload["currency"], payload["amount"], payload["claim_count"], payload["batch_number"])
	case domain.TemplateReimbursementSummary:
		subject = "Reimbursement batch summary"
		body = fmt.Sprintf("Batch %v processed %v claim(s) totaling %v %v for %v employee(s).",
			payload["batch_number"], payload["claim_count"], payload["currency"],
			payload["total_amount"], payload["employee_count"])
	default:
		subject = "Notification"
		body = fmt.Sprintf("%v", payload)
	}
	return subject, body
}
