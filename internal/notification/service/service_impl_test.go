package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenithhr/expensio/internal/notification/domain"
	"github.com/zenithhr/expensio/internal/notification/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type flakySender struct {
	failFor map[string]error
	sent    []string
}

func (s *flakySender) Send(ctx context.Context, recipient, subject, body string) error {
	if err, ok := s.failFor[recipient]; ok {
		return err
	}
	s.sent = append(s.sent, recipient)
	return nil
}

func setupNotificationService(t *testing.T) (domain.Service, *gorm.DB, *flakySender) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.NotificationOutbox{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	sender := &flakySender{failFor: map[string]error{}}
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Sender: sender,
	})
	return svc, db, sender
}

func TestEnqueueRejectsBadRecipient(t *testing.T) {
	svc, db, _ := setupNotificationService(t)

	err := svc.Enqueue(context.Background(), nil, []domain.Message{
		{Recipient: "alice@example.com", TemplateKind: domain.TemplateClaimApproved},
		{Recipient: "not-an-address", TemplateKind: domain.TemplateClaimApproved},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRecipient)

	var count int64
	require.NoError(t, db.Model(&domain.NotificationOutbox{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDispatchMarksSent(t *testing.T) {
	svc, db, sender := setupNotificationService(t)
	ctx := context.Background()

	require.NoError(t, svc.Enqueue(ctx, nil, []domain.Message{
		{
			Recipient:    "alice@example.com",
			TemplateKind: domain.TemplateClaimApproved,
			Payload:      map[string]any{"claim_id": "42", "currency": "INR", "amount": "100"},
		},
	}))

	result, err := svc.Dispatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Zero(t, result.Failed)
	assert.Equal(t, []string{"alice@example.com"}, sender.sent)

	var entry domain.NotificationOutbox
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, domain.OutboxStatusSent, entry.Status)
	assert.Equal(t, 1, entry.AttemptCount)
	assert.NotNil(t, entry.SentAt)
	assert.Nil(t, entry.LastError)
}

func TestDispatchIsolatesFailures(t *testing.T) {
	svc, db, sender := setupNotificationService(t)
	ctx := context.Background()

	sender.failFor["broken@example.com"] = errors.New("smtp refused")

	require.NoError(t, svc.Enqueue(ctx, nil, []domain.Message{
		{Recipient: "broken@example.com", TemplateKind: domain.TemplateReimbursementProcessed},
		{Recipient: "alice@example.com", TemplateKind: domain.TemplateReimbursementProcessed},
	}))

	// Delivery failures never surface as Dispatch errors.
	result, err := svc.Dispatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)

	var failed domain.NotificationOutbox
	require.NoError(t, db.First(&failed, "recipient = ?", "broken@example.com").Error)
	assert.Equal(t, domain.OutboxStatusFailed, failed.Status)
	require.NotNil(t, failed.LastError)
	assert.Equal(t, "smtp refused", *failed.LastError)

	// Failed entries are not retried by the next drain.
	result, err = svc.Dispatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Sent)
	assert.Zero(t, result.Failed)
}

func TestRenderTemplates(t *testing.T) {
	subject, body := render(domain.TemplateClaimRejected, map[string]any{
		"claim_id": "42",
		"currency": "INR",
		"amount":   "250",
		"comments": "missing receipt",
	})
	assert.Equal(t, "Your expense claim has been rejected", subject)
	assert.Contains(t, body, "missing receipt")

	subject, _ = render(domain.TemplateKind("UNKNOWN"), nil)
	assert.Equal(t, "Notification", subject)
}
