package repository

import (
	"context"

	"github.com/zenithhr/expensio/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertAll(ctx context.Context, db *gorm.DB, entries []*domain.NotificationOutbox) error {
	if len(entries) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(entries).Error
}

func (r *repo) FindPending(ctx context.Context, db *gorm.DB, limit int) ([]*domain.NotificationOutbox, error) {
	stmt := db.WithContext(ctx).
		Where("status = ?", domain.OutboxStatusPending).
		Order("created_at asc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var entries []*domain.NotificationOutbox
	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) MarkResult(ctx context.Context, db *gorm.DB, entry *domain.NotificationOutbox) error {
	return db.WithContext(ctx).
		Model(&domain.NotificationOutbox{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"status":        entry.Status,
			"attempt_count": entry.AttemptCount,
			"last_error":    entry.LastError,
			"sent_at":       entry.SentAt,
		}).Error
}
