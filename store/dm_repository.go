//go:generate go run go.uber.org/mock/mockgen -source=dm_repository.go -destination=../mocks/mock_dm_repository.go -package=mocks
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gamelounge/domain/dm"
	"gamelounge/domain/event"
	errs "gamelounge/errors"
	"gamelounge/feed"
)

type IDMRepository interface {
	Insert(ctx context.Context, threadID uuid.UUID, senderID, content string) (dm.Message, error)
	History(ctx context.Context, threadID uuid.UUID, limit int) ([]dm.Message, error)
}

type DMRepository struct {
	db  *gorm.DB
	hub *feed.Hub
	log *slog.Logger
	now func() time.Time
}

func NewDMRepository(db *gorm.DB, hub *feed.Hub, log *slog.Logger) *DMRepository {
	return &DMRepository{db: db, hub: hub, log: log, now: time.Now}
}

// Insert writes the message and bumps the thread's last_message_at in one
// transaction. The ordering of the two writes is not observable to other
// participants; only the final state matters.
func (r *DMRepository) Insert(ctx context.Context, threadID uuid.UUID, senderID, content string) (dm.Message, error) {
	now := r.now().UTC()
	row := DirectMessageRow{
		ID:        uuid.New().String(),
		ThreadID:  threadID.String(),
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&ThreadRow{}).
			Where("id = ?", threadID.String()).
			Update("last_message_at", now).Error
	})
	if err != nil {
		return dm.Message{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	msg, err := toDirectMessage(row)
	if err != nil {
		return dm.Message{}, err
	}
	r.hub.Publish(event.DirectMessageInserted{Row: msg})
	return msg, nil
}

// History returns the newest limit messages of one thread in ascending
// created_at order, ties by id.
func (r *DMRepository) History(ctx context.Context, threadID uuid.UUID, limit int) ([]dm.Message, error) {
	var rows []DirectMessageRow
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID.String()).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	messages := make([]dm.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		msg, err := toDirectMessage(rows[i])
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func toDirectMessage(row DirectMessageRow) (dm.Message, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return dm.Message{}, fmt.Errorf("corrupt message id %q: %w", row.ID, err)
	}
	threadID, err := uuid.Parse(row.ThreadID)
	if err != nil {
		return dm.Message{}, fmt.Errorf("corrupt thread id %q: %w", row.ThreadID, err)
	}
	return dm.Message{
		ID:        id,
		ThreadID:  threadID,
		SenderID:  row.SenderID,
		Content:   row.Content,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}
