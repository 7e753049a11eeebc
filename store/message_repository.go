//go:generate go run go.uber.org/mock/mockgen -source=message_repository.go -destination=../mocks/mock_message_repository.go -package=mocks
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"gamelounge/domain/chat"
	"gamelounge/domain/event"
	errs "gamelounge/errors"
	"gamelounge/feed"
)

type IMessageRepository interface {
	Insert(ctx context.Context, cmd chat.PostMessageCommand) (chat.Message, error)
	Get(ctx context.Context, id uuid.UUID) (chat.Message, error)
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) (chat.Message, error)
	Recent(ctx context.Context, limit int) ([]chat.Message, error)
}

type MessageRepository struct {
	db  *gorm.DB
	hub *feed.Hub
	log *slog.Logger
	now func() time.Time
}

func NewMessageRepository(db *gorm.DB, hub *feed.Hub, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, hub: hub, log: log, now: time.Now}
}

// Insert persists a lounge message and returns the authoritative row with
// the server-assigned id and timestamp. The insert is echoed on the change
// feed after commit, so every subscriber, the sender included, sees it.
func (r *MessageRepository) Insert(ctx context.Context, cmd chat.PostMessageCommand) (chat.Message, error) {
	row := ChatMessageRow{
		ID:        uuid.New().String(),
		AuthorID:  cmd.AuthorID,
		Content:   cmd.Content,
		CreatedAt: r.now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return chat.Message{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	msg, err := toChatMessage(row)
	if err != nil {
		return chat.Message{}, err
	}
	r.hub.Publish(event.ChatMessageInserted{Row: msg})
	return msg, nil
}

func (r *MessageRepository) Get(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	var row ChatMessageRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Message{}, fmt.Errorf("%w: message %s", errs.ErrNotFound, id)
		}
		return chat.Message{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return toChatMessage(row)
}

// SoftDelete flips is_deleted on the row, keyed by id, atomically. The row
// is never removed; it stays in the sequence as an inert placeholder.
func (r *MessageRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) (chat.Message, error) {
	res := r.db.WithContext(ctx).Model(&ChatMessageRow{}).
		Where("id = ?", id.String()).
		Updates(map[string]any{"is_deleted": true, "deleted_by": deletedBy})
	if res.Error != nil {
		return chat.Message{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, res.Error)
	}
	if res.RowsAffected == 0 {
		return chat.Message{}, fmt.Errorf("%w: message %s", errs.ErrNotFound, id)
	}
	msg, err := r.Get(ctx, id)
	if err != nil {
		return chat.Message{}, err
	}
	r.hub.Publish(event.ChatMessageUpdated{Row: msg})
	return msg, nil
}

// Recent returns the newest limit non-deleted messages in display order:
// created_at ascending, ties by id.
func (r *MessageRepository) Recent(ctx context.Context, limit int) ([]chat.Message, error) {
	var rows []ChatMessageRow
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	// Reverse the newest-first page into ascending display order.
	rows = lo.Reverse(rows)
	messages := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		msg, err := toChatMessage(row)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func toChatMessage(row ChatMessageRow) (chat.Message, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return chat.Message{}, fmt.Errorf("corrupt message id %q: %w", row.ID, err)
	}
	return chat.Message{
		ID:        id,
		AuthorID:  row.AuthorID,
		Content:   row.Content,
		IsFlagged: row.IsFlagged,
		IsDeleted: row.IsDeleted,
		DeletedBy: row.DeletedBy,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}
