//go:generate go run go.uber.org/mock/mockgen -source=thread_repository.go -destination=../mocks/mock_thread_repository.go -package=mocks
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gamelounge/domain/dm"
	errs "gamelounge/errors"
)

type IThreadRepository interface {
	Resolve(ctx context.Context, callerID, otherID string) (dm.Thread, error)
	Get(ctx context.Context, threadID uuid.UUID) (dm.Thread, error)
	IsParticipant(ctx context.Context, threadID uuid.UUID, userID string) (bool, error)
	OtherParticipant(ctx context.Context, threadID uuid.UUID, userID string) (string, error)
	ThreadsFor(ctx context.Context, userID string) ([]dm.Thread, error)
}

type ThreadRepository struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

func NewThreadRepository(db *gorm.DB, log *slog.Logger) *ThreadRepository {
	return &ThreadRepository{db: db, log: log, now: time.Now}
}

// Resolve finds or creates the single thread for the unordered pair
// {callerID, otherID}. Idempotent under concurrent first contact from both
// sides: the unique index on the canonical pair key makes one insert win,
// and the loser treats the duplicate-key error as "someone else just
// created it" and re-reads the winning row. The conflict never leaks.
func (r *ThreadRepository) Resolve(ctx context.Context, callerID, otherID string) (dm.Thread, error) {
	key := dm.CanonicalPairKey(callerID, otherID)

	if thread, err := r.byPairKey(ctx, key); err == nil {
		return thread, nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return dm.Thread{}, err
	}

	row := ThreadRow{
		ID:            uuid.New().String(),
		PairKey:       key,
		CreatedAt:     r.now().UTC(),
		LastMessageAt: r.now().UTC(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		participants := []ParticipantRow{
			{ThreadID: row.ID, UserID: callerID},
			{ThreadID: row.ID, UserID: otherID},
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			r.log.Debug("Concurrent thread creation, re-reading winner", "pair_key", key)
			return r.byPairKey(ctx, key)
		}
		return dm.Thread{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return toThread(row)
}

func (r *ThreadRepository) Get(ctx context.Context, threadID uuid.UUID) (dm.Thread, error) {
	var row ThreadRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", threadID.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dm.Thread{}, fmt.Errorf("%w: thread %s", errs.ErrNotFound, threadID)
		}
		return dm.Thread{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return toThread(row)
}

func (r *ThreadRepository) IsParticipant(ctx context.Context, threadID uuid.UUID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ParticipantRow{}).
		Where("thread_id = ? AND user_id = ?", threadID.String(), userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return count > 0, nil
}

func (r *ThreadRepository) OtherParticipant(ctx context.Context, threadID uuid.UUID, userID string) (string, error) {
	var row ParticipantRow
	err := r.db.WithContext(ctx).
		Where("thread_id = ? AND user_id <> ?", threadID.String(), userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: no counterpart in thread %s", errs.ErrNotFound, threadID)
		}
		return "", fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return row.UserID, nil
}

// ThreadsFor lists the threads userID participates in, most recent
// activity first.
func (r *ThreadRepository) ThreadsFor(ctx context.Context, userID string) ([]dm.Thread, error) {
	var rows []ThreadRow
	err := r.db.WithContext(ctx).
		Joins("JOIN dm_participants ON dm_participants.thread_id = dm_threads.id").
		Where("dm_participants.user_id = ?", userID).
		Order("dm_threads.last_message_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	threads := make([]dm.Thread, 0, len(rows))
	for _, row := range rows {
		thread, err := toThread(row)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

func (r *ThreadRepository) byPairKey(ctx context.Context, key string) (dm.Thread, error) {
	var row ThreadRow
	err := r.db.WithContext(ctx).First(&row, "pair_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dm.Thread{}, fmt.Errorf("%w: pair %s", errs.ErrNotFound, key)
		}
		return dm.Thread{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return toThread(row)
}

// isDuplicateKey matches the translated GORM error and, defensively, the
// raw SQLite message in case translation is unavailable.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toThread(row ThreadRow) (dm.Thread, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return dm.Thread{}, fmt.Errorf("corrupt thread id %q: %w", row.ID, err)
	}
	return dm.Thread{
		ID:            id,
		PairKey:       row.PairKey,
		CreatedAt:     row.CreatedAt.UTC(),
		LastMessageAt: row.LastMessageAt.UTC(),
	}, nil
}
