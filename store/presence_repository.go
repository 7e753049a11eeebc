//go:generate go run go.uber.org/mock/mockgen -source=presence_repository.go -destination=../mocks/mock_presence_repository.go -package=mocks
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"gamelounge/domain/event"
	"gamelounge/domain/presence"
	errs "gamelounge/errors"
	"gamelounge/feed"
)

const presenceKeyPrefix = "presence:"

type IPresenceRepository interface {
	Heartbeat(userID string, now time.Time) error
	SetStatus(userID string, status presence.StatusType, message string) error
	Get(userID string) (presence.Record, error)
	OnlineCount(now time.Time, window time.Duration) (int, error)
	Online(now time.Time, window time.Duration) ([]presence.Record, error)
}

// PresenceRepository keeps the high-churn presence rows in BadgerDB, one
// JSON value per user under "presence:{user_id}". Records are refreshed,
// never cleared: staleness alone demotes a user to offline.
type PresenceRepository struct {
	db  *badger.DB
	hub *feed.Hub
	log *slog.Logger
}

func NewPresenceRepository(db *badger.DB, hub *feed.Hub, log *slog.Logger) *PresenceRepository {
	return &PresenceRepository{db: db, hub: hub, log: log}
}

// Heartbeat unconditionally stamps last_presence_at, preserving the
// user-set status label, and echoes the refresh on the feed so the online
// aggregator reacts without waiting for its next poll.
func (r *PresenceRepository) Heartbeat(userID string, now time.Time) error {
	record, err := r.upsert(userID, func(rec *presence.Record) {
		rec.LastPresenceAt = now.UTC()
	})
	if err != nil {
		return err
	}
	r.hub.Publish(event.PresenceRefreshed{Row: record})
	return nil
}

// SetStatus stores the user-set label. It does not touch the liveness
// stamp: a "gaming" badge only shows while heartbeats keep arriving.
func (r *PresenceRepository) SetStatus(userID string, status presence.StatusType, message string) error {
	record, err := r.upsert(userID, func(rec *presence.Record) {
		rec.Status = status
		rec.StatusMessage = message
	})
	if err != nil {
		return err
	}
	r.hub.Publish(event.PresenceRefreshed{Row: record})
	return nil
}

func (r *PresenceRepository) Get(userID string) (presence.Record, error) {
	var record presence.Record
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(presenceKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return presence.Record{}, fmt.Errorf("%w: presence for %s", errs.ErrNotFound, userID)
	}
	if err != nil {
		return presence.Record{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return record, nil
}

// OnlineCount counts distinct users whose last heartbeat is inside the
// window, via a prefix scan over the presence keyspace.
func (r *PresenceRepository) OnlineCount(now time.Time, window time.Duration) (int, error) {
	records, err := r.Online(now, window)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Online returns the records currently inside the liveness window.
func (r *PresenceRepository) Online(now time.Time, window time.Duration) ([]presence.Record, error) {
	var online []presence.Record
	cutoff := now.Add(-window)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(presenceKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record presence.Record
				if err := json.Unmarshal(val, &record); err != nil {
					r.log.Warn("Skipping corrupt presence row", "key", string(it.Item().Key()), "err", err)
					return nil
				}
				if record.LastPresenceAt.After(cutoff) {
					online = append(online, record)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return online, nil
}

// upsert reads, mutates and writes one record inside a single Badger
// transaction.
func (r *PresenceRepository) upsert(userID string, mutate func(*presence.Record)) (presence.Record, error) {
	record := presence.Record{UserID: userID}
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(presenceKey(userID))
		if err == nil {
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		mutate(&record)
		record.UserID = userID

		bytes, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(presenceKey(userID), bytes)
	})
	if err != nil {
		return presence.Record{}, fmt.Errorf("%w: %v", errs.ErrWriteFailed, err)
	}
	return record, nil
}

func presenceKey(userID string) []byte {
	return []byte(presenceKeyPrefix + userID)
}
