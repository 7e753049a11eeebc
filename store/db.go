// Package store is the durable side of the core: relational rows (lounge
// messages, threads, participants, profiles) in SQLite through GORM, and
// the high-churn presence records in BadgerDB. Every committed write is
// published to the change feed, which is how subscribers, the writer
// included, observe it.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChatMessageRow is the persisted shape of a lounge message. is_flagged is
// reserved for an external moderation workflow; nothing in this core sets
// it to true.
type ChatMessageRow struct {
	ID        string    `gorm:"primaryKey"`
	AuthorID  string    `gorm:"index;not null"`
	Content   string    `gorm:"size:500;not null"`
	IsFlagged bool      `gorm:"not null;default:false"`
	IsDeleted bool      `gorm:"index;not null;default:false"`
	DeletedBy string
	CreatedAt time.Time `gorm:"index"`
}

func (ChatMessageRow) TableName() string { return "chat_messages" }

// ThreadRow holds one two-party conversation. The unique index on PairKey
// is what guarantees pair-to-thread uniqueness even when both sides open
// the thread concurrently.
type ThreadRow struct {
	ID            string    `gorm:"primaryKey"`
	PairKey       string    `gorm:"uniqueIndex;not null"`
	CreatedAt     time.Time
	LastMessageAt time.Time `gorm:"index"`
}

func (ThreadRow) TableName() string { return "dm_threads" }

type ParticipantRow struct {
	ThreadID string `gorm:"primaryKey"`
	UserID   string `gorm:"primaryKey;index"`
}

func (ParticipantRow) TableName() string { return "dm_participants" }

type DirectMessageRow struct {
	ID        string    `gorm:"primaryKey"`
	ThreadID  string    `gorm:"index;not null"`
	SenderID  string    `gorm:"not null"`
	Content   string    `gorm:"size:500;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (DirectMessageRow) TableName() string { return "direct_messages" }

// ProfileRow is the public display identity, synced in by the portal's
// profile screens. The core only reads it for decoration.
type ProfileRow struct {
	UserID     string   `gorm:"primaryKey"`
	Username   string   `gorm:"not null"`
	AvatarURL  string
	RoleBadges []string `gorm:"serializer:json"`
}

func (ProfileRow) TableName() string { return "user_profiles" }

// Open opens the SQLite database and migrates the messaging tables.
// TranslateError turns driver unique-violations into gorm.ErrDuplicatedKey,
// which the thread resolver relies on.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if err := db.AutoMigrate(
		&ChatMessageRow{},
		&ThreadRow{},
		&ParticipantRow{},
		&DirectMessageRow{},
		&ProfileRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
