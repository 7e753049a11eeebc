// Package event defines the rows flowing through the change feed. Delivery
// is at-least-once and order-preserving per source; consumers dedupe by row
// id and sort by created_at themselves.
package event

import (
	"gamelounge/domain/chat"
	"gamelounge/domain/dm"
	"gamelounge/domain/presence"
)

type Table string

const (
	TableChatMessages   Table = "chat_messages"
	TableDirectMessages Table = "direct_messages"
	TablePresence       Table = "presence"
)

// RowEvent is one insert or update echoed by the feed. FilterKey scopes
// delivery: direct messages carry their thread id, everything else is
// unscoped.
type RowEvent interface {
	EventTable() Table
	FilterKey() string
}

type ChatMessageInserted struct {
	Row chat.Message
}

func (ChatMessageInserted) EventTable() Table { return TableChatMessages }
func (ChatMessageInserted) FilterKey() string { return "" }

type ChatMessageUpdated struct {
	Row chat.Message
}

func (ChatMessageUpdated) EventTable() Table { return TableChatMessages }
func (ChatMessageUpdated) FilterKey() string { return "" }

type DirectMessageInserted struct {
	Row dm.Message
}

func (DirectMessageInserted) EventTable() Table { return TableDirectMessages }
func (e DirectMessageInserted) FilterKey() string {
	return e.Row.ThreadID.String()
}

type PresenceRefreshed struct {
	Row presence.Record
}

func (PresenceRefreshed) EventTable() Table { return TablePresence }
func (PresenceRefreshed) FilterKey() string { return "" }
