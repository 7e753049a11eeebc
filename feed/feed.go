// Package feed is the in-process change feed: every committed row insert or
// update is published here and fanned out to all live subscribers of the
// matching table. Delivery is at-least-once and order-preserving per
// publisher; it is not a durable broker.
package feed

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"gamelounge/domain/event"
)

// Subscription is one subscriber's view of a table. Events arrive on C in
// publish order. Close tears the subscription down; leaking subscriptions
// keeps receiving events forever.
type Subscription struct {
	id    uuid.UUID
	table event.Table
	// key scopes delivery: for direct messages the thread id, empty for
	// unscoped tables.
	key  string
	C    chan event.RowEvent
	hub  *Hub
	once sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.drop(s)
		close(s.C)
	})
}

// Hub fans rows out to subscribers. Safe for concurrent use. A slow
// subscriber never blocks publishers: its event is dropped with a warning,
// mirroring the at-least-once (not exactly-once, not lossless) contract.
type Hub struct {
	mu     sync.RWMutex
	log    *slog.Logger
	buffer int
	subs   map[event.Table]map[uuid.UUID]*Subscription
}

func NewHub(log *slog.Logger, buffer int) *Hub {
	return &Hub{
		log:    log,
		buffer: buffer,
		subs:   make(map[event.Table]map[uuid.UUID]*Subscription),
	}
}

// Subscribe registers a listener for one table. A non-empty key restricts
// delivery to events carrying the same FilterKey.
func (h *Hub) Subscribe(table event.Table, key string) *Subscription {
	sub := &Subscription{
		id:    uuid.New(),
		table: table,
		key:   key,
		C:     make(chan event.RowEvent, h.buffer),
		hub:   h,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[table]; !ok {
		h.subs[table] = make(map[uuid.UUID]*Subscription)
	}
	h.subs[table][sub.id] = sub
	return sub
}

// Publish delivers e to every live subscriber of its table, including the
// publisher's own subscriptions: senders see their writes echoed back.
func (h *Hub) Publish(e event.RowEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[e.EventTable()] {
		if sub.key != "" && sub.key != e.FilterKey() {
			continue
		}
		select {
		case sub.C <- e:
		default:
			h.log.Warn("Subscriber channel full, dropping event",
				"table", e.EventTable(), "subscription", sub.id)
		}
	}
}

func (h *Hub) drop(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if table, ok := h.subs[s.table]; ok {
		delete(table, s.id)
		if len(table) == 0 {
			delete(h.subs, s.table)
		}
	}
}

// Subscribers reports the live subscription count for a table.
func (h *Hub) Subscribers(table event.Table) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}
