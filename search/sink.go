package search

import (
	"context"
	"log/slog"

	"gamelounge/contract"
	"gamelounge/domain/event"
	"gamelounge/feed"
)

// SinkWorker consumes the lounge feed and keeps the index current. It runs
// under the supervisor like every other worker; indexing errors are logged
// and skipped, never fatal.
type SinkWorker struct {
	index *Index
	hub   *feed.Hub
	log   *slog.Logger
}

var _ contract.Worker = (*SinkWorker)(nil)
var _ contract.EventSink = (*SinkWorker)(nil)

func NewSinkWorker(index *Index, hub *feed.Hub, log *slog.Logger) *SinkWorker {
	return &SinkWorker{index: index, hub: hub, log: log}
}

func (w *SinkWorker) Run(ctx context.Context) error {
	sub := w.hub.Subscribe(event.TableChatMessages, "")
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping search sink")
			return nil
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := w.Consume(ctx, e); err != nil {
				w.log.Warn("Indexing message failed", "err", err)
			}
		}
	}
}

// Consume indexes one feed row: inserts and updates upsert the document,
// soft deletions remove it.
func (w *SinkWorker) Consume(_ context.Context, e event.RowEvent) error {
	switch evt := e.(type) {
	case event.ChatMessageInserted:
		return w.index.IndexMessage(evt.Row)
	case event.ChatMessageUpdated:
		return w.index.IndexMessage(evt.Row)
	}
	return nil
}
