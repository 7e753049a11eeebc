// Package search maintains a full-text index over lounge history. Indexing
// is a feed side effect: a failure here never blocks message delivery.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blugelabs/bluge"

	"gamelounge/domain/chat"
)

// Hit is one search result, reconstructed from stored fields.
type Hit struct {
	MessageID string `json:"message_id"`
	AuthorID  string `json:"author_id"`
	Content   string `json:"content"`
}

// Index wraps a Bluge writer. The writer is single-owner; the mutex
// serializes updates from the feed sink and ad hoc reads.
type Index struct {
	mu     sync.Mutex
	writer *bluge.Writer
	log    *slog.Logger
}

func Open(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("bluge open: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

// IndexMessage upserts one lounge message. Deleted messages are removed
// from the index so search never resurfaces a placeholder.
func (i *Index) IndexMessage(m chat.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if m.IsDeleted {
		return i.writer.Delete(bluge.Identifier(m.ID.String()))
	}

	doc := bluge.NewDocument(m.ID.String()).
		AddField(bluge.NewTextField("content", m.Content).StoreValue()).
		AddField(bluge.NewKeywordField("author_id", m.AuthorID).StoreValue()).
		AddField(bluge.NewDateTimeField("created_at", m.CreatedAt))
	return i.writer.Update(doc.ID(), doc)
}

// Search runs a match query over message bodies and returns up to limit
// hits, best first.
func (i *Index) Search(ctx context.Context, terms string, limit int) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("bluge reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Closing search reader failed", "err", err)
		}
	}()

	query := bluge.NewMatchQuery(terms).SetField("content")
	request := bluge.NewTopNSearch(limit, query)
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("bluge search: %w", err)
	}

	var hits []Hit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("bluge iterate: %w", err)
		}
		if match == nil {
			break
		}
		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "author_id":
				hit.AuthorID = string(value)
			case "content":
				hit.Content = string(value)
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("bluge stored fields: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.writer.Close()
}
