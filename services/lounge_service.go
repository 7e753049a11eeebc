// Package services exposes the engines to the transport layer behind small
// facades, keeping handlers free of wiring detail.
package services

import (
	"context"

	"github.com/google/uuid"

	"gamelounge/domain/chat"
	"gamelounge/engine"
	"gamelounge/feed"
	"gamelounge/identity"
	"gamelounge/search"
)

type ILoungeService interface {
	Send(ctx context.Context, caller identity.Caller, content string) (uuid.UUID, error)
	Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error
	Messages() []chat.Message
	Search(ctx context.Context, terms string, limit int) ([]search.Hit, error)
	Subscribe() *feed.Subscription
}

type LoungeService struct {
	engine *engine.ChannelEngine
	index  *search.Index
}

func NewLoungeService(channelEngine *engine.ChannelEngine, index *search.Index) *LoungeService {
	return &LoungeService{engine: channelEngine, index: index}
}

func (s *LoungeService) Send(ctx context.Context, caller identity.Caller, content string) (uuid.UUID, error) {
	return s.engine.Send(ctx, caller.UserID, content)
}

func (s *LoungeService) Delete(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	return s.engine.Delete(ctx, id, caller)
}

func (s *LoungeService) Messages() []chat.Message {
	return s.engine.Messages()
}

func (s *LoungeService) Search(ctx context.Context, terms string, limit int) ([]search.Hit, error) {
	return s.index.Search(ctx, terms, limit)
}

func (s *LoungeService) Subscribe() *feed.Subscription {
	return s.engine.Subscribe()
}
