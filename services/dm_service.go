package services

import (
	"context"

	"github.com/google/uuid"

	"gamelounge/domain/dm"
	"gamelounge/engine"
	"gamelounge/feed"
	"gamelounge/identity"
)

type IDMService interface {
	ResolveThread(ctx context.Context, caller identity.Caller, otherID string) (dm.Thread, error)
	Send(ctx context.Context, caller identity.Caller, threadID uuid.UUID, content string) (dm.Message, error)
	History(ctx context.Context, caller identity.Caller, threadID uuid.UUID, limit int) ([]dm.Message, error)
	Threads(ctx context.Context, caller identity.Caller) ([]engine.ThreadView, error)
	Subscribe(ctx context.Context, caller identity.Caller, threadID uuid.UUID) (*feed.Subscription, error)
}

type DMService struct {
	engine *engine.DMEngine
}

func NewDMService(dmEngine *engine.DMEngine) *DMService {
	return &DMService{engine: dmEngine}
}

func (s *DMService) ResolveThread(ctx context.Context, caller identity.Caller, otherID string) (dm.Thread, error) {
	return s.engine.ResolveThread(ctx, caller.UserID, otherID)
}

func (s *DMService) Send(ctx context.Context, caller identity.Caller, threadID uuid.UUID, content string) (dm.Message, error) {
	return s.engine.Send(ctx, threadID, caller.UserID, content)
}

func (s *DMService) History(ctx context.Context, caller identity.Caller, threadID uuid.UUID, limit int) ([]dm.Message, error) {
	return s.engine.History(ctx, threadID, caller.UserID, limit)
}

func (s *DMService) Threads(ctx context.Context, caller identity.Caller) ([]engine.ThreadView, error) {
	return s.engine.Threads(ctx, caller.UserID)
}

func (s *DMService) Subscribe(ctx context.Context, caller identity.Caller, threadID uuid.UUID) (*feed.Subscription, error) {
	return s.engine.Subscribe(ctx, threadID, caller.UserID)
}
