package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"gamelounge/domain"
	"gamelounge/domain/dm"
	"gamelounge/domain/event"
	errs "gamelounge/errors"
	"gamelounge/feed"
	"gamelounge/identity"
	"gamelounge/store"
)

// ThreadView is one entry of a user's thread listing, hydrated with the
// other participant's display identity when it resolves.
type ThreadView struct {
	Thread dm.Thread
	Other  domain.Maybe[domain.DisplayIdentity]
}

// DMEngine delivers messages inside private two-party threads. No
// moderation gate applies here, a deliberate asymmetry with the lounge.
type DMEngine struct {
	log      *slog.Logger
	threads  store.IThreadRepository
	messages store.IDMRepository
	hub      *feed.Hub
	hydrator *identity.Hydrator
}

func NewDMEngine(threads store.IThreadRepository, messages store.IDMRepository, hub *feed.Hub, hydrator *identity.Hydrator, log *slog.Logger) *DMEngine {
	return &DMEngine{
		log:      log,
		threads:  threads,
		messages: messages,
		hub:      hub,
		hydrator: hydrator,
	}
}

// ResolveThread finds or creates the thread between the caller and another
// user. Repeated and concurrent calls for the same pair, from either side,
// always yield the same thread.
func (e *DMEngine) ResolveThread(ctx context.Context, callerID, otherID string) (dm.Thread, error) {
	if callerID == "" {
		return dm.Thread{}, fmt.Errorf("%w: missing caller identity", errs.ErrNotAuthorized)
	}
	if otherID == "" || otherID == callerID {
		return dm.Thread{}, fmt.Errorf("%w: a thread needs two distinct participants", errs.ErrNotAuthorized)
	}
	return e.threads.Resolve(ctx, callerID, otherID)
}

// Send writes one message into a thread the caller participates in and
// bumps the thread's last activity.
func (e *DMEngine) Send(ctx context.Context, threadID uuid.UUID, callerID, content string) (dm.Message, error) {
	if callerID == "" {
		return dm.Message{}, fmt.Errorf("%w: missing caller identity", errs.ErrNotAuthorized)
	}
	if len([]rune(content)) > dm.MaxContentLength {
		return dm.Message{}, fmt.Errorf("%w: content exceeds %d characters", errs.ErrContentRejected, dm.MaxContentLength)
	}
	member, err := e.threads.IsParticipant(ctx, threadID, callerID)
	if err != nil {
		return dm.Message{}, err
	}
	if !member {
		return dm.Message{}, fmt.Errorf("%w: not a participant of thread %s", errs.ErrNotAuthorized, threadID)
	}
	return e.messages.Insert(ctx, threadID, callerID, content)
}

// Subscribe opens a stream scoped to one thread after checking membership.
// The feed already filters by thread id; receivers still discard events
// whose thread does not match the open one, defensively.
func (e *DMEngine) Subscribe(ctx context.Context, threadID uuid.UUID, callerID string) (*feed.Subscription, error) {
	member, err := e.threads.IsParticipant(ctx, threadID, callerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: not a participant of thread %s", errs.ErrNotAuthorized, threadID)
	}
	return e.hub.Subscribe(event.TableDirectMessages, threadID.String()), nil
}

// History returns the thread's messages in display order, membership
// checked.
func (e *DMEngine) History(ctx context.Context, threadID uuid.UUID, callerID string, limit int) ([]dm.Message, error) {
	member, err := e.threads.IsParticipant(ctx, threadID, callerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: not a participant of thread %s", errs.ErrNotAuthorized, threadID)
	}
	return e.messages.History(ctx, threadID, limit)
}

// Threads lists the caller's conversations, most recent activity first,
// each decorated with the other participant's public identity. Hydration
// failures yield an absent identity, never an error: the listing must
// render before decoration resolves.
func (e *DMEngine) Threads(ctx context.Context, callerID string) ([]ThreadView, error) {
	if callerID == "" {
		return nil, fmt.Errorf("%w: missing caller identity", errs.ErrNotAuthorized)
	}
	threads, err := e.threads.ThreadsFor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	views := make([]ThreadView, 0, len(threads))
	for _, thread := range threads {
		view := ThreadView{Thread: thread, Other: domain.None[domain.DisplayIdentity]()}
		otherID, err := e.threads.OtherParticipant(ctx, thread.ID, callerID)
		if err != nil {
			e.log.Warn("Thread without counterpart", "thread", thread.ID, "err", err)
		} else {
			view.Other = e.hydrator.Display(ctx, otherID)
			if !view.Other.Present() {
				// Decoration failed: still expose the bare user id.
				view.Other = domain.Some(domain.DisplayIdentity{UserID: otherID, Username: otherID})
			}
		}
		views = append(views, view)
	}
	return views, nil
}
