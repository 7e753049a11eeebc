package feed

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"gamelounge/domain/chat"
	"gamelounge/domain/dm"
	"gamelounge/domain/event"
)

func Test_Hub_Fans_Out_To_All_Subscribers(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 8)

	first := hub.Subscribe(event.TableChatMessages, "")
	defer first.Close()
	second := hub.Subscribe(event.TableChatMessages, "")
	defer second.Close()

	published := event.ChatMessageInserted{Row: chat.Message{ID: uuid.New(), Content: "gg"}}
	hub.Publish(published)

	for _, sub := range []*Subscription{first, second} {
		select {
		case e := <-sub.C:
			typed, ok := e.(event.ChatMessageInserted)
			req.True(ok)
			req.Equal(published.Row.ID, typed.Row.ID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func Test_Hub_Key_Filter_Scopes_Delivery(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 8)

	threadA := uuid.New()
	threadB := uuid.New()

	subA := hub.Subscribe(event.TableDirectMessages, threadA.String())
	defer subA.Close()
	subB := hub.Subscribe(event.TableDirectMessages, threadB.String())
	defer subB.Close()

	hub.Publish(event.DirectMessageInserted{Row: dm.Message{ID: uuid.New(), ThreadID: threadA}})

	select {
	case e := <-subA.C:
		req.Equal(threadA.String(), e.FilterKey())
	case <-time.After(time.Second):
		t.Fatal("scoped subscriber did not receive the event")
	}

	select {
	case <-subB.C:
		t.Fatal("event leaked across thread scopes")
	default:
	}
}

func Test_Hub_Does_Not_Deliver_Across_Tables(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 8)

	sub := hub.Subscribe(event.TableDirectMessages, "")
	defer sub.Close()

	hub.Publish(event.ChatMessageInserted{Row: chat.Message{ID: uuid.New()}})

	select {
	case <-sub.C:
		t.Fatal("chat event delivered to a direct message subscriber")
	default:
	}
	req.Equal(1, hub.Subscribers(event.TableDirectMessages))
}

func Test_Hub_Close_Tears_Subscription_Down(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 8)

	sub := hub.Subscribe(event.TableChatMessages, "")
	req.Equal(1, hub.Subscribers(event.TableChatMessages))

	sub.Close()
	req.Equal(0, hub.Subscribers(event.TableChatMessages))

	// Publishing after close must not panic, and closing twice is safe.
	hub.Publish(event.ChatMessageInserted{Row: chat.Message{ID: uuid.New()}})
	sub.Close()

	_, open := <-sub.C
	req.False(open)
}

func Test_Hub_Slow_Subscriber_Drops_Instead_Of_Blocking(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 1)

	sub := hub.Subscribe(event.TableChatMessages, "")
	defer sub.Close()

	// Second publish overflows the buffer; Publish must return anyway.
	hub.Publish(event.ChatMessageInserted{Row: chat.Message{ID: uuid.New(), Content: "one"}})
	hub.Publish(event.ChatMessageInserted{Row: chat.Message{ID: uuid.New(), Content: "two"}})

	e := <-sub.C
	req.Equal("one", e.(event.ChatMessageInserted).Row.Content)
	select {
	case <-sub.C:
		t.Fatal("overflowed event should have been dropped")
	default:
	}
}
