package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gamelounge/domain/event"
	"gamelounge/feed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The portal fronts this service; origin enforcement happens there.
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// streamFrame is the envelope pushed to portal clients. Author decoration
// is attached when hydration resolves; its absence never delays the frame.
type streamFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// handleStream upgrades to WebSocket and forwards live events: lounge
// inserts/updates always, direct messages when a thread query parameter
// scopes the session to one open thread. While the socket lives, the
// session heartbeats presence on the fixed interval. Both subscriptions
// are torn down when the viewer leaves; leaking them would keep the
// session receiving events.
func (s *Server) handleStream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}
	caller, err := s.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var dmSub *feed.Subscription
	var openThread uuid.UUID
	if raw := c.Query("thread"); raw != "" {
		openThread, err = uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
			return
		}
		dmSub, err = s.dms.Subscribe(c.Request.Context(), caller, openThread)
		if err != nil {
			s.renderError(c, err)
			return
		}
	}

	loungeSub := s.lounge.Subscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		loungeSub.Close()
		if dmSub != nil {
			dmSub.Close()
		}
		s.log.Warn("WebSocket upgrade failed", "user", caller.UserID, "err", err)
		return
	}

	s.log.Info("Stream opened", "user", caller.UserID, "remote", c.ClientIP())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer loungeSub.Close()
	if dmSub != nil {
		defer dmSub.Close()
	}
	defer conn.Close()

	// Presence beats ride on the session lifetime.
	go s.tracker.RunSession(ctx, caller.UserID)

	// Reader only detects the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.writePump(ctx, conn, loungeSub, dmSub, openThread)
	s.log.Info("Stream closed", "user", caller.UserID)
}

func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, loungeSub, dmSub *feed.Subscription, openThread uuid.UUID) {
	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	// A nil channel blocks forever, which disables the DM arm of the
	// select when no thread is open.
	var dmEvents chan event.RowEvent
	if dmSub != nil {
		dmEvents = dmSub.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case evt, ok := <-loungeSub.C:
			if !ok {
				return
			}
			if err := s.writeLoungeFrame(ctx, conn, evt); err != nil {
				return
			}
		case evt, ok := <-dmEvents:
			if !ok {
				return
			}
			if err := s.writeDMFrame(conn, evt, openThread); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeLoungeFrame(ctx context.Context, conn *websocket.Conn, evt event.RowEvent) error {
	var frame streamFrame
	switch typed := evt.(type) {
	case event.ChatMessageInserted:
		payload := gin.H{"message": toMessageResponse(typed.Row)}
		// Lazy enrichment: the bare message ships regardless; the author
		// block is attached only when hydration resolves in time.
		if author, ok := s.hydrator.Display(ctx, typed.Row.AuthorID).Get(); ok {
			payload["author"] = author
		}
		frame = streamFrame{Type: "lounge_message", Payload: payload}
	case event.ChatMessageUpdated:
		frame = streamFrame{Type: "lounge_update", Payload: gin.H{"message": toMessageResponse(typed.Row)}}
	default:
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

func (s *Server) writeDMFrame(conn *websocket.Conn, evt event.RowEvent, openThread uuid.UUID) error {
	typed, ok := evt.(event.DirectMessageInserted)
	if !ok {
		return nil
	}
	// Defensive filter: the feed already scopes by thread, but an event
	// for any other thread is discarded regardless.
	if typed.Row.ThreadID != openThread {
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(streamFrame{Type: "dm_message", Payload: gin.H{"message": toDMMessageResponse(typed.Row)}})
}
