package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"gamelounge/domain"
	"gamelounge/domain/chat"
	"gamelounge/domain/dm"
	domainpresence "gamelounge/domain/presence"
	"gamelounge/engine"
	errs "gamelounge/errors"
)

type sendMessageRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

type resolveThreadRequest struct {
	OtherUserID string `json:"other_user_id" binding:"required"`
}

type setStatusRequest struct {
	StatusType    string `json:"status_type" binding:"required,statustype"`
	StatusMessage string `json:"status_message" binding:"max=140"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	IsDeleted bool      `json:"is_deleted"`
	DeletedBy string    `json:"deleted_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Pending   bool      `json:"pending,omitempty"`
}

// deletedPlaceholder replaces the body of soft-deleted entries; the entry
// itself keeps its position in the sequence.
const deletedPlaceholder = "[message deleted]"

func toMessageResponse(m chat.Message) messageResponse {
	content := m.Content
	if m.IsDeleted {
		content = deletedPlaceholder
	}
	return messageResponse{
		ID:        m.ID.String(),
		AuthorID:  m.AuthorID,
		Content:   content,
		IsDeleted: m.IsDeleted,
		DeletedBy: m.DeletedBy,
		CreatedAt: m.CreatedAt,
		Pending:   m.Pending,
	}
}

type dmMessageResponse struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toDMMessageResponse(m dm.Message) dmMessageResponse {
	return dmMessageResponse{
		ID:        m.ID.String(),
		ThreadID:  m.ThreadID.String(),
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

type threadResponse struct {
	ID            string                  `json:"id"`
	CreatedAt     time.Time               `json:"created_at"`
	LastMessageAt time.Time               `json:"last_message_at"`
	Other         *domain.DisplayIdentity `json:"other,omitempty"`
}

func toThreadResponse(v engine.ThreadView) threadResponse {
	resp := threadResponse{
		ID:            v.Thread.ID.String(),
		CreatedAt:     v.Thread.CreatedAt,
		LastMessageAt: v.Thread.LastMessageAt,
	}
	if other, ok := v.Other.Get(); ok {
		resp.Other = &other
	}
	return resp
}

func (s *Server) handleLoungeSend(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := s.lounge.Send(c.Request.Context(), callerFrom(c), req.Content)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

func (s *Server) handleLoungeMessages(c *gin.Context) {
	messages := s.lounge.Messages()
	c.JSON(http.StatusOK, gin.H{
		"messages": lo.Map(messages, func(m chat.Message, _ int) messageResponse {
			return toMessageResponse(m)
		}),
	})
}

func (s *Server) handleLoungeDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	if err := s.lounge.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLoungeSearch(c *gin.Context) {
	terms := c.Query("q")
	if terms == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}
	limit := parseLimit(c.Query("limit"), 20)
	hits, err := s.lounge.Search(c.Request.Context(), terms, limit)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}

func (s *Server) handleResolveThread(c *gin.Context) {
	var req resolveThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	thread, err := s.dms.ResolveThread(c.Request.Context(), callerFrom(c), req.OtherUserID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": thread.ID.String()})
}

func (s *Server) handleThreads(c *gin.Context) {
	views, err := s.dms.Threads(c.Request.Context(), callerFrom(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"threads": lo.Map(views, func(v engine.ThreadView, _ int) threadResponse {
			return toThreadResponse(v)
		}),
	})
}

func (s *Server) handleDMSend(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := s.dms.Send(c.Request.Context(), callerFrom(c), threadID, req.Content)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDMMessageResponse(msg))
}

func (s *Server) handleDMHistory(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}
	limit := parseLimit(c.Query("limit"), chat.HistoryLimit)
	messages, err := s.dms.History(c.Request.Context(), callerFrom(c), threadID, limit)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": lo.Map(messages, func(m dm.Message, _ int) dmMessageResponse {
			return toDMMessageResponse(m)
		}),
	})
}

func (s *Server) handleHeartbeat(c *gin.Context) {
	s.presence.Beat(callerFrom(c).UserID)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := domainpresence.ParseStatusType(req.StatusType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.presence.SetStatus(callerFrom(c).UserID, status, req.StatusMessage); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleOnlineCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": s.presence.OnlineCount()})
}

// renderError maps the error taxonomy onto HTTP statuses. RateLimited and
// ContentRejected are user-visible rejections with no retry; WriteFailed is
// retryable.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrContentRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrWriteFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retryable": true})
	default:
		s.log.Error("Unhandled error", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}
