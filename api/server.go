// Package api is the HTTP and WebSocket surface of the messaging core.
// Authentication is a bearer token from the external identity provider;
// handlers map the error taxonomy onto status codes.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	domainpresence "gamelounge/domain/presence"
	"gamelounge/identity"
	"gamelounge/presence"
	"gamelounge/services"
)

const callerContextKey = "caller"

type Server struct {
	log      *slog.Logger
	verifier *identity.Verifier
	hydrator *identity.Hydrator
	tracker  *presence.Tracker
	lounge   services.ILoungeService
	dms      services.IDMService
	presence services.IPresenceService
}

func NewServer(
	log *slog.Logger,
	verifier *identity.Verifier,
	hydrator *identity.Hydrator,
	tracker *presence.Tracker,
	lounge services.ILoungeService,
	dms services.IDMService,
	presenceService services.IPresenceService,
) *Server {
	return &Server{
		log:      log,
		verifier: verifier,
		hydrator: hydrator,
		tracker:  tracker,
		lounge:   lounge,
		dms:      dms,
		presence: presenceService,
	}
}

func (s *Server) Router() *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("statustype", func(fl validator.FieldLevel) bool {
			_, err := domainpresence.ParseStatusType(fl.Field().String())
			return err == nil
		})
	}

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.GET("/ws", s.handleStream)

	authed := api.Group("")
	authed.Use(s.authenticate)
	{
		authed.POST("/lounge/messages", s.handleLoungeSend)
		authed.GET("/lounge/messages", s.handleLoungeMessages)
		authed.DELETE("/lounge/messages/:id", s.handleLoungeDelete)
		authed.GET("/lounge/search", s.handleLoungeSearch)

		authed.POST("/dm/threads", s.handleResolveThread)
		authed.GET("/dm/threads", s.handleThreads)
		authed.POST("/dm/threads/:id/messages", s.handleDMSend)
		authed.GET("/dm/threads/:id/messages", s.handleDMHistory)

		authed.POST("/presence/heartbeat", s.handleHeartbeat)
		authed.PUT("/presence/status", s.handleSetStatus)
		authed.GET("/presence/online", s.handleOnlineCount)
	}

	return router
}

// authenticate resolves the caller from the Authorization header. Absence
// of identity fails every mutating call with an authorization error.
func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	caller, err := s.verifier.Verify(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Set(callerContextKey, caller)
	c.Next()
}

func callerFrom(c *gin.Context) identity.Caller {
	value, _ := c.Get(callerContextKey)
	caller, _ := value.(identity.Caller)
	return caller
}
