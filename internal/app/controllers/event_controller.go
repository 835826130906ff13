package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

// EventController streams realtime events to the caller's room
type EventController struct {
	hub       *realtime.Hub
	upgrader  *websocket.Upgrader
	heartbeat time.Duration
	logger    zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(hub *realtime.Hub, upgrader *websocket.Upgrader, heartbeat time.Duration, logger zerolog.Logger) *EventController {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &EventController{
		hub:       hub,
		upgrader:  upgrader,
		heartbeat: heartbeat,
		logger:    logger,
	}
}

func (c *EventController) subscribe(ctx *gin.Context) (*realtime.Subscriber, bool) {
	actor, ok := requireActor(ctx)
	if !ok {
		return nil, false
	}
	sub := c.hub.Subscribe(actor.AgencyID, actor.IsAdmin())
	if sub == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Event stream unavailable")
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return sub, true
}

// Stream sends events as Server-Sent Events with a periodic heartbeat
// @Summary Event stream (SSE)
// @Description Events: heartbeat, application.created, application.status, payment.updated, document.uploaded, offline_payment.created, offline_payment.status
// @Tags events
// @Produce text/event-stream
// @Security SessionCookie
// @Success 200 {string} string "event stream"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /events [get]
func (c *EventController) Stream(ctx *gin.Context) {
	sub, ok := c.subscribe(ctx)
	if !ok {
		return
	}
	defer c.hub.Unsubscribe(sub)

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	c.logger.Debug().
		Str("subscriberID", sub.ID).
		Str("agencyID", sub.AgencyID).
		Int("subscribers", c.hub.SubscriberCount()).
		Msg("SSE client connected")
	ctx.SSEvent(realtime.EventHeartbeat, gin.H{"time": time.Now().UTC()})
	ctx.Writer.Flush()

	done := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case event, open := <-sub.Events():
			if !open {
				return false
			}
			ctx.SSEvent(event.Type, event)
			return true
		case t := <-ticker.C:
			ctx.SSEvent(realtime.EventHeartbeat, gin.H{"time": t.UTC()})
			return true
		}
	})
	c.logger.Debug().Str("subscriberID", sub.ID).Msg("SSE client disconnected")
}

// WebSocket sends the same events over a websocket connection
// @Summary Event stream (WebSocket)
// @Tags events
// @Security SessionCookie
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /ws [get]
func (c *EventController) WebSocket(ctx *gin.Context) {
	sub, ok := c.subscribe(ctx)
	if !ok {
		return
	}
	if err := c.hub.ServeWS(c.upgrader, ctx.Writer, ctx.Request, sub); err != nil {
		// the upgrader has already written the HTTP error
		c.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
	}
}
