package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nexusatelier/atelier-backend/internal/http/middleware"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
	"github.com/nexusatelier/atelier-backend/internal/sse"
)

// EventsHandler streams job progress events to the caller over SSE.
type EventsHandler struct {
	hub *sse.Hub
	log *logger.Logger
}

func NewEventsHandler(hub *sse.Hub, baseLog *logger.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, log: baseLog.With("handler", "events")}
}

// GET /api/v1/events
//
// Subscribes the caller to their user channel, and additionally to a
// single job channel when ?job_id= is given.
func (h *EventsHandler) Stream(c *gin.Context) {
	userID := middleware.UserID(c)

	client := h.hub.NewClient(userID)
	h.hub.Subscribe(client, sse.UserChannel(userID))
	if raw := c.Query("job_id"); raw != "" {
		if jobID, err := uuid.Parse(raw); err == nil {
			h.hub.Subscribe(client, sse.JobChannel(jobID))
		}
	}
	defer h.hub.Unsubscribe(client)

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("SSE client disconnected", "client_id", client.ID)
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.Outbound:
			body, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("failed to marshal SSE message", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			fmt.Fprintf(w, "data: %s\n\n", body)
			flusher.Flush()
		}
	}
}
