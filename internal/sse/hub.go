package sse

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

type Event string

const (
	EventJobQueued    Event = "JobQueued"
	EventJobStarted   Event = "JobStarted"
	EventJobCompleted Event = "JobCompleted"
	EventJobFailed    Event = "JobFailed"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// Client is one connected event stream. Outbound is drained by the HTTP
// handler; slow clients drop messages rather than block publishers.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan Message
}

type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(baseLog *logger.Logger) *Hub {
	return &Hub{
		log:           baseLog.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func UserChannel(userID uuid.UUID) string { return "user:" + userID.String() }
func JobChannel(jobID uuid.UUID) string   { return "job:" + jobID.String() }

func (h *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, 16),
	}
}

func (h *Hub) Subscribe(client *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	client.Channels[channel] = true
	clients, ok := h.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]bool)
		h.subscriptions[channel] = clients
	}
	clients[client] = true
	h.log.Debug("SSE client subscribed", "client_id", client.ID, "channel", channel)
}

func (h *Hub) Unsubscribe(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel := range client.Channels {
		if clients, ok := h.subscriptions[channel]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.subscriptions, channel)
			}
		}
	}
	client.Channels = make(map[string]bool)
}

func (h *Hub) Publish(channel string, event Event, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.subscriptions[channel]
	if !ok {
		return
	}
	msg := Message{Channel: channel, Event: event, Data: data}
	for client := range clients {
		select {
		case client.Outbound <- msg:
		default:
			h.log.Warn("SSE client outbound full, dropping message",
				"client_id", client.ID,
				"channel", channel,
				"event", fmt.Sprint(event),
			)
		}
	}
}
