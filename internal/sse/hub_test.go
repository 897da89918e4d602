package sse

import (
	"testing"

	"github.com/google/uuid"

	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewHub(log)
}

func TestPublishReachesSubscribers(t *testing.T) {
	hub := testHub(t)
	userID := uuid.New()
	client := hub.NewClient(userID)
	hub.Subscribe(client, UserChannel(userID))

	hub.Publish(UserChannel(userID), EventJobQueued, map[string]string{"job_id": "x"})

	select {
	case msg := <-client.Outbound:
		if msg.Event != EventJobQueued {
			t.Fatalf("event %s, want %s", msg.Event, EventJobQueued)
		}
		if msg.Channel != UserChannel(userID) {
			t.Fatalf("channel %s, want %s", msg.Channel, UserChannel(userID))
		}
	default:
		t.Fatalf("subscribed client received nothing")
	}
}

func TestPublishToUnrelatedChannel(t *testing.T) {
	hub := testHub(t)
	client := hub.NewClient(uuid.New())
	hub.Subscribe(client, UserChannel(client.UserID))

	hub.Publish(JobChannel(uuid.New()), EventJobStarted, nil)

	select {
	case msg := <-client.Outbound:
		t.Fatalf("client received %v for a channel it never subscribed to", msg)
	default:
	}
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	hub := testHub(t)
	userID := uuid.New()
	client := hub.NewClient(userID)
	hub.Subscribe(client, UserChannel(userID))

	// Overfill the outbound buffer; Publish must never block.
	for i := 0; i < cap(client.Outbound)+10; i++ {
		hub.Publish(UserChannel(userID), EventJobCompleted, i)
	}
	if got := len(client.Outbound); got != cap(client.Outbound) {
		t.Fatalf("outbound holds %d messages, want full buffer %d", got, cap(client.Outbound))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := testHub(t)
	userID := uuid.New()
	client := hub.NewClient(userID)
	hub.Subscribe(client, UserChannel(userID))
	hub.Subscribe(client, JobChannel(uuid.New()))
	hub.Unsubscribe(client)

	hub.Publish(UserChannel(userID), EventJobFailed, nil)
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unsubscribed client received %v", msg)
	default:
	}
}
