package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fooddealsberlin/backend/pkg/enums"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

func TestHubBroadcastReachesClient(t *testing.T) {
	logg := logger.New(logger.Options{})
	hub := NewHub(logg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(ServeWS(hub, logg))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()

	dealID := uuid.New()
	// Registration is asynchronous; keep publishing until the event lands.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				hub.Publish(Event{Type: enums.EventVoteChanged, DealID: dealID})
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Type != enums.EventVoteChanged {
		t.Fatalf("expected %s, got %s", enums.EventVoteChanged, event.Type)
	}
	if event.DealID != dealID {
		t.Fatalf("expected deal %s, got %s", dealID, event.DealID)
	}
	if event.OccurredAt.IsZero() {
		t.Fatal("expected occurred_at to be stamped")
	}
}

func TestPublishWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, nil)
	// No Run loop; the buffered queue absorbs the publishes and the overflow
	// path drops the rest.
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.Publish(Event{Type: enums.EventDealCreated, DealID: uuid.New()})
	}
}
