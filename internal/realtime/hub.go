package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fooddealsberlin/backend/pkg/logger"
	"github.com/fooddealsberlin/backend/pkg/metrics"
)

const (
	// broadcastBuffer bounds the event queue; publishers never block, a full
	// queue drops the event instead.
	broadcastBuffer = 256
	// clientSendBuffer bounds each client's outbound queue; a slow reader is
	// disconnected rather than allowed to stall the hub.
	clientSendBuffer = 64
)

// Hub fans change events out to every connected websocket client.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	logg       *logger.Logger
	metrics    *metrics.APIMetrics
}

// NewHub builds an idle hub. Call Run to start the fan-out loop.
func NewHub(logg *logger.Logger, apiMetrics *metrics.APIMetrics) *Hub {
	if logg == nil {
		logg = logger.New(logger.Options{})
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBuffer),
		logg:       logg,
		metrics:    apiMetrics,
	}
}

// Run owns the client set until ctx is cancelled. All registration and
// broadcast traffic is serialized here; no other goroutine touches h.clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.WSClientConnected()
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.drop(c)
				}
			}
		}
	}
}

// Publish queues an event for every connected client. Never blocks; when the
// queue is full the event is dropped and clients catch up on their next
// refresh.
func (h *Hub) Publish(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.logg.Error(context.Background(), "realtime.marshal_event", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logg.Warn(context.Background(), "realtime.broadcast_queue_full")
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.metrics.WSClientDisconnected()
}
