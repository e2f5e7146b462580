package dealstore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
)

const watchEventBuffer = 64

// Watch dials the deal event stream and delivers change events until the
// context is cancelled or the connection drops, at which point the channel is
// closed. Callers that want the stream back simply call Watch again.
func (c *Client) Watch(ctx context.Context) (<-chan Event, error) {
	endpoint := wsURL(c.baseURL) + "/api/v1/deals/ws"

	header := map[string][]string{}
	if token := c.session(); token != "" {
		header["Authorization"] = []string{"Bearer " + token}
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dial event stream")
	}

	events := make(chan Event, watchEventBuffer)

	// Unblocks the read loop when the caller gives up.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(events)
		defer func() { _ = conn.Close() }()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var event Event
			if err := json.Unmarshal(raw, &event); err != nil {
				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// wsURL swaps the http scheme for its websocket counterpart.
func wsURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return baseURL
}
