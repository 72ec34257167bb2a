package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vrtravel/reconcli/internal/events"
)

// sseHub fans bus events out to connected SSE clients. It subscribes to
// the bus once; per-connection channels come and go with requests.
type sseHub struct {
	mu      sync.Mutex
	clients map[chan events.Event]struct{}
}

func newSSEHub(bus *events.Bus) *sseHub {
	h := &sseHub{clients: make(map[chan events.Event]struct{})}
	bus.Subscribe(h.broadcast)
	return h
}

func (h *sseHub) broadcast(e events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		// Drop the event for slow clients rather than block the bus.
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *sseHub) add() chan events.Event {
	ch := make(chan events.Event, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *sseHub) remove(ch chan events.Event) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// busEvent is the SSE payload for a workflow event.
type busEvent struct {
	Type     string `json:"type"`
	Op       string `json:"op,omitempty"`
	SceneID  string `json:"sceneId,omitempty"`
	Message  string `json:"message,omitempty"`
	Progress int    `json:"progress"`
}

// handleSSE streams bus events to the client until it disconnects.
func handleSSE(hub *sseHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		ch := hub.add()
		defer hub.remove(ch)

		ctx := c.Request.Context()
		heartbeat := time.NewTicker(15 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case e := <-ch:
				writeSSE(c.Writer, string(e.Type), busEvent{
					Type:     string(e.Type),
					Op:       e.Op,
					SceneID:  e.SceneID,
					Message:  e.Message,
					Progress: e.Progress,
				})
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
