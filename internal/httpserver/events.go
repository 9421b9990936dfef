package httpserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tinytelemetry/nucleus/internal/engine"
)

const (
	eventInterval = 250 * time.Millisecond
	writeTimeout  = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API listens on loopback unless configured otherwise.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// event is one message on the /api/events stream.
type event struct {
	Type  string          `json:"type"`
	State engine.Snapshot `json:"state"`
}

// stateKey identifies a published engine change. The frame counter is left
// out so a running animation does not flood subscribers.
type stateKey struct {
	state   string
	active  int
	hovered bool
	running bool
	at      time.Time
}

func keyOf(s engine.Snapshot) stateKey {
	return stateKey{state: s.State, active: s.Active, hovered: s.Hovered, running: s.Running, at: s.UpdatedAt}
}

// hub tracks websocket subscribers. All writes to a connection after it
// joins happen under mu.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *hub) add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		_ = ws.Close()
		delete(h.clients, ws)
	}
}

// handleEvents upgrades to a websocket, sends the current state and then
// every state change until the client goes away.
func (s *Server) handleEvents(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(event{Type: "state", State: s.ctrl.Snapshot()}); err != nil {
		_ = ws.Close()
		return
	}
	s.events.add(ws)
	log.Printf("api: events subscriber connected (%d)", s.events.count())

	// Incoming messages are ignored; reading detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	s.events.remove(ws)
}

// watch polls the controller and broadcasts each published change.
func (s *Server) watch(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	var last stateKey
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap := s.ctrl.Snapshot()
			if k := keyOf(snap); k != last {
				last = k
				s.events.broadcast(event{Type: "state", State: snap})
			}
		}
	}
}
