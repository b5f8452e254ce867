// Package ws pushes job lifecycle events to websocket subscribers.
package ws

import (
	"net/http"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"voicelab-server-go/internal/domain/eventbus"
	"voicelab-server-go/internal/platform/logging"
	"voicelab-server-go/internal/platform/storage"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 16
)

// Event is the wire shape of one job update.
type Event struct {
	Topic string             `json:"topic"`
	Job   *storage.JobRecord `json:"job"`
}

type client struct {
	conn     *websocket.Conn
	clientID string
	send     chan []byte
}

// Hub fans job lifecycle events out to connected clients. A client only
// receives events for its own jobs.
type Hub struct {
	bus    evbus.Bus
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	upgrader websocket.Upgrader
}

func NewHub(bus evbus.Bus, logger *logging.Logger) (*Hub, error) {
	h := &Hub{
		bus:     bus,
		logger:  logger,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	for _, topic := range []string{
		eventbus.TopicJobAccepted,
		eventbus.TopicJobStarted,
		eventbus.TopicJobCompleted,
		eventbus.TopicJobFailed,
		eventbus.TopicJobCancelled,
	} {
		topic := topic
		if err := bus.Subscribe(topic, func(rec *storage.JobRecord) {
			h.broadcast(topic, rec)
		}); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Handle upgrades a request; the client id comes from the query so browser
// websocket clients can pass it without headers.
func (h *Hub) Handle(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = "anonymous"
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.WarnTag("WS", "upgrade failed: %v", err)
		}
		return
	}

	cl := &client{conn: conn, clientID: clientID, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.InfoTag("WS", "client %s connected (%d total)", clientID, h.Count())
	}

	go h.writeLoop(cl)
	go h.readLoop(cl)
}

// Count reports connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(topic string, rec *storage.JobRecord) {
	payload, err := sonic.Marshal(Event{Topic: topic, Job: rec})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		if cl.clientID != rec.ClientID {
			continue
		}
		select {
		case cl.send <- payload:
		default:
			// Slow consumer, drop the event rather than block the bus.
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	cl.conn.Close()
}

func (h *Hub) readLoop(cl *client) {
	defer h.drop(cl)
	cl.conn.SetReadLimit(512)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-cl.send:
			if !ok {
				cl.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
				return
			}
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
