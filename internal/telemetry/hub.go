package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/magefree/monopoly-server-go/internal/game/rules"
)

// Message is a frame sent to spectators.
type Message struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// EventView is the JSON shape of an event on the spectator stream.
type EventView struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Player      string            `json:"player,omitempty"`
	Target      string            `json:"target,omitempty"`
	Amount      int               `json:"amount"`
	Display     string            `json:"display,omitempty"`
	Description string            `json:"description"`
	Time        time.Time         `json:"time"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub streams game events to websocket spectators. Each spectator has its
// own buffered queue; a spectator that falls behind is dropped.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	count      atomic.Int64

	upgrader websocket.Upgrader
	money    Money
	logger   *zap.Logger
}

// NewHub creates a hub. Run must be called before spectators connect.
func NewHub(money Money, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // spectating is read only
			},
		},
		money:  money,
		logger: logger,
	}
}

// Run serves registrations and broadcasts until ctx is done, then
// disconnects every spectator.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			h.logger.Debug("spectator connected", zap.String("remote", c.conn.RemoteAddr().String()))

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Debug("spectator disconnected", zap.String("remote", c.conn.RemoteAddr().String()))
			}

		case frame := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- frame:
				default:
					h.logger.Warn("dropping slow spectator", zap.String("remote", c.conn.RemoteAddr().String()))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish queues evt for every spectator. It has the shape of a
// rules.Listener and never blocks the engine.
func (h *Hub) Publish(evt rules.Event) {
	view := EventView{
		ID:          evt.ID,
		Type:        string(evt.Type),
		Player:      evt.PlayerID,
		Target:      evt.TargetID,
		Amount:      evt.Amount,
		Description: evt.Description,
		Time:        evt.Timestamp,
		Metadata:    evt.Metadata,
	}
	if IsMoney(evt.Type) {
		view.Display = h.money.Format(evt.Amount)
	}

	frame, err := json.Marshal(Message{Type: "event", GameID: evt.GameID, Data: view})
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("event", string(evt.Type)), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- frame:
	case <-h.done:
	default:
		h.logger.Warn("spectator stream full, event dropped", zap.String("event", string(evt.Type)))
	}
}

// ServeHTTP upgrades the request to a websocket and streams events to it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 256),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

// readPump discards anything a spectator sends and notices when it leaves.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
