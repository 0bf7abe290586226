package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/crypto_mining_pool/internal/domain"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

type priceMessage struct {
	Type   string              `json:"type"`
	Prices []domain.PriceEntry `json:"prices"`
}

// Hub fans refreshed prices out to websocket subscribers. Slow clients whose
// buffer is full miss updates rather than blocking the broadcaster.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger.With(zap.String("component", "ws_hub")),
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Broadcast pushes a price update to every connected client.
func (h *Hub) Broadcast(prices []domain.PriceEntry) {
	msg, err := json.Marshal(priceMessage{Type: "prices", Prices: prices})
	if err != nil {
		h.logger.Error("Failed to encode price update", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- msg:
		default:
			h.logger.Warn("Dropping update for slow client", zap.String("remote", conn.RemoteAddr().String()))
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn, ch := range h.clients {
		close(ch)
		delete(h.clients, conn)
	}
}

func (h *Hub) register(conn *websocket.Conn, initial []byte) (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan []byte, sendBuffer)
	if initial != nil {
		ch <- initial
	}
	h.clients[conn] = ch
	return ch, true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
}

// Serve upgrades the request and streams updates until the client goes away.
// The current cache contents are sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, snapshot []domain.PriceEntry) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	initial, err := json.Marshal(priceMessage{Type: "snapshot", Prices: snapshot})
	if err != nil {
		initial = nil
	}

	ch, ok := h.register(conn, initial)
	if !ok {
		conn.Close()
		return
	}

	go h.writeLoop(conn, ch)
	h.readLoop(conn)
}

// readLoop only watches for the client closing; inbound messages are ignored.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer func() {
		h.unregister(conn)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, ch chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
