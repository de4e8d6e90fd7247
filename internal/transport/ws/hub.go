package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"socialnet/internal/model"
	"socialnet/internal/transport/http/middleware"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

type client struct {
	out chan []byte
}

// Hub pushes each delivered notification to the WebSocket connections of its
// receiver. A user may hold several connections; slow connections lose
// messages rather than stall delivery.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

// NewHub accepts upgrades from the server's own origin plus allowedOrigins
// ("https://app.example.com", or "*" for any).
func NewHub(allowedOrigins ...string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// originChecker returns nil for an empty list, which leaves gorilla's
// same-origin check in place.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // not a browser
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		if !ok {
			log.Printf("[WS] rejected origin %s", origin)
		}
		return ok
	}
}

// Delivered queues n for every connection of n.Receiver.
func (h *Hub) Delivered(n model.Notification) {
	h.mu.RLock()
	conns := h.clients[n.Receiver]
	if len(conns) == 0 {
		h.mu.RUnlock()
		return
	}
	b, err := json.Marshal(n)
	if err != nil {
		h.mu.RUnlock()
		log.Printf("[WS] marshal notification %s: %v", n.ID, err)
		return
	}
	for c := range conns {
		select {
		case c.out <- b:
		default:
			log.Printf("[WS] client buffer full, dropped notification %s for %s", n.ID, n.Receiver)
		}
	}
	h.mu.RUnlock()
}

// Connections returns how many connections name currently holds.
func (h *Hub) Connections(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[name])
}

// ServeHTTP upgrades an authenticated request and streams the user's
// notifications until either side closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{out: make(chan []byte, clientBuffer)}
	h.add(name, c)
	defer h.remove(name, c)
	log.Printf("[WS] %s connected (%d connections)", name, h.Connections(name))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		h.writeLoop(ctx, conn, c)
	}()

	// Incoming messages are ignored; reading keeps pong handling alive and
	// notices when the peer goes away.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-writeDone
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	log.Printf("[WS] %s disconnected", name)
}

func (h *Hub) writeLoop(ctx context.Context, conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-c.out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *Hub) add(name string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[name] == nil {
		h.clients[name] = make(map[*client]struct{})
	}
	h.clients[name][c] = struct{}{}
}

func (h *Hub) remove(name string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[name], c)
	if len(h.clients[name]) == 0 {
		delete(h.clients, name)
	}
}
