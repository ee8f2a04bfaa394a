package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"github.com/Dias221467/Campus_Overflow/pkg/middleware"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many pushes may queue for one connection before it
	// is treated as stalled and dropped.
	sendBuffer = 16
)

// WSMessage is what connected clients receive.
type WSMessage struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// wsClient is one open socket. Only its write loop writes to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// NotificationHub keeps the open websocket connections of each user and
// pushes new notifications to them.
type NotificationHub struct {
	Verifier middleware.TokenVerifier
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[primitive.ObjectID]map[*wsClient]struct{}
}

func NewNotificationHub(verifier middleware.TokenVerifier, allowedOrigins []string) *NotificationHub {
	h := &NotificationHub{
		Verifier: verifier,
		clients:  make(map[primitive.ObjectID]map[*wsClient]struct{}),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// GET /ws/notifications?token=...
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization token"})
		return
	}
	claims, err := h.Verifier.Verify(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := h.register(userID, conn)
	go h.writeLoop(userID, c)
	log := logger.Log.WithField("user_id", userID.Hex())
	log.Debug("WebSocket connected")

	defer func() {
		h.drop(userID, c)
		log.Debug("WebSocket disconnected")
	}()

	// Clients only listen; reading keeps control frames flowing and notices
	// when the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop delivers queued pushes until the client is dropped. A failed
// write drops the client at once.
func (h *NotificationHub) writeLoop(userID primitive.ObjectID, c *wsClient) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID.Hex()).Warn("Failed to push notification")
			h.drop(userID, c)
			return
		}
	}
}

func (h *NotificationHub) register(userID primitive.ObjectID, conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn, send: make(chan WSMessage, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*wsClient]struct{})
	}
	h.clients[userID][c] = struct{}{}
	return c
}

// drop unregisters c and closes its socket. It is safe to call more than once.
func (h *NotificationHub) drop(userID primitive.ObjectID, c *wsClient) {
	h.mu.Lock()
	h.removeLocked(userID, c)
	h.mu.Unlock()
	c.conn.Close()
}

// removeLocked must be called with h.mu held. send is closed here and only
// here, so Publish never sends on a closed channel.
func (h *NotificationHub) removeLocked(userID primitive.ObjectID, c *wsClient) {
	if _, ok := h.clients[userID][c]; !ok {
		return
	}
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	close(c.send)
}

// Connections reports how many sockets userID has open.
func (h *NotificationHub) Connections(userID primitive.ObjectID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Publish queues notif for every open connection of userID without doing any
// socket I/O. A connection whose queue is full is dropped.
func (h *NotificationHub) Publish(userID primitive.ObjectID, notif models.Notification) {
	msg := WSMessage{Type: "notification", Notification: &notif}

	var stalled []*wsClient
	h.mu.Lock()
	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
		default:
			h.removeLocked(userID, c)
			stalled = append(stalled, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stalled {
		logger.Log.WithField("user_id", userID.Hex()).Warn("Dropping stalled notification socket")
		c.conn.Close()
	}
}
