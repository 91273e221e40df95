package game

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

// clientQueueSize bounds each client's outbound queue. A slow reader loses
// frames rather than stalling the hub or other clients.
const clientQueueSize = 64

// Client is one websocket connection. All frames go through the out queue
// and a single writer goroutine, so messages reach the wire in the order
// they were queued.
type Client struct {
	conn      *websocket.Conn
	userID    atomic.Int64
	out       chan []byte
	closeOnce sync.Once
}

// Hub fans events out to connected clients. Broadcast reaches everyone;
// SendToUser reaches one authenticated user's connection if it is online.
type Hub struct {
	clients    map[*Client]struct{}
	users      map[int64]*Client
	broadcast  chan interface{}
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		users:      make(map[int64]*Client),
		broadcast:  make(chan interface{}, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			if id := client.userID.Load(); id != 0 {
				h.users[id] = client
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.WithField("component", "hub").Infof("client connected: user %d (total %d)", client.userID.Load(), total)
			h.Broadcast(map[string]interface{}{"type": "online_count", "count": total})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				if id := client.userID.Load(); h.users[id] == client {
					delete(h.users, id)
				}
				client.close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.WithField("component", "hub").Infof("client disconnected: user %d (total %d)", client.userID.Load(), total)
			h.Broadcast(map[string]interface{}{"type": "online_count", "count": total})

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				log.WithField("component", "hub").Errorf("marshal error: %v", err)
				continue
			}
			h.mu.RLock()
			for client := range h.clients {
				client.enqueue(data)
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a message for every connected client. It never blocks;
// when the queue is full the message is dropped.
func (h *Hub) Broadcast(message interface{}) {
	select {
	case h.broadcast <- message:
	default:
		log.WithField("component", "hub").Warn("broadcast channel full, dropping message")
	}
}

// SendToUser delivers a message to one user's connection. Unknown or offline
// users are ignored.
func (h *Hub) SendToUser(userID int64, message interface{}) {
	h.mu.RLock()
	client, ok := h.users[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	client.Send(message)
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsOnline reports whether the user has an authenticated connection.
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.users[userID]
	return ok
}

// Send marshals a message and queues it for this client. It never blocks;
// when the queue is full the message is dropped.
func (c *Client) Send(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.WithField("component", "hub").Errorf("send marshal error: %v", err)
		return
	}
	c.enqueue(data)
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.out <- data:
	default:
		log.WithField("component", "hub").Warnf("client queue full, dropping message for user %d", c.userID.Load())
	}
}

// writeLoop is the only goroutine that writes to the connection. It exits
// when close drains the queue.
func (c *Client) writeLoop() {
	for data := range c.out {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.WithField("component", "hub").Errorf("write error for user %d: %v", c.userID.Load(), err)
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.out)
		c.conn.Close()
	})
}

// RegisterClient attaches a connection under the given user id. Pass 0 for
// a connection that has not authenticated yet.
func (h *Hub) RegisterClient(conn *websocket.Conn, userID int64) *Client {
	client := &Client{conn: conn, out: make(chan []byte, clientQueueSize)}
	client.userID.Store(userID)
	go client.writeLoop()
	h.register <- client
	return client
}

// BindUser reassigns an open connection to an authenticated user without
// closing it. An existing binding for the client's previous id is dropped.
func (h *Hub) BindUser(client *Client, userID int64) {
	h.mu.Lock()
	if old := client.userID.Load(); h.users[old] == client {
		delete(h.users, old)
	}
	client.userID.Store(userID)
	if userID != 0 {
		h.users[userID] = client
	}
	h.mu.Unlock()
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
