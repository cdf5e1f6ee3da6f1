package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// EventHandler receives everything the hub serializes. Calls never overlap.
type EventHandler interface {
	OnMessage(sess *Session, data []byte)
	OnDisconnect(sess *Session)
}

type HubConfig struct {
	SendBuffer        int
	MessagesPerSecond float64
	Burst             int
}

func DefaultHubConfig() HubConfig {
	return HubConfig{SendBuffer: 256, MessagesPerSecond: 10, Burst: 20}
}

// Hub owns every live connection and runs all game logic on one goroutine:
// client messages, disconnects and posted tasks are processed in arrival order.
type Hub struct {
	clients    map[*Client]*Session
	register   chan *Client
	unregister chan *Client
	incoming   chan clientMessage
	tasks      chan func()
	done       chan struct{}
	cfg        HubConfig
}

type Client struct {
	hub     *Hub
	id      string
	socket  *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	closed  bool
}

type clientMessage struct {
	client *Client
	data   []byte
	err    error
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultHubConfig().SendBuffer
	}
	return &Hub{
		clients:    make(map[*Client]*Session),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		tasks:      make(chan func(), 64),
		done:       make(chan struct{}),
		cfg:        cfg,
	}
}

func (h *Hub) Run(ctx context.Context, handler EventHandler) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = NewSession(client)
			log.Debug().Str("conn_id", client.id).Int("clients", len(h.clients)).Msg("Client registered")

		case client := <-h.unregister:
			sess, ok := h.clients[client]
			if !ok {
				continue
			}
			handler.OnDisconnect(sess)
			h.drop(client)
			log.Debug().Str("conn_id", client.id).Int("clients", len(h.clients)).Msg("Client unregistered")

		case msg := <-h.incoming:
			sess, ok := h.clients[msg.client]
			if !ok {
				continue
			}
			if msg.err != nil {
				msg.client.Send(EncodeError(msg.err))
				continue
			}
			handler.OnMessage(sess, msg.data)

		case task := <-h.tasks:
			task()
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	client.closed = true
	close(client.send)
}

// Post queues task to run on the hub goroutine. It is a no-op once the hub stopped.
func (h *Hub) Post(task func()) {
	select {
	case h.tasks <- task:
	case <-h.done:
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := &Client{
		hub:     h,
		id:      uuid.NewString(),
		socket:  conn,
		send:    make(chan []byte, h.cfg.SendBuffer),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.MessagesPerSecond), h.cfg.Burst),
	}
	if h.cfg.MessagesPerSecond <= 0 {
		client.limiter = rate.NewLimiter(rate.Inf, 0)
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return client
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) ID() string {
	return c.id
}

// Send queues data without blocking. A full buffer means the peer stopped
// reading, so the socket is closed and the read loop unregisters it.
func (c *Client) Send(data []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		log.Warn().Str("conn_id", c.id).Msg("Send buffer full, closing connection")
		c.socket.Close()
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.socket.Close()
	}()

	c.socket.SetReadLimit(maxMessageSize)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("conn_id", c.id).Msg("WebSocket unexpected close error")
			}
			break
		}

		msg := clientMessage{client: c, data: message}
		if !c.limiter.Allow() {
			msg = clientMessage{client: c, err: ErrRateLimited}
		}
		select {
		case c.hub.incoming <- msg:
		case <-c.hub.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.socket.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
