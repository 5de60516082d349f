package livews

import (
	"encoding/json"
	"log"
	"time"

	websocket "github.com/gofiber/contrib/websocket"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
)

// Hub pushes session state changes to clients subscribed per class. It is the
// push alternative to polling the session read endpoints; delivery is
// best-effort and correctness never depends on it.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan *Event
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	classID int64
	send    chan []byte
}

type Event struct {
	Type      string `json:"type"`
	ClassID   int64  `json:"class_id"`
	SessionID int64  `json:"session_id"`
	Status    string `json:"status"`
	JoinURL   string `json:"join_url,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, classID int64) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		classID: classID,
		send:    make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.classID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.classID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.classID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.classID)
			}
		case event := <-h.events:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifySession implements services.SessionNotifier. A full event buffer
// drops the notification rather than blocking the caller.
func (h *Hub) NotifySession(eventType string, session *models.LiveSession) {
	event := &Event{
		Type:      eventType,
		ClassID:   session.ClassID,
		SessionID: session.ID,
		Status:    session.Status,
		JoinURL:   session.JoinURL,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case h.events <- event:
	default:
		log.Printf("live hub: dropping %s event for class %d", eventType, session.ClassID)
	}
}

func (h *Hub) deliver(event *Event) {
	set, ok := h.clients[event.ClassID]
	if !ok {
		return
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("live hub: encode event: %v", err)
		return
	}

	for client := range set {
		select {
		case client.send <- encoded:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, event.ClassID)
	}
}

// ReadPump drains the connection until the client goes away. Inbound payloads
// carry no meaning; the stream is one-directional.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
