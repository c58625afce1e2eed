package realtime

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Room name prefixes keep the three topic kinds from ever colliding:
// a user id, a role name and a shipment id can never address the same room.
const (
	userRoomPrefix     = "user:"
	roleRoomPrefix     = "role:"
	shipmentRoomPrefix = "shipment:"
)

// UserRoom names the private room of a single user.
func UserRoom(userID string) string { return userRoomPrefix + userID }

// RoleRoom names the shared room of every connected user holding a role.
func RoleRoom(role string) string { return roleRoomPrefix + role }

// ShipmentRoom names the tracking room of a shipment.
func ShipmentRoom(shipmentID string) string { return shipmentRoomPrefix + shipmentID }

// Conn is the subset of *websocket.Conn the hub needs. Tests substitute fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Event is the envelope for every server-to-client frame.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one authenticated websocket connection.
type Client struct {
	UserID string
	Role   string

	conn Conn
	mu   sync.Mutex // serializes writes to the underlying connection
}

// NewClient wraps an authenticated connection.
func NewClient(userID, role string, conn Conn) *Client {
	return &Client{UserID: userID, Role: role, conn: conn}
}

// Send writes one event frame to the client.
func (c *Client) Send(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(Event{Event: event, Data: payload})
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Hub is the in-process room registry. It is the only shared mutable state of
// the realtime layer and is constructor-injected wherever it is needed, so
// tests can run isolated instances.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	// reverse index so Unregister can drop every membership of a connection
	members map[*Client]map[string]struct{}
}

// NewHub creates an empty registry.
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		members: make(map[*Client]map[string]struct{}),
	}
}

// Register joins the client to its own user room and, if it carries a role,
// to that role's room. Called once per connection, right after authentication.
func (h *Hub) Register(c *Client) {
	h.JoinRoom(c, UserRoom(c.UserID))
	if c.Role != "" {
		h.JoinRoom(c, RoleRoom(c.Role))
	}
	log.WithFields(log.Fields{
		"userID": c.UserID,
		"role":   c.Role,
	}).Info("Realtime client registered")
}

// JoinRoom adds the client to a room.
func (h *Hub) JoinRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}

	if h.members[c] == nil {
		h.members[c] = make(map[string]struct{})
	}
	h.members[c][room] = struct{}{}
}

// LeaveRoom removes the client from a room. Leaving a room the client is not
// in is a no-op.
func (h *Hub) LeaveRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, room)
}

// Unregister drops every membership of the client. Called on disconnect;
// no other cleanup is required.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.members[c] {
		h.removeLocked(c, room)
	}
	delete(h.members, c)
}

func (h *Hub) removeLocked(c *Client, room string) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.members[c]; ok {
		delete(rooms, room)
	}
}

// Emit delivers the payload under the given event name to every current
// member of the room. Fire-and-forget: at most once per connected member,
// no retry, no queuing for members who join later. Write failures are
// logged and otherwise ignored; the persisted notification feed is the
// durable fallback channel.
func (h *Hub) Emit(room, event string, payload interface{}) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.Send(event, payload); err != nil {
			log.WithFields(log.Fields{
				"userID": c.UserID,
				"room":   room,
				"event":  event,
			}).WithError(err).Warn("Failed to emit event to client")
		}
	}
}
