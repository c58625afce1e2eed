package realtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	frames   []Event
	failNext bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext {
		return errors.New("write failed")
	}
	ev, ok := v.(Event)
	if !ok {
		return errors.New("unexpected frame type")
	}
	c.frames = append(c.frames, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.frames))
	copy(out, c.frames)
	return out
}

func TestRoomNamesDoNotCollide(t *testing.T) {
	// The same identifier must address three different rooms depending on kind.
	id := "abc123"
	assert.NotEqual(t, UserRoom(id), RoleRoom(id))
	assert.NotEqual(t, UserRoom(id), ShipmentRoom(id))
	assert.NotEqual(t, RoleRoom(id), ShipmentRoom(id))
}

func TestRegisterJoinsUserAndRoleRooms(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	client := NewClient("u1", "CARRIER", conn)
	hub.Register(client)

	hub.Emit(UserRoom("u1"), "notification", "direct")
	hub.Emit(RoleRoom("CARRIER"), "notification", "broadcast")
	hub.Emit(RoleRoom("SHIPPER"), "notification", "other role")

	frames := conn.received()
	require.Len(t, frames, 2)
	assert.Equal(t, "direct", frames[0].Data)
	assert.Equal(t, "broadcast", frames[1].Data)
}

func TestRegisterWithoutRoleSkipsRoleRoom(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	client := NewClient("u1", "", conn)
	hub.Register(client)

	hub.Emit(RoleRoom(""), "notification", "nobody")
	assert.Empty(t, conn.received())
}

func TestEmitReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub()
	inRoom := &fakeConn{}
	outOfRoom := &fakeConn{}
	watcher := NewClient("u1", "SHIPPER", inRoom)
	bystander := NewClient("u2", "SHIPPER", outOfRoom)
	hub.Register(watcher)
	hub.Register(bystander)

	hub.JoinRoom(watcher, ShipmentRoom("s1"))
	hub.Emit(ShipmentRoom("s1"), "carrier-location", "ping")

	require.Len(t, inRoom.received(), 1)
	assert.Equal(t, "carrier-location", inRoom.received()[0].Event)
	assert.Empty(t, outOfRoom.received())
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	client := NewClient("u1", "SHIPPER", conn)
	hub.Register(client)

	hub.JoinRoom(client, ShipmentRoom("s1"))
	hub.LeaveRoom(client, ShipmentRoom("s1"))
	hub.Emit(ShipmentRoom("s1"), "carrier-location", "ping")

	assert.Empty(t, conn.received())
}

func TestLeaveRoomNotJoinedIsNoOp(t *testing.T) {
	hub := NewHub()
	client := NewClient("u1", "SHIPPER", &fakeConn{})
	hub.Register(client)

	assert.NotPanics(t, func() {
		hub.LeaveRoom(client, ShipmentRoom("never-joined"))
	})
}

func TestUnregisterDropsAllMemberships(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	client := NewClient("u1", "CARRIER", conn)
	hub.Register(client)
	hub.JoinRoom(client, ShipmentRoom("s1"))

	hub.Unregister(client)

	hub.Emit(UserRoom("u1"), "notification", "a")
	hub.Emit(RoleRoom("CARRIER"), "notification", "b")
	hub.Emit(ShipmentRoom("s1"), "carrier-location", "c")

	assert.Empty(t, conn.received())
}

func TestNoReplayForLateJoiners(t *testing.T) {
	hub := NewHub()

	hub.Emit(ShipmentRoom("s1"), "carrier-location", "before join")

	conn := &fakeConn{}
	client := NewClient("u1", "SHIPPER", conn)
	hub.Register(client)
	hub.JoinRoom(client, ShipmentRoom("s1"))

	assert.Empty(t, conn.received())
}

func TestEmitContinuesPastFailedWrites(t *testing.T) {
	hub := NewHub()
	broken := &fakeConn{failNext: true}
	healthy := &fakeConn{}
	a := NewClient("u1", "", broken)
	b := NewClient("u2", "", healthy)
	hub.Register(a)
	hub.Register(b)
	hub.JoinRoom(a, ShipmentRoom("s1"))
	hub.JoinRoom(b, ShipmentRoom("s1"))

	hub.Emit(ShipmentRoom("s1"), "carrier-location", "ping")

	assert.Len(t, healthy.received(), 1)
}
