package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/freightflow/freight-marketplace/internal/handlers"
	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/realtime"
	"github.com/freightflow/freight-marketplace/internal/services"
	jwtutil "github.com/freightflow/freight-marketplace/pkg/jwt"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const wsTestSecret = "ws-test-secret"

type stubShipmentLookup struct {
	shipment *models.Shipment
}

func (s *stubShipmentLookup) GetShipmentByID(_ context.Context, _ primitive.ObjectID) (*models.Shipment, error) {
	return s.shipment, nil
}

type wsFrame struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

func newWSTestServer(t *testing.T, hub *realtime.Hub, lookup services.ShipmentLookup) *httptest.Server {
	t.Helper()
	tracking := services.NewTrackingService(lookup, hub)
	handler := handlers.NewWSHandler(hub, tracking, wsTestSecret)
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	t.Cleanup(srv.Close)
	return srv
}

func wsToken(t *testing.T, userID primitive.ObjectID, role string) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(userID.Hex(), "user@example.com", role, wsTestSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": event, "data": data}))
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func assertNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var frame wsFrame
	err := conn.ReadJSON(&frame)
	assert.Error(t, err, "expected no frame")
}

// joinTracking joins a shipment room and waits for the ack, which also
// guarantees the server finished registering the connection.
func joinTracking(t *testing.T, conn *websocket.Conn, shipmentID string) {
	t.Helper()
	sendFrame(t, conn, "join-shipment-tracking", map[string]string{"shipmentId": shipmentID})
	frame := readFrame(t, conn)
	require.Equal(t, "join-shipment-tracking", frame.Event)
	require.Equal(t, true, frame.Data["success"])
}

func TestWSRejectsMissingToken(t *testing.T) {
	srv := newWSTestServer(t, realtime.NewHub(), &stubShipmentLookup{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSRejectsInvalidToken(t *testing.T) {
	srv := newWSTestServer(t, realtime.NewHub(), &stubShipmentLookup{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=garbage"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSTrackingRoundTrip(t *testing.T) {
	hub := realtime.NewHub()
	carrierID := primitive.NewObjectID()
	shipmentID := primitive.NewObjectID()
	lookup := &stubShipmentLookup{shipment: &models.Shipment{
		ID:                shipmentID,
		Status:            models.ShipmentStatusInTransit,
		AssignedCarrierID: &carrierID,
	}}
	srv := newWSTestServer(t, hub, lookup)

	watcher := dialWS(t, srv, wsToken(t, primitive.NewObjectID(), models.RoleShipper))
	joinTracking(t, watcher, shipmentID.Hex())

	bystander := dialWS(t, srv, wsToken(t, primitive.NewObjectID(), models.RoleShipper))
	// deliberately not joined to the tracking room

	carrier := dialWS(t, srv, wsToken(t, carrierID, models.RoleCarrier))
	sendFrame(t, carrier, "location-update", map[string]interface{}{
		"shipmentId": shipmentID.Hex(),
		"latitude":   48.8566,
		"longitude":  2.3522,
		"speed":      72.5,
		"timestamp":  1700000000,
	})

	ack := readFrame(t, carrier)
	require.Equal(t, "location-update", ack.Event)
	assert.Equal(t, true, ack.Data["success"])

	ping := readFrame(t, watcher)
	require.Equal(t, "carrier-location", ping.Event)
	assert.Equal(t, shipmentID.Hex(), ping.Data["shipmentId"])
	assert.Equal(t, 48.8566, ping.Data["latitude"])
	assert.Equal(t, 2.3522, ping.Data["longitude"])
	assert.Equal(t, 72.5, ping.Data["speed"])

	assertNoFrame(t, bystander)
}

func TestWSLeaveTrackingStopsPings(t *testing.T) {
	hub := realtime.NewHub()
	carrierID := primitive.NewObjectID()
	shipmentID := primitive.NewObjectID()
	lookup := &stubShipmentLookup{shipment: &models.Shipment{
		ID:                shipmentID,
		Status:            models.ShipmentStatusInTransit,
		AssignedCarrierID: &carrierID,
	}}
	srv := newWSTestServer(t, hub, lookup)

	watcher := dialWS(t, srv, wsToken(t, primitive.NewObjectID(), models.RoleShipper))
	joinTracking(t, watcher, shipmentID.Hex())

	sendFrame(t, watcher, "leave-shipment-tracking", map[string]string{"shipmentId": shipmentID.Hex()})
	leaveAck := readFrame(t, watcher)
	require.Equal(t, "leave-shipment-tracking", leaveAck.Event)
	require.Equal(t, true, leaveAck.Data["success"])

	carrier := dialWS(t, srv, wsToken(t, carrierID, models.RoleCarrier))
	sendFrame(t, carrier, "location-update", map[string]interface{}{
		"shipmentId": shipmentID.Hex(),
		"latitude":   1.0,
		"longitude":  1.0,
	})
	ack := readFrame(t, carrier)
	require.Equal(t, true, ack.Data["success"])

	assertNoFrame(t, watcher)
}

func TestWSUnauthorizedLocationReportRejected(t *testing.T) {
	hub := realtime.NewHub()
	assignedCarrier := primitive.NewObjectID()
	shipmentID := primitive.NewObjectID()
	lookup := &stubShipmentLookup{shipment: &models.Shipment{
		ID:                shipmentID,
		Status:            models.ShipmentStatusInTransit,
		AssignedCarrierID: &assignedCarrier,
	}}
	srv := newWSTestServer(t, hub, lookup)

	watcher := dialWS(t, srv, wsToken(t, primitive.NewObjectID(), models.RoleShipper))
	joinTracking(t, watcher, shipmentID.Hex())

	// Authenticated, but not the assigned carrier for this shipment.
	impostor := dialWS(t, srv, wsToken(t, primitive.NewObjectID(), models.RoleCarrier))
	sendFrame(t, impostor, "location-update", map[string]interface{}{
		"shipmentId": shipmentID.Hex(),
		"latitude":   1.0,
		"longitude":  1.0,
	})

	nack := readFrame(t, impostor)
	require.Equal(t, "location-update", nack.Event)
	assert.Equal(t, false, nack.Data["success"])
	assert.NotEmpty(t, nack.Data["error"])

	assertNoFrame(t, watcher)
}

func TestWSNotificationPush(t *testing.T) {
	hub := realtime.NewHub()
	srv := newWSTestServer(t, hub, &stubShipmentLookup{})

	carrierA := primitive.NewObjectID()
	carrierB := primitive.NewObjectID()
	connA := dialWS(t, srv, wsToken(t, carrierA, models.RoleCarrier))
	connB := dialWS(t, srv, wsToken(t, carrierB, models.RoleCarrier))

	// The join-ack round trip guarantees both connections are registered.
	joinTracking(t, connA, primitive.NewObjectID().Hex())
	joinTracking(t, connB, primitive.NewObjectID().Hex())

	hub.Emit(realtime.RoleRoom(models.RoleCarrier), services.EventNotification, map[string]interface{}{
		"title":   "New Shipment Available",
		"message": "From X to Y",
	})

	for _, conn := range []*websocket.Conn{connA, connB} {
		frame := readFrame(t, conn)
		require.Equal(t, services.EventNotification, frame.Event)
		assert.Equal(t, "New Shipment Available", frame.Data["title"])
	}

	// Direct user notification only reaches its owner.
	hub.Emit(realtime.UserRoom(carrierA.Hex()), services.EventNotification, map[string]interface{}{
		"title": "Offer Accepted",
	})
	frame := readFrame(t, connA)
	assert.Equal(t, "Offer Accepted", frame.Data["title"])
	assertNoFrame(t, connB)
}
