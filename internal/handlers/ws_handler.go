package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/realtime"
	"github.com/freightflow/freight-marketplace/internal/services"
	jwtutil "github.com/freightflow/freight-marketplace/pkg/jwt"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Client-to-server events on the realtime channel.
const (
	eventJoinTracking   = "join-shipment-tracking"
	eventLeaveTracking  = "leave-shipment-tracking"
	eventLocationUpdate = "location-update"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is one inbound client frame.
type wsRequest struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WSHandler owns the realtime endpoint: it authenticates the handshake,
// registers the connection with the hub and runs the per-connection read loop.
type WSHandler struct {
	Hub       *realtime.Hub
	Tracking  *services.TrackingService
	JWTSecret string
}

// NewWSHandler creates a new instance of WSHandler.
func NewWSHandler(hub *realtime.Hub, tracking *services.TrackingService, jwtSecret string) *WSHandler {
	return &WSHandler{
		Hub:       hub,
		Tracking:  tracking,
		JWTSecret: jwtSecret,
	}
}

// ServeWS upgrades an authenticated connection and processes its messages
// until it disconnects. Unauthenticated connections are rejected before the
// upgrade; no room membership is ever created for them.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := realtime.NewClient(claims.UserID, claims.Role, conn)
	h.Hub.Register(client)

	defer func() {
		h.Hub.Unregister(client)
		client.Close()
		log.WithField("userID", claims.UserID).Info("WebSocket disconnected")
	}()

	for {
		var msg wsRequest
		if err := conn.ReadJSON(&msg); err != nil {
			// client disconnected or sent garbage
			break
		}
		h.handleMessage(r, client, &msg)
	}
}

func (h *WSHandler) handleMessage(r *http.Request, client *realtime.Client, msg *wsRequest) {
	switch msg.Event {
	case eventJoinTracking:
		shipmentID, ok := decodeShipmentID(msg.Data)
		if !ok {
			h.nack(client, msg.Event, "shipmentId is required")
			return
		}
		h.Hub.JoinRoom(client, realtime.ShipmentRoom(shipmentID))
		h.ack(client, msg.Event)

	case eventLeaveTracking:
		shipmentID, ok := decodeShipmentID(msg.Data)
		if !ok {
			h.nack(client, msg.Event, "shipmentId is required")
			return
		}
		h.Hub.LeaveRoom(client, realtime.ShipmentRoom(shipmentID))
		h.ack(client, msg.Event)

	case eventLocationUpdate:
		var update models.LocationUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			h.nack(client, msg.Event, "malformed location payload")
			return
		}
		if err := h.Tracking.ReportLocation(r.Context(), client.UserID, &update); err != nil {
			log.WithFields(log.Fields{
				"userID":     client.UserID,
				"shipmentID": update.ShipmentID,
			}).WithError(err).Warn("Rejected location report")
			h.nack(client, msg.Event, err.Error())
			return
		}
		h.ack(client, msg.Event)

	default:
		log.WithField("event", msg.Event).Debug("Ignoring unknown realtime event")
	}
}

func (h *WSHandler) ack(client *realtime.Client, event string) {
	if err := client.Send(event, map[string]interface{}{"success": true}); err != nil {
		log.WithError(err).Debug("Failed to write ack")
	}
}

func (h *WSHandler) nack(client *realtime.Client, event, reason string) {
	if err := client.Send(event, map[string]interface{}{"success": false, "error": reason}); err != nil {
		log.WithError(err).Debug("Failed to write nack")
	}
}

func decodeShipmentID(data json.RawMessage) (string, bool) {
	var req struct {
		ShipmentID string `json:"shipmentId"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.ShipmentID == "" {
		return "", false
	}
	return req.ShipmentID, true
}

// bearerToken extracts the credential from the Authorization header, falling
// back to the "token" query parameter for browser websocket clients.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
