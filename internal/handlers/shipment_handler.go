package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/services"
	"github.com/freightflow/freight-marketplace/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShipmentHandler handles HTTP requests related to shipments.
type ShipmentHandler struct {
	Service *services.ShipmentService
}

// NewShipmentHandler creates a new instance of ShipmentHandler.
func NewShipmentHandler(service *services.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{Service: service}
}

// CreateShipmentHandler handles POST /shipments (shipper only).
func (h *ShipmentHandler) CreateShipmentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	shipperID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var shipment models.Shipment
	if err := json.NewDecoder(r.Body).Decode(&shipment); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateShipment(r.Context(), shipperID, &shipment)
	if err != nil {
		log.WithError(err).Warn("Failed to create shipment")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetShipmentHandler handles GET /shipments/{id}.
func (h *ShipmentHandler) GetShipmentHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	shipment, err := h.Service.GetShipment(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Shipment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipment)
}

// GetMyShipmentsHandler handles GET /shipments: the caller's own shipments —
// posted loads for a shipper, assigned loads for a carrier.
func (h *ShipmentHandler) GetMyShipmentsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var shipments []models.Shipment
	if claims.Role == models.RoleCarrier {
		shipments, err = h.Service.GetShipmentsByCarrier(r.Context(), userID)
	} else {
		shipments, err = h.Service.GetShipmentsByShipper(r.Context(), userID)
	}
	if err != nil {
		log.WithError(err).Error("Failed to fetch shipments")
		http.Error(w, "Failed to get shipments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipments)
}

// GetAvailableShipmentsHandler handles GET /shipments/available (carrier only).
func (h *ShipmentHandler) GetAvailableShipmentsHandler(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.Service.GetAvailableShipments(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to fetch available shipments")
		http.Error(w, "Failed to get shipments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipments)
}

// UpdateStatusHandler handles PATCH /shipments/{id}/status.
func (h *ShipmentHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	shipment, err := h.Service.UpdateStatus(r.Context(), vars["id"], claims.UserID, req.Status)
	if err != nil {
		log.WithError(err).Warn("Failed to update shipment status")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipment)
}
