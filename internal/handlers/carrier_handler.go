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

// CarrierHandler handles HTTP requests for carrier profiles and vehicles.
type CarrierHandler struct {
	Service *services.CarrierService
}

// NewCarrierHandler creates a new instance of CarrierHandler.
func NewCarrierHandler(service *services.CarrierService) *CarrierHandler {
	return &CarrierHandler{Service: service}
}

// CreateCarrierHandler handles POST /carriers (carrier only).
func (h *CarrierHandler) CreateCarrierHandler(w http.ResponseWriter, r *http.Request) {
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

	var carrier models.Carrier
	if err := json.NewDecoder(r.Body).Decode(&carrier); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateCarrier(r.Context(), userID, &carrier)
	if err != nil {
		log.WithError(err).Warn("Failed to create carrier profile")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetCarrierHandler handles GET /carriers/{id}.
func (h *CarrierHandler) GetCarrierHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	carrier, err := h.Service.GetCarrier(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Carrier not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(carrier)
}

// AddVehicleHandler handles POST /vehicles (carrier only).
func (h *CarrierHandler) AddVehicleHandler(w http.ResponseWriter, r *http.Request) {
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

	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.Service.AddVehicle(r.Context(), userID, &vehicle)
	if err != nil {
		log.WithError(err).Warn("Failed to add vehicle")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetVehiclesHandler handles GET /vehicles (carrier only).
func (h *CarrierHandler) GetVehiclesHandler(w http.ResponseWriter, r *http.Request) {
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

	vehicles, err := h.Service.GetVehicles(r.Context(), userID)
	if err != nil {
		log.WithError(err).Warn("Failed to list vehicles")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}
