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

// OfferHandler handles HTTP requests related to offers.
type OfferHandler struct {
	Service *services.OfferService
}

// NewOfferHandler creates a new instance of OfferHandler.
func NewOfferHandler(service *services.OfferService) *OfferHandler {
	return &OfferHandler{Service: service}
}

// CreateOfferHandler handles POST /shipments/{id}/offers (carrier only).
func (h *OfferHandler) CreateOfferHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	carrierID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	shipmentID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid shipment ID", http.StatusBadRequest)
		return
	}

	var offer models.Offer
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	offer.ShipmentID = shipmentID

	created, err := h.Service.CreateOffer(r.Context(), carrierID, &offer)
	if err != nil {
		log.WithError(err).Warn("Failed to create offer")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetShipmentOffersHandler handles GET /shipments/{id}/offers (shipper only).
func (h *OfferHandler) GetShipmentOffersHandler(w http.ResponseWriter, r *http.Request) {
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

	vars := mux.Vars(r)
	offers, err := h.Service.GetOffersByShipment(r.Context(), vars["id"], shipperID)
	if err != nil {
		log.WithError(err).Warn("Failed to list shipment offers")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offers)
}

// GetMyOffersHandler handles GET /offers (carrier only).
func (h *OfferHandler) GetMyOffersHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	carrierID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	offers, err := h.Service.GetOffersByCarrier(r.Context(), carrierID)
	if err != nil {
		log.WithError(err).Error("Failed to list offers")
		http.Error(w, "Failed to get offers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offers)
}

// AcceptOfferHandler handles POST /offers/{id}/accept (shipper only).
func (h *OfferHandler) AcceptOfferHandler(w http.ResponseWriter, r *http.Request) {
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

	vars := mux.Vars(r)
	offer, err := h.Service.AcceptOffer(r.Context(), vars["id"], shipperID)
	if err != nil {
		log.WithError(err).Warn("Failed to accept offer")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offer)
}

// RejectOfferHandler handles POST /offers/{id}/reject (shipper only).
func (h *OfferHandler) RejectOfferHandler(w http.ResponseWriter, r *http.Request) {
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

	vars := mux.Vars(r)
	if err := h.Service.RejectOffer(r.Context(), vars["id"], shipperID); err != nil {
		log.WithError(err).Warn("Failed to reject offer")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Offer rejected"})
}
