package services

import (
	"context"
	"fmt"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/realtime"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventCarrierLocation is the event name for relayed GPS pings.
const EventCarrierLocation = "carrier-location"

// ShipmentLookup resolves a shipment for the relay's authorization check.
// Implemented by repository.ShipmentRepository.
type ShipmentLookup interface {
	GetShipmentByID(ctx context.Context, id primitive.ObjectID) (*models.Shipment, error)
}

// TrackingService relays live location pings to a shipment's tracking room.
// Pings are forwarded and discarded, never stored.
type TrackingService struct {
	shipments ShipmentLookup
	hub       Emitter
}

// NewTrackingService creates a new instance of TrackingService.
func NewTrackingService(shipments ShipmentLookup, hub Emitter) *TrackingService {
	return &TrackingService{
		shipments: shipments,
		hub:       hub,
	}
}

// ReportLocation validates and relays a position report. Only the carrier
// assigned to the shipment may publish for it; a mismatch is rejected with
// no broadcast.
func (s *TrackingService) ReportLocation(ctx context.Context, reporterID string, update *models.LocationUpdate) error {
	if update.Latitude < -90 || update.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", update.Latitude)
	}
	if update.Longitude < -180 || update.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", update.Longitude)
	}

	shipmentID, err := primitive.ObjectIDFromHex(update.ShipmentID)
	if err != nil {
		return fmt.Errorf("invalid shipment id: %v", err)
	}

	shipment, err := s.shipments.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return fmt.Errorf("shipment not found: %v", err)
	}
	if shipment.AssignedCarrierID == nil || shipment.AssignedCarrierID.Hex() != reporterID {
		return fmt.Errorf("reporter is not the assigned carrier for this shipment")
	}

	s.hub.Emit(realtime.ShipmentRoom(update.ShipmentID), EventCarrierLocation, update)
	return nil
}
