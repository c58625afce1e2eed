package services

import (
	"context"
	"fmt"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShipmentService encapsulates the business logic for shipments.
type ShipmentService struct {
	repo          *repository.ShipmentRepository
	notifications *NotificationService
}

// NewShipmentService creates a new instance of ShipmentService.
func NewShipmentService(repo *repository.ShipmentRepository, notifications *NotificationService) *ShipmentService {
	return &ShipmentService{
		repo:          repo,
		notifications: notifications,
	}
}

// CreateShipment posts a new load and announces it to every carrier.
func (s *ShipmentService) CreateShipment(ctx context.Context, shipperID primitive.ObjectID, shipment *models.Shipment) (*models.Shipment, error) {
	if shipment.CargoDescription == "" || shipment.WeightKg <= 0 {
		return nil, fmt.Errorf("missing required shipment fields")
	}
	if shipment.PickupDate.IsZero() {
		return nil, fmt.Errorf("pickup date is required")
	}

	shipment.ShipperID = shipperID
	shipment.ReferenceCode = uuid.NewString()
	shipment.Status = models.ShipmentStatusPosted
	shipment.AssignedCarrierID = nil

	created, err := s.repo.CreateShipment(ctx, shipment)
	if err != nil {
		return nil, fmt.Errorf("failed to create shipment: %v", err)
	}

	// Role broadcast: the live event goes out first, persistence catches up.
	s.notifications.NotifyRole(ctx, models.RoleCarrier, models.NotificationShipmentCreated,
		"New Shipment Available",
		fmt.Sprintf("From %s to %s, %.0f kg", created.Origin.City, created.Destination.City, created.WeightKg),
		map[string]interface{}{"shipmentId": created.ID.Hex()},
	)

	return created, nil
}

// GetShipment retrieves a shipment by id.
func (s *ShipmentService) GetShipment(ctx context.Context, id string) (*models.Shipment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid shipment ID: %v", err)
	}
	return s.repo.GetShipmentByID(ctx, objID)
}

// GetShipmentsByShipper lists the shipments a shipper has posted.
func (s *ShipmentService) GetShipmentsByShipper(ctx context.Context, shipperID primitive.ObjectID) ([]models.Shipment, error) {
	return s.repo.GetShipmentsByShipper(ctx, shipperID)
}

// GetAvailableShipments lists shipments open for offers.
func (s *ShipmentService) GetAvailableShipments(ctx context.Context) ([]models.Shipment, error) {
	return s.repo.GetAvailableShipments(ctx)
}

// GetShipmentsByCarrier lists shipments assigned to a carrier.
func (s *ShipmentService) GetShipmentsByCarrier(ctx context.Context, carrierID primitive.ObjectID) ([]models.Shipment, error) {
	return s.repo.GetShipmentsByCarrier(ctx, carrierID)
}

// UpdateStatus moves a shipment through its delivery lifecycle. Only the
// assigned carrier advances a shipment; the shipper may cancel while it is
// still POSTED. The shipper is notified of every change.
func (s *ShipmentService) UpdateStatus(ctx context.Context, id, callerID, newStatus string) (*models.Shipment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid shipment ID: %v", err)
	}

	shipment, err := s.repo.GetShipmentByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if !models.ValidStatusTransition(shipment.Status, newStatus) {
		return nil, fmt.Errorf("invalid status transition %s -> %s", shipment.Status, newStatus)
	}

	switch {
	case newStatus == models.ShipmentStatusCancelled && shipment.Status == models.ShipmentStatusPosted:
		if shipment.ShipperID.Hex() != callerID {
			return nil, fmt.Errorf("only the shipper may cancel a posted shipment")
		}
	default:
		if shipment.AssignedCarrierID == nil || shipment.AssignedCarrierID.Hex() != callerID {
			return nil, fmt.Errorf("only the assigned carrier may update shipment status")
		}
	}

	if err := s.repo.UpdateStatus(ctx, objID, newStatus); err != nil {
		return nil, err
	}
	shipment.Status = newStatus

	// Notification is best-effort relative to the status change itself.
	_, err = s.notifications.NotifyUser(ctx, shipment.ShipperID, models.NotificationStatusUpdate,
		"Shipment Status Update",
		fmt.Sprintf("Shipment %s is now %s", shipment.ReferenceCode, newStatus),
		map[string]interface{}{"shipmentId": shipment.ID.Hex(), "status": newStatus},
	)
	if err != nil {
		logrus.WithError(err).WithField("shipmentID", shipment.ID.Hex()).Warn("Failed to notify shipper of status change")
	}

	return shipment, nil
}
