package services

import (
	"context"
	"fmt"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/repository"
	"github.com/freightflow/freight-marketplace/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OfferService encapsulates the business logic for carrier offers.
type OfferService struct {
	repo          *repository.OfferRepository
	shipmentRepo  *repository.ShipmentRepository
	userRepo      *repository.UserRepository
	notifications *NotificationService
}

// NewOfferService creates a new instance of OfferService.
func NewOfferService(repo *repository.OfferRepository, shipmentRepo *repository.ShipmentRepository, userRepo *repository.UserRepository, notifications *NotificationService) *OfferService {
	return &OfferService{
		repo:          repo,
		shipmentRepo:  shipmentRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// CreateOffer places a carrier's bid on a posted shipment and notifies the shipper.
func (s *OfferService) CreateOffer(ctx context.Context, carrierID primitive.ObjectID, offer *models.Offer) (*models.Offer, error) {
	if offer.Price <= 0 {
		return nil, fmt.Errorf("offer price must be positive")
	}

	shipment, err := s.shipmentRepo.GetShipmentByID(ctx, offer.ShipmentID)
	if err != nil {
		return nil, fmt.Errorf("shipment not found: %v", err)
	}
	if shipment.Status != models.ShipmentStatusPosted {
		return nil, fmt.Errorf("shipment is no longer open for offers")
	}
	if shipment.ShipperID == carrierID {
		return nil, fmt.Errorf("cannot bid on your own shipment")
	}

	offer.CarrierID = carrierID
	offer.Status = models.OfferStatusPending

	created, err := s.repo.CreateOffer(ctx, offer)
	if err != nil {
		return nil, err
	}

	_, err = s.notifications.NotifyUser(ctx, shipment.ShipperID, models.NotificationOfferReceived,
		"Offer Received",
		fmt.Sprintf("A carrier offered %.2f for shipment %s", created.Price, shipment.ReferenceCode),
		map[string]interface{}{"shipmentId": shipment.ID.Hex(), "offerId": created.ID.Hex()},
	)
	if err != nil {
		logrus.WithError(err).WithField("offerID", created.ID.Hex()).Warn("Failed to notify shipper of new offer")
	}

	return created, nil
}

// GetOffersByShipment lists the offers on a shipment for its shipper.
func (s *OfferService) GetOffersByShipment(ctx context.Context, shipmentID string, shipperID primitive.ObjectID) ([]models.Offer, error) {
	objID, err := primitive.ObjectIDFromHex(shipmentID)
	if err != nil {
		return nil, fmt.Errorf("invalid shipment ID: %v", err)
	}

	shipment, err := s.shipmentRepo.GetShipmentByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if shipment.ShipperID != shipperID {
		return nil, fmt.Errorf("only the shipper may list a shipment's offers")
	}

	return s.repo.GetOffersByShipment(ctx, objID)
}

// GetOffersByCarrier lists the offers a carrier has placed.
func (s *OfferService) GetOffersByCarrier(ctx context.Context, carrierID primitive.ObjectID) ([]models.Offer, error) {
	return s.repo.GetOffersByCarrier(ctx, carrierID)
}

// AcceptOffer accepts one offer: the offer becomes ACCEPTED, its siblings are
// rejected, the shipment is assigned to the offering carrier, and the carrier
// is notified (push plus best-effort email).
func (s *OfferService) AcceptOffer(ctx context.Context, offerID string, shipperID primitive.ObjectID) (*models.Offer, error) {
	objID, err := primitive.ObjectIDFromHex(offerID)
	if err != nil {
		return nil, fmt.Errorf("invalid offer ID: %v", err)
	}

	offer, err := s.repo.GetOfferByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferStatusPending {
		return nil, fmt.Errorf("offer is no longer pending")
	}

	shipment, err := s.shipmentRepo.GetShipmentByID(ctx, offer.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.ShipperID != shipperID {
		return nil, fmt.Errorf("only the shipper may accept an offer")
	}
	if shipment.Status != models.ShipmentStatusPosted {
		return nil, fmt.Errorf("shipment is no longer open for offers")
	}

	if err := s.repo.UpdateStatus(ctx, offer.ID, models.OfferStatusAccepted); err != nil {
		return nil, err
	}
	if err := s.repo.RejectPendingOffers(ctx, offer.ShipmentID, offer.ID); err != nil {
		logrus.WithError(err).WithField("shipmentID", shipment.ID.Hex()).Warn("Failed to reject sibling offers")
	}
	if err := s.shipmentRepo.AssignCarrier(ctx, shipment.ID, offer.CarrierID); err != nil {
		return nil, err
	}
	offer.Status = models.OfferStatusAccepted

	// Notification and email are best-effort relative to the acceptance itself.
	_, err = s.notifications.NotifyUser(ctx, offer.CarrierID, models.NotificationOfferAccepted,
		"Offer Accepted",
		fmt.Sprintf("Your offer of %.2f for shipment %s was accepted", offer.Price, shipment.ReferenceCode),
		map[string]interface{}{"shipmentId": shipment.ID.Hex(), "offerId": offer.ID.Hex()},
	)
	if err != nil {
		logrus.WithError(err).WithField("offerID", offer.ID.Hex()).Warn("Failed to notify carrier of accepted offer")
	}

	if carrier, err := s.userRepo.GetUserByID(ctx, offer.CarrierID); err == nil {
		body := fmt.Sprintf("Your offer for shipment %s was accepted. Pickup is scheduled for %s.",
			shipment.ReferenceCode, shipment.PickupDate.Format("Jan 2, 2006"))
		if err := email.SendEmail(carrier.Email, "Offer Accepted", body); err != nil {
			logrus.WithError(err).Warn("Failed to send offer accepted email")
		}
	}

	return offer, nil
}

// RejectOffer rejects a single pending offer.
func (s *OfferService) RejectOffer(ctx context.Context, offerID string, shipperID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(offerID)
	if err != nil {
		return fmt.Errorf("invalid offer ID: %v", err)
	}

	offer, err := s.repo.GetOfferByID(ctx, objID)
	if err != nil {
		return err
	}
	if offer.Status != models.OfferStatusPending {
		return fmt.Errorf("offer is no longer pending")
	}

	shipment, err := s.shipmentRepo.GetShipmentByID(ctx, offer.ShipmentID)
	if err != nil {
		return err
	}
	if shipment.ShipperID != shipperID {
		return fmt.Errorf("only the shipper may reject an offer")
	}

	return s.repo.UpdateStatus(ctx, offer.ID, models.OfferStatusRejected)
}
