package services

import (
	"context"
	"fmt"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentService encapsulates the business logic for shipment documents.
type DocumentService struct {
	repo         *repository.DocumentRepository
	shipmentRepo *repository.ShipmentRepository
}

// NewDocumentService creates a new instance of DocumentService.
func NewDocumentService(repo *repository.DocumentRepository, shipmentRepo *repository.ShipmentRepository) *DocumentService {
	return &DocumentService{
		repo:         repo,
		shipmentRepo: shipmentRepo,
	}
}

// AttachDocument records an uploaded file against a shipment. Only the
// shipper or the assigned carrier may attach documents.
func (s *DocumentService) AttachDocument(ctx context.Context, uploaderID primitive.ObjectID, doc *models.Document) (*models.Document, error) {
	shipment, err := s.shipmentRepo.GetShipmentByID(ctx, doc.ShipmentID)
	if err != nil {
		return nil, fmt.Errorf("shipment not found: %v", err)
	}

	isShipper := shipment.ShipperID == uploaderID
	isCarrier := shipment.AssignedCarrierID != nil && *shipment.AssignedCarrierID == uploaderID
	if !isShipper && !isCarrier {
		return nil, fmt.Errorf("only shipment participants may attach documents")
	}

	doc.UploaderID = uploaderID
	return s.repo.CreateDocument(ctx, doc)
}

// GetDocuments lists the documents attached to a shipment.
func (s *DocumentService) GetDocuments(ctx context.Context, shipmentID string) ([]models.Document, error) {
	objID, err := primitive.ObjectIDFromHex(shipmentID)
	if err != nil {
		return nil, fmt.Errorf("invalid shipment ID: %v", err)
	}
	return s.repo.GetDocumentsByShipment(ctx, objID)
}
