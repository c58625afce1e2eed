package services

import (
	"context"
	"fmt"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CarrierService encapsulates the business logic for carrier profiles and vehicles.
type CarrierService struct {
	repo *repository.CarrierRepository
}

// NewCarrierService creates a new instance of CarrierService.
func NewCarrierService(repo *repository.CarrierRepository) *CarrierService {
	return &CarrierService{repo: repo}
}

// CreateCarrier creates the carrier profile for a user. One profile per user.
func (s *CarrierService) CreateCarrier(ctx context.Context, userID primitive.ObjectID, carrier *models.Carrier) (*models.Carrier, error) {
	if carrier.CompanyName == "" {
		return nil, fmt.Errorf("company name is required")
	}

	existing, _ := s.repo.GetCarrierByUserID(ctx, userID)
	if existing != nil {
		return nil, fmt.Errorf("carrier profile already exists")
	}

	carrier.UserID = userID
	carrier.Verified = false
	return s.repo.CreateCarrier(ctx, carrier)
}

// GetCarrier retrieves a carrier profile by id.
func (s *CarrierService) GetCarrier(ctx context.Context, id string) (*models.Carrier, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid carrier ID: %v", err)
	}
	return s.repo.GetCarrierByID(ctx, objID)
}

// GetCarrierByUser retrieves the carrier profile owned by a user.
func (s *CarrierService) GetCarrierByUser(ctx context.Context, userID primitive.ObjectID) (*models.Carrier, error) {
	return s.repo.GetCarrierByUserID(ctx, userID)
}

// AddVehicle registers a vehicle under the caller's carrier profile.
func (s *CarrierService) AddVehicle(ctx context.Context, userID primitive.ObjectID, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if vehicle.PlateNumber == "" {
		return nil, fmt.Errorf("plate number is required")
	}

	carrier, err := s.repo.GetCarrierByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("carrier profile not found: %v", err)
	}

	vehicle.CarrierID = carrier.ID
	return s.repo.CreateVehicle(ctx, vehicle)
}

// GetVehicles lists the vehicles of the caller's carrier profile.
func (s *CarrierService) GetVehicles(ctx context.Context, userID primitive.ObjectID) ([]models.Vehicle, error) {
	carrier, err := s.repo.GetCarrierByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("carrier profile not found: %v", err)
	}
	return s.repo.GetVehiclesByCarrier(ctx, carrier.ID)
}
