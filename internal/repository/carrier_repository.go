package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/freightflow/freight-marketplace/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CarrierRepository handles database operations for carrier profiles and vehicles.
type CarrierRepository struct {
	carriers *mongo.Collection
	vehicles *mongo.Collection
}

func NewCarrierRepository(db *mongo.Database) *CarrierRepository {
	return &CarrierRepository{
		carriers: db.Collection("carriers"),
		vehicles: db.Collection("vehicles"),
	}
}

// CreateCarrier inserts a new carrier profile.
func (r *CarrierRepository) CreateCarrier(ctx context.Context, carrier *models.Carrier) (*models.Carrier, error) {
	carrier.CreatedAt = time.Now()
	carrier.UpdatedAt = time.Now()

	result, err := r.carriers.InsertOne(ctx, carrier)
	if err != nil {
		return nil, fmt.Errorf("failed to insert carrier: %v", err)
	}
	carrier.ID = result.InsertedID.(primitive.ObjectID)
	return carrier, nil
}

// GetCarrierByID retrieves a carrier profile.
func (r *CarrierRepository) GetCarrierByID(ctx context.Context, id primitive.ObjectID) (*models.Carrier, error) {
	var carrier models.Carrier
	err := r.carriers.FindOne(ctx, bson.M{"_id": id}).Decode(&carrier)
	if err != nil {
		return nil, fmt.Errorf("failed to find carrier: %v", err)
	}
	return &carrier, nil
}

// GetCarrierByUserID retrieves the carrier profile owned by a user.
func (r *CarrierRepository) GetCarrierByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Carrier, error) {
	var carrier models.Carrier
	err := r.carriers.FindOne(ctx, bson.M{"user_id": userID}).Decode(&carrier)
	if err != nil {
		return nil, fmt.Errorf("failed to find carrier by user: %v", err)
	}
	return &carrier, nil
}

// CreateVehicle inserts a vehicle for a carrier.
func (r *CarrierRepository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	vehicle.CreatedAt = time.Now()

	result, err := r.vehicles.InsertOne(ctx, vehicle)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vehicle: %v", err)
	}
	vehicle.ID = result.InsertedID.(primitive.ObjectID)
	return vehicle, nil
}

// GetVehiclesByCarrier lists a carrier's vehicles.
func (r *CarrierRepository) GetVehiclesByCarrier(ctx context.Context, carrierID primitive.ObjectID) ([]models.Vehicle, error) {
	cursor, err := r.vehicles.Find(ctx, bson.M{"carrier_id": carrierID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vehicles: %v", err)
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %v", err)
	}
	return vehicles, nil
}
