package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ShipmentRepository handles database operations related to shipments.
type ShipmentRepository struct {
	collection *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{
		collection: db.Collection("shipments"),
	}
}

// CreateShipment inserts a new shipment.
func (r *ShipmentRepository) CreateShipment(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	shipment.CreatedAt = time.Now()
	shipment.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, shipment)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert shipment")
		return nil, fmt.Errorf("failed to insert shipment: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	shipment.ID = insertedID

	return shipment, nil
}

// GetShipmentByID retrieves a single shipment.
func (r *ShipmentRepository) GetShipmentByID(ctx context.Context, id primitive.ObjectID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&shipment)
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment: %v", err)
	}
	return &shipment, nil
}

// GetShipmentsByShipper lists all shipments posted by a shipper, newest first.
func (r *ShipmentRepository) GetShipmentsByShipper(ctx context.Context, shipperID primitive.ObjectID) ([]models.Shipment, error) {
	return r.find(ctx, bson.M{"shipper_id": shipperID})
}

// GetAvailableShipments lists shipments still open for offers.
func (r *ShipmentRepository) GetAvailableShipments(ctx context.Context) ([]models.Shipment, error) {
	return r.find(ctx, bson.M{"status": models.ShipmentStatusPosted})
}

// GetShipmentsByCarrier lists shipments assigned to a carrier.
func (r *ShipmentRepository) GetShipmentsByCarrier(ctx context.Context, carrierID primitive.ObjectID) ([]models.Shipment, error) {
	return r.find(ctx, bson.M{"assigned_carrier_id": carrierID})
}

// GetShipmentsWithPickupBefore lists active shipments whose pickup date falls
// before the given deadline. Used by the pickup reminder cron.
func (r *ShipmentRepository) GetShipmentsWithPickupBefore(ctx context.Context, deadline time.Time) ([]models.Shipment, error) {
	filter := bson.M{
		"status":      bson.M{"$in": []string{models.ShipmentStatusAssigned, models.ShipmentStatusPickedUp}},
		"pickup_date": bson.M{"$gt": time.Now(), "$lt": deadline},
	}
	return r.find(ctx, filter)
}

// UpdateStatus sets the shipment status.
func (r *ShipmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %v", err)
	}
	return nil
}

// AssignCarrier sets the carrier and moves the shipment to ASSIGNED.
func (r *ShipmentRepository) AssignCarrier(ctx context.Context, id, carrierID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"assigned_carrier_id": carrierID,
		"status":              models.ShipmentStatusAssigned,
		"updated_at":          time.Now(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to assign carrier: %v", err)
	}
	return nil
}

func (r *ShipmentRepository) find(ctx context.Context, filter bson.M) ([]models.Shipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shipments: %v", err)
	}
	defer cursor.Close(ctx)

	var shipments []models.Shipment
	if err := cursor.All(ctx, &shipments); err != nil {
		return nil, fmt.Errorf("failed to decode shipments: %v", err)
	}
	return shipments, nil
}
