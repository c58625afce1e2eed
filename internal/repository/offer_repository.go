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

// OfferRepository handles database operations related to offers.
type OfferRepository struct {
	collection *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{
		collection: db.Collection("offers"),
	}
}

// CreateOffer inserts a new offer.
func (r *OfferRepository) CreateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	offer.CreatedAt = time.Now()
	offer.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, offer)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert offer")
		return nil, fmt.Errorf("failed to insert offer: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	offer.ID = insertedID

	return offer, nil
}

// GetOfferByID retrieves a single offer.
func (r *OfferRepository) GetOfferByID(ctx context.Context, id primitive.ObjectID) (*models.Offer, error) {
	var offer models.Offer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&offer)
	if err != nil {
		return nil, fmt.Errorf("failed to find offer: %v", err)
	}
	return &offer, nil
}

// GetOffersByShipment lists every offer placed on a shipment, newest first.
func (r *OfferRepository) GetOffersByShipment(ctx context.Context, shipmentID primitive.ObjectID) ([]models.Offer, error) {
	return r.find(ctx, bson.M{"shipment_id": shipmentID})
}

// GetOffersByCarrier lists every offer a carrier has placed.
func (r *OfferRepository) GetOffersByCarrier(ctx context.Context, carrierID primitive.ObjectID) ([]models.Offer, error) {
	return r.find(ctx, bson.M{"carrier_id": carrierID})
}

// UpdateStatus sets the status of one offer.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update offer status: %v", err)
	}
	return nil
}

// RejectPendingOffers rejects every still-pending offer on a shipment except
// the accepted one.
func (r *OfferRepository) RejectPendingOffers(ctx context.Context, shipmentID, acceptedID primitive.ObjectID) error {
	filter := bson.M{
		"shipment_id": shipmentID,
		"_id":         bson.M{"$ne": acceptedID},
		"status":      models.OfferStatusPending,
	}
	update := bson.M{"$set": bson.M{"status": models.OfferStatusRejected, "updated_at": time.Now()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reject pending offers: %v", err)
	}
	return nil
}

func (r *OfferRepository) find(ctx context.Context, filter bson.M) ([]models.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offers: %v", err)
	}
	defer cursor.Close(ctx)

	var offers []models.Offer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers: %v", err)
	}
	return offers, nil
}
