package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/freightflow/freight-marketplace/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentRepository handles database operations for shipment documents.
type DocumentRepository struct {
	collection *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{
		collection: db.Collection("documents"),
	}
}

// CreateDocument inserts a document record.
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %v", err)
	}
	doc.ID = result.InsertedID.(primitive.ObjectID)
	return doc, nil
}

// GetDocumentsByShipment lists the documents attached to a shipment, newest first.
func (r *DocumentRepository) GetDocumentsByShipment(ctx context.Context, shipmentID primitive.ObjectID) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"shipment_id": shipmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %v", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %v", err)
	}
	return docs, nil
}
