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

// NotificationRepository is the durable per-user notification feed.
type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// Insert appends a notification and returns it with its server-assigned
// id and creation timestamp.
func (r *NotificationRepository) Insert(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	notif.CreatedAt = time.Now()
	notif.Read = false

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return nil, fmt.Errorf("failed to create notification: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	notif.ID = insertedID

	return notif, nil
}

// ListRecent returns the most recent notifications of a user, newest first.
func (r *NotificationRepository) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// MarkRead sets the read flag of one notification. Unknown ids and already
// read notifications are silent no-ops.
func (r *NotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	return err
}

// MarkAllRead sets the read flag for every unread notification of a user.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// GetLatestByType returns the newest notification of a given type for a user.
// Used to de-duplicate scheduled reminders.
func (r *NotificationRepository) GetLatestByType(ctx context.Context, userID primitive.ObjectID, notifType string) (*models.Notification, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var notif models.Notification
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "type": notifType}, opts).Decode(&notif)
	if err != nil {
		return nil, err
	}
	return &notif, nil
}
