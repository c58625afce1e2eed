package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification categories emitted by the marketplace.
const (
	NotificationShipmentCreated = "SHIPMENT_CREATED"
	NotificationOfferReceived   = "OFFER_RECEIVED"
	NotificationOfferAccepted   = "OFFER_ACCEPTED"
	NotificationStatusUpdate    = "SHIPMENT_STATUS_UPDATE"
	NotificationPickupDueSoon   = "PICKUP_DUE_SOON"
)

// Notification is a persisted per-user feed entry. Everything except the
// read flag is immutable once created.
type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID     `bson:"user_id" json:"userId"`
	Type      string                 `bson:"type,omitempty" json:"type,omitempty"`
	Title     string                 `bson:"title" json:"title"`
	Message   string                 `bson:"message" json:"message"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Read      bool                   `bson:"read" json:"isRead"`
	CreatedAt time.Time              `bson:"created_at" json:"createdAt"`
}
