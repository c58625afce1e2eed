package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offer statuses.
const (
	OfferStatusPending  = "PENDING"
	OfferStatusAccepted = "ACCEPTED"
	OfferStatusRejected = "REJECTED"
)

// Offer is a carrier's bid on a posted shipment.
type Offer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShipmentID primitive.ObjectID `bson:"shipment_id" json:"shipmentId"`
	CarrierID  primitive.ObjectID `bson:"carrier_id" json:"carrierId"`
	Price      float64            `bson:"price" json:"price"`
	Message    string             `bson:"message,omitempty" json:"message,omitempty"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}
