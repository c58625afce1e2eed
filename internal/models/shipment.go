package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shipment lifecycle statuses. A shipment moves forward through
// POSTED -> ASSIGNED -> PICKED_UP -> IN_TRANSIT -> DELIVERED, or is CANCELLED.
const (
	ShipmentStatusPosted    = "POSTED"
	ShipmentStatusAssigned  = "ASSIGNED"
	ShipmentStatusPickedUp  = "PICKED_UP"
	ShipmentStatusInTransit = "IN_TRANSIT"
	ShipmentStatusDelivered = "DELIVERED"
	ShipmentStatusCancelled = "CANCELLED"
)

// Address is a pickup or delivery point.
type Address struct {
	Street    string  `bson:"street" json:"street"`
	City      string  `bson:"city" json:"city"`
	Country   string  `bson:"country" json:"country"`
	Latitude  float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// Shipment is a load posted by a shipper and carried by the carrier
// whose offer was accepted.
type Shipment struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ReferenceCode     string              `bson:"reference_code" json:"referenceCode"`
	ShipperID         primitive.ObjectID  `bson:"shipper_id" json:"shipperId"`
	AssignedCarrierID *primitive.ObjectID `bson:"assigned_carrier_id,omitempty" json:"assignedCarrierId,omitempty"`
	Origin            Address             `bson:"origin" json:"origin"`
	Destination       Address             `bson:"destination" json:"destination"`
	CargoDescription  string              `bson:"cargo_description" json:"cargoDescription"`
	WeightKg          float64             `bson:"weight_kg" json:"weightKg"`
	Status            string              `bson:"status" json:"status"`
	PickupDate        time.Time           `bson:"pickup_date" json:"pickupDate"`
	CreatedAt         time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updatedAt"`
}

// ValidStatusTransition reports whether a shipment may move from one status to another.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case ShipmentStatusPosted:
		return to == ShipmentStatusAssigned || to == ShipmentStatusCancelled
	case ShipmentStatusAssigned:
		return to == ShipmentStatusPickedUp || to == ShipmentStatusCancelled
	case ShipmentStatusPickedUp:
		return to == ShipmentStatusInTransit
	case ShipmentStatusInTransit:
		return to == ShipmentStatusDelivered
	default:
		return false
	}
}
