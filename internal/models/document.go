package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a file attached to a shipment (CMR, invoice, proof of delivery, ...).
type Document struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShipmentID primitive.ObjectID `bson:"shipment_id" json:"shipmentId"`
	UploaderID primitive.ObjectID `bson:"uploader_id" json:"uploaderId"`
	Type       string             `bson:"type,omitempty" json:"type,omitempty"`
	FileName   string             `bson:"file_name" json:"fileName"`
	FileURL    string             `bson:"file_url" json:"fileUrl"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
