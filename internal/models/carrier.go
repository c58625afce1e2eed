package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Carrier is the company profile a CARRIER user operates under.
type Carrier struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	CompanyName string             `bson:"company_name" json:"companyName"`
	TaxID       string             `bson:"tax_id,omitempty" json:"taxId,omitempty"`
	Verified    bool               `bson:"verified" json:"verified"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Vehicle belongs to a carrier profile.
type Vehicle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CarrierID   primitive.ObjectID `bson:"carrier_id" json:"carrierId"`
	PlateNumber string             `bson:"plate_number" json:"plateNumber"`
	Type        string             `bson:"type" json:"type"` // e.g. "VAN", "FLATBED", "REEFER"
	CapacityKg  float64            `bson:"capacity_kg" json:"capacityKg"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
