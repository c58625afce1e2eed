package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold on the marketplace.
const (
	RoleShipper = "SHIPPER"
	RoleCarrier = "CARRIER"
	RoleAdmin   = "ADMIN"
)

// User represents an account on the freight marketplace.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName       string             `bson:"full_name" json:"fullName"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Role           string             `bson:"role" json:"role"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	FullName string             `json:"fullName"`
	Email    string             `json:"email"`
	Role     string             `json:"role"`
}
