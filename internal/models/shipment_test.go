package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatusTransition(t *testing.T) {
	allowed := [][2]string{
		{ShipmentStatusPosted, ShipmentStatusAssigned},
		{ShipmentStatusPosted, ShipmentStatusCancelled},
		{ShipmentStatusAssigned, ShipmentStatusPickedUp},
		{ShipmentStatusAssigned, ShipmentStatusCancelled},
		{ShipmentStatusPickedUp, ShipmentStatusInTransit},
		{ShipmentStatusInTransit, ShipmentStatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, ValidStatusTransition(tc[0], tc[1]), "%s -> %s", tc[0], tc[1])
	}

	denied := [][2]string{
		{ShipmentStatusPosted, ShipmentStatusDelivered},
		{ShipmentStatusAssigned, ShipmentStatusPosted},
		{ShipmentStatusDelivered, ShipmentStatusInTransit},
		{ShipmentStatusCancelled, ShipmentStatusPosted},
		{ShipmentStatusInTransit, ShipmentStatusCancelled},
	}
	for _, tc := range denied {
		assert.False(t, ValidStatusTransition(tc[0], tc[1]), "%s -> %s", tc[0], tc[1])
	}
}
