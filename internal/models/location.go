package models

// LocationUpdate is a live GPS ping for a shipment. It is relayed to
// tracking subscribers and never persisted.
type LocationUpdate struct {
	ShipmentID string   `json:"shipmentId"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
	Speed      *float64 `json:"speed,omitempty"`
	Heading    *float64 `json:"heading,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}
