package models

import "time"

// Marker is a danger-zone marker placed on the shared map. Markers are
// immutable once created; they only ever get removed.
type Marker struct {
	ID          int       `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
