package events

import (
	"github.com/Shweta-Mathanker/womanSafetyDTI/models"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/geo"
)

// Event type tags carried on the wire. Changes should be additive; subscribers
// ignore types they do not know.
const (
	TypeNewMarker    = "new-marker"
	TypeDeleteMarker = "delete-marker"
)

// NewMarker is emitted after a marker has been stored.
type NewMarker struct {
	Type   string        `json:"type"`
	Marker models.Marker `json:"marker"`
}

// DeleteMarker is emitted after a marker has been removed. It carries the
// coordinates the delete request matched on, not the removed row's id, since
// removal itself is by approximate coordinate match.
type DeleteMarker struct {
	Type     string    `json:"type"`
	Location geo.Point `json:"location"`
}

// MarkerCreated builds the wire event for a stored marker.
func MarkerCreated(m models.Marker) NewMarker {
	return NewMarker{Type: TypeNewMarker, Marker: m}
}

// MarkerDeleted builds the wire event for a removed marker.
func MarkerDeleted(at geo.Point) DeleteMarker {
	return DeleteMarker{Type: TypeDeleteMarker, Location: at}
}
