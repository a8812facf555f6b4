// Package types contains the request and response shapes of the HTTP API.
package types

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/okian/artmap/internal/domain/model"
)

// MapConfig is what the front end needs to draw the base map.
type MapConfig struct {
	CenterLat       float64          `json:"centerLat"`
	CenterLon       float64          `json:"centerLon"`
	Zoom            int              `json:"zoom"`
	MinZoom         int              `json:"minZoom"`
	TileURL         string           `json:"tileUrl"`
	TileAttribution string           `json:"tileAttribution"`
	IconURL         string           `json:"iconUrl"`
	IconRetinaURL   string           `json:"iconRetinaUrl"`
	ShadowURL       string           `json:"shadowUrl"`
	DefaultMovement model.MovementID `json:"defaultMovement,omitempty"`
	Prompt          string           `json:"prompt"`
	SelectMovement  string           `json:"selectMovement"`
}

// MovementsResponse lists the selectable movements.
type MovementsResponse struct {
	Default   model.MovementID `json:"default,omitempty"`
	Movements []model.Movement `json:"movements"`
}

// SessionResponse identifies a newly created session.
type SessionResponse struct {
	ID string `json:"id"`
}

// RefreshRequest is the body of the update trigger.
type RefreshRequest struct {
	Movement string `json:"movement"`
}

// RefreshResponse reports what the update trigger drew.
type RefreshResponse struct {
	Movement model.MovementID `json:"movement"`
	Markers  int              `json:"markers"`
	Cached   bool             `json:"cached"`
}

// MarkersResponse is a GeoJSON FeatureCollection with two extra members:
// the image URLs to preload and the marker whose popup is open.
type MarkersResponse struct {
	Type        string             `json:"type"`
	BoundingBox []float64          `json:"bbox,omitempty"`
	Features    []*geojson.Feature `json:"features"`
	Preload     []string           `json:"preload"`
	Open        string             `json:"open,omitempty"`
}

// NewMarkersResponse wraps fc with the extra members.
func NewMarkersResponse(fc *geojson.FeatureCollection, preload []string, open string) MarkersResponse {
	out := MarkersResponse{
		Type:     "FeatureCollection",
		Features: []*geojson.Feature{},
		Preload:  []string{},
		Open:     open,
	}
	if fc != nil {
		out.BoundingBox = fc.BoundingBox
		if fc.Features != nil {
			out.Features = fc.Features
		}
	}
	if preload != nil {
		out.Preload = preload
	}
	return out
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
