// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// EntityPrefix is the IRI prefix of Wikidata entities.
const EntityPrefix = "http://www.wikidata.org/entity/"

// MovementID identifies an artistic movement by its knowledge-graph IRI.
type MovementID string

// NormalizeMovementID trims the id and expands a bare "Q123" into the full
// entity IRI. Anything else is returned trimmed but otherwise untouched.
func NormalizeMovementID(raw string) MovementID {
	id := strings.TrimSpace(raw)
	if isQID(id) {
		return MovementID(EntityPrefix + id)
	}
	return MovementID(id)
}

func isQID(s string) bool {
	if len(s) < 2 || s[0] != 'Q' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String returns the IRI.
func (m MovementID) String() string { return string(m) }

// Empty reports whether the id cannot be queried.
func (m MovementID) Empty() bool { return strings.TrimSpace(string(m)) == "" }

// Movement is one selectable entry of the movement catalog.
type Movement struct {
	ID    MovementID `json:"id" yaml:"id"`
	Label string     `json:"label" yaml:"label"`
}

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PainterRecord is one result row. Empty strings mean "absent".
// Location is nil unless both latitude and longitude were present.
type PainterRecord struct {
	ID              string  `json:"id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	BirthPlaceLabel string  `json:"birthPlaceLabel"`
	BirthDate       string  `json:"birthDate,omitempty"`
	DeathDate       string  `json:"deathDate,omitempty"`
	Location        *LatLng `json:"location,omitempty"`
	ArtworkImageURL string  `json:"artworkImageUrl,omitempty"`
	PainterImageURL string  `json:"painterImageUrl,omitempty"`
	ArtworkLabel    string  `json:"artworkLabel,omitempty"`
	ArticleURL      string  `json:"articleUrl,omitempty"`
}

// HasLocation reports whether the record can be placed on the map.
func (p *PainterRecord) HasLocation() bool { return p.Location != nil }

// ResultSet is the ordered painters returned for one movement. Order carries
// no meaning beyond marker z-order.
type ResultSet struct {
	Movement  MovementID      `json:"movement"`
	Records   []PainterRecord `json:"records"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Clone returns a copy whose record slice is not shared.
func (r ResultSet) Clone() ResultSet {
	out := r
	if r.Records != nil {
		out.Records = make([]PainterRecord, len(r.Records))
		copy(out.Records, r.Records)
	}
	return out
}

// Located returns how many records carry coordinates.
func (r ResultSet) Located() int {
	n := 0
	for i := range r.Records {
		if r.Records[i].HasLocation() {
			n++
		}
	}
	return n
}
