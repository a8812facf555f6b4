package sparql

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/artmap/internal/domain/model"
)

// Variable names produced by the painter query.
const (
	varPainter     = "painter"
	varName        = "painterLabel"
	varDescription = "painterDescription"
	varBirthPlace  = "placeOfBirthLabel"
	varLat         = "lat"
	varLon         = "lon"
	varBirthDate   = "dateOfBirth"
	varDeathDate   = "dateOfDeath"
	varArtLabel    = "sampledArtworkLabel"
	varArtImage    = "sampledArtworkImage"
	varPainterImg  = "sampledPainterImage"
	varArticle     = "wikipediaArticle"
)

func (b Binding) value(name string) string {
	v, ok := b[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.Value)
}

// Record converts the binding to a PainterRecord. A location is set only
// when both coordinates parse as finite, in-range numbers.
func (b Binding) Record() model.PainterRecord {
	rec := model.PainterRecord{
		ID:              b.value(varPainter),
		Name:            b.value(varName),
		Description:     b.value(varDescription),
		BirthPlaceLabel: b.value(varBirthPlace),
		BirthDate:       b.value(varBirthDate),
		DeathDate:       b.value(varDeathDate),
		ArtworkImageURL: b.value(varArtImage),
		PainterImageURL: b.value(varPainterImg),
		ArtworkLabel:    b.value(varArtLabel),
		ArticleURL:      b.value(varArticle),
	}
	lat, okLat := coordinate(b.value(varLat), 90)
	lon, okLon := coordinate(b.value(varLon), 180)
	if okLat && okLon {
		rec.Location = &model.LatLng{Lat: lat, Lon: lon}
	}
	return rec
}

func coordinate(s string, limit float64) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > limit {
		return 0, false
	}
	return f, true
}
