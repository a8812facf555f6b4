// Package locale holds the Spanish user-facing text of the viewer and the
// date formatting used for lifespans.
package locale

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholders and fixed messages shown to the user.
const (
	UnknownArtist      = "Artista Desconocido"
	UnknownBirthPlace  = "Lugar de nacimiento desconocido"
	NoDescription      = "Sin descripción disponible."
	UnknownLifespan    = "Periodo vital desconocido"
	UnknownBirthDate   = "Fecha de nacimiento desconocida"
	UnknownDeathDate   = "Fecha de fallecimiento desconocida"
	FeaturedWork       = "Obra destacada"
	ArtistPortrait     = "Retrato del artista"
	NoVisualInfo       = "Información visual no disponible"
	SummaryLoading     = "Cargando resumen de Wikipedia..."
	NoArticle          = "No se encontró artículo de Wikipedia para este pintor."
	PanelPrompt        = "Haz clic en un marcador en el mapa para ver los detalles aquí."
	NoPaintersFound    = "No se encontraron pintores con ubicación para este movimiento."
	SelectMovement     = "Por favor, seleccione un movimiento artístico."
	MovementLoadFailed = "No se pudieron cargar los pintores de este movimiento."
	BornInLabel        = "Nacido en:"
	SummaryFailed      = "No se pudo obtener el resumen de Wikipedia."
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDate renders an ISO-8601 date (optionally with a time part, as the
// knowledge graph returns them) in Spanish long form, e.g.
// "1452-04-15T00:00:00Z" -> "15 de abril de 1452". Negative years are
// rendered with "a. C.". ok is false when the value cannot be parsed.
func FormatDate(iso string) (string, bool) {
	s := strings.TrimSpace(iso)
	if s == "" {
		return "", false
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	bc := false
	if strings.HasPrefix(s, "-") {
		bc = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return "", false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 0 {
		return "", false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	out := fmt.Sprintf("%d de %s de %d", day, monthNames[month-1], year)
	if bc {
		out += " a. C."
	}
	return out, true
}

// DetailLifespan composes the lifespan line of the detail panel.
func DetailLifespan(birth, death string) string {
	switch {
	case birth != "" && death != "":
		return fmt.Sprintf("%s - %s", dateOr(birth, UnknownBirthDate), dateOr(death, UnknownDeathDate))
	case birth != "":
		return "Nacido/a: " + dateOr(birth, UnknownBirthDate)
	default:
		return UnknownLifespan
	}
}

// PopupLifespan composes the parenthesized lifespan of a marker popup. It is
// empty when the birth date is missing or unreadable.
func PopupLifespan(birth, death string) string {
	b, okB := FormatDate(birth)
	d, okD := FormatDate(death)
	switch {
	case okB && okD:
		return fmt.Sprintf("(%s - %s)", b, d)
	case okB:
		return fmt.Sprintf("(Nacido: %s)", b)
	default:
		return ""
	}
}

// dateOr formats iso, falling back to the raw value when it does not parse
// and to fallback when it is empty.
func dateOr(iso, fallback string) string {
	if iso == "" {
		return fallback
	}
	if out, ok := FormatDate(iso); ok {
		return out
	}
	return iso
}

// Caption picks the text shown under the detail image.
func Caption(artworkLabel, artworkImageURL, painterImageURL string) string {
	switch {
	case artworkLabel != "":
		return artworkLabel
	case artworkImageURL != "":
		return FeaturedWork
	case painterImageURL != "":
		return ArtistPortrait
	default:
		return NoVisualInfo
	}
}

// Or returns v, or fallback when v is empty.
func Or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
