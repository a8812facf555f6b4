package markers

import (
	"bytes"
	"html/template"

	"github.com/okian/artmap/internal/domain/locale"
	"github.com/okian/artmap/internal/domain/model"
)

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="painter-popup">` +
		`<h3>{{.Name}}</h3>` +
		`{{if .Lifespan}}<p class="lifespan">{{.Lifespan}}</p>{{end}}` +
		`<p class="birthplace"><strong>{{.BornIn}}</strong> {{.BirthPlace}}</p>` +
		`{{if .Description}}<p class="description">{{.Description}}</p>{{end}}` +
		`</div>`))

type popupData struct {
	Name        string
	Lifespan    string
	BornIn      string
	BirthPlace  string
	Description string
}

// Popup renders the popup body of a marker. The image is never embedded.
func Popup(rec *model.PainterRecord) string {
	data := popupData{
		Name:        locale.Or(rec.Name, locale.UnknownArtist),
		Lifespan:    locale.PopupLifespan(rec.BirthDate, rec.DeathDate),
		BornIn:      locale.BornInLabel,
		BirthPlace:  locale.Or(rec.BirthPlaceLabel, locale.UnknownBirthPlace),
		Description: rec.Description,
	}
	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, data); err != nil {
		// fields are plain strings; execution cannot fail
		return template.HTMLEscapeString(data.Name)
	}
	return buf.String()
}
