package markers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/internal/domain/locale"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/pkg/logger"
)

type fakeMap struct {
	mu      sync.Mutex
	seq     int
	markers map[string]Marker
	opened  []string
}

func newFakeMap() *fakeMap { return &fakeMap{markers: map[string]Marker{}} }

func (f *fakeMap) AddMarker(ctx context.Context, m Marker) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	h := fmt.Sprintf("m%d", f.seq)
	f.markers[h] = m
	return h
}

func (f *fakeMap) RemoveMarker(ctx context.Context, handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.markers, handle)
}

func (f *fakeMap) OpenPopup(ctx context.Context, handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, handle)
}

func (f *fakeMap) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.markers))
	for _, m := range f.markers {
		out = append(out, m.Name)
	}
	sort.Strings(out)
	return out
}

func (f *fakeMap) click(ctx context.Context, handle string) {
	f.mu.Lock()
	m := f.markers[handle]
	f.mu.Unlock()
	m.OnClick(ctx, handle)
}

type fakePanel struct {
	shown   []string
	cleared int
	message string
}

func (p *fakePanel) Show(ctx context.Context, rec model.PainterRecord) {
	p.shown = append(p.shown, rec.Name)
}
func (p *fakePanel) Clear(ctx context.Context)                   { p.cleared++; p.message = "" }
func (p *fakePanel) ShowMessage(ctx context.Context, msg string) { p.message = msg }

type preloads []string

func (p *preloads) Preload(u string) { *p = append(*p, u) }

func located(name string, lat, lon float64) model.PainterRecord {
	return model.PainterRecord{Name: name, BirthPlaceLabel: "Madrid", Location: &model.LatLng{Lat: lat, Lon: lon}}
}

func TestSync(t *testing.T) {
	Convey("Given a synchronizer on an empty map", t, func() {
		ctx := context.Background()
		m := newFakeMap()
		panel := &fakePanel{}
		var warmed preloads
		s := NewSynchronizer(m, panel, WithPreloader(&warmed), WithLogger(logger.Nop()))

		rsA := model.ResultSet{Movement: "A", Records: []model.PainterRecord{
			located("Velázquez", 37.38, -5.99),
			{Name: "Sin coordenadas"},
			located("Goya", 41.52, -1.02),
		}}

		Convey("Only records with coordinates become markers", func() {
			n := s.Sync(ctx, rsA)
			So(n, ShouldEqual, 2)
			So(s.Len(), ShouldEqual, 2)
			So(m.names(), ShouldResemble, []string{"Goya", "Velázquez"})
			So(panel.cleared, ShouldEqual, 1)
		})

		Convey("Syncing twice leaves exactly one marker set", func() {
			s.Sync(ctx, rsA)
			s.Sync(ctx, rsA)
			So(m.names(), ShouldResemble, []string{"Goya", "Velázquez"})
		})

		Convey("A new result set replaces the old markers", func() {
			s.Sync(ctx, rsA)
			s.Sync(ctx, model.ResultSet{Movement: "B", Records: []model.PainterRecord{located("Sorolla", 39.47, -0.38)}})
			So(m.names(), ShouldResemble, []string{"Sorolla"})
			So(s.Len(), ShouldEqual, 1)
		})

		Convey("An empty result set shows the no-data message", func() {
			s.Sync(ctx, rsA)
			n := s.Sync(ctx, model.ResultSet{Movement: "C", Records: []model.PainterRecord{{Name: "x"}}})
			So(n, ShouldEqual, 0)
			So(m.names(), ShouldBeEmpty)
			So(panel.message, ShouldEqual, locale.NoPaintersFound)
		})

		Convey("Clicking a marker opens its popup and shows the painter", func() {
			s.Sync(ctx, rsA)
			var handle string
			for h, mk := range m.markers {
				if mk.Name == "Goya" {
					handle = h
				}
			}
			m.click(ctx, handle)
			So(m.opened, ShouldResemble, []string{handle})
			So(panel.shown, ShouldResemble, []string{"Goya"})
		})

		Convey("A click handler from a replaced marker set does nothing", func() {
			s.Sync(ctx, model.ResultSet{Movement: "A", Records: []model.PainterRecord{located("Goya", 41.52, -1.02)}})
			m.mu.Lock()
			stale := m.markers["m1"]
			m.mu.Unlock()

			s.Sync(ctx, model.ResultSet{Movement: "B", Records: []model.PainterRecord{located("Sorolla", 39.47, -0.38)}})
			stale.OnClick(ctx, "m1")

			So(m.opened, ShouldBeEmpty)
			So(panel.shown, ShouldBeEmpty)
			So(m.names(), ShouldResemble, []string{"Sorolla"})

			m.click(ctx, "m2")
			So(panel.shown, ShouldResemble, []string{"Sorolla"})
		})

		Convey("Clear removes the markers and resets the panel", func() {
			s.Sync(ctx, rsA)
			s.Clear(ctx)
			So(m.names(), ShouldBeEmpty)
			So(s.Len(), ShouldEqual, 0)
			So(panel.cleared, ShouldEqual, 2)
		})

		Convey("Only non-placeholder images are preloaded", func() {
			withImage := located("Picasso", 36.72, -4.42)
			withImage.ArtworkImageURL = "https://upload.wikimedia.org/wikipedia/commons/a/ab/Guernica.jpg"
			s.Sync(ctx, model.ResultSet{Records: []model.PainterRecord{withImage, located("Anónimo", 40, -3)}})
			So(warmed, ShouldHaveLength, 1)
			So(warmed[0], ShouldEqual, "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ab/Guernica.jpg/300px-Guernica.jpg")
			for _, mk := range m.markers {
				if mk.Name == "Anónimo" {
					So(mk.Image.URL, ShouldEqual, imageurl.DefaultPlaceholderURL)
					So(mk.Image.Preload, ShouldBeFalse)
				}
			}
		})
	})
}

func TestPopup(t *testing.T) {
	Convey("Given painter records", t, func() {
		Convey("A full record shows name, lifespan, birthplace and description", func() {
			html := Popup(&model.PainterRecord{
				Name:            "Leonardo da Vinci",
				BirthDate:       "1452-04-15T00:00:00Z",
				DeathDate:       "1519-05-02T00:00:00Z",
				BirthPlaceLabel: "Vinci",
				Description:     "pintor italiano",
			})
			So(html, ShouldContainSubstring, "<h3>Leonardo da Vinci</h3>")
			So(html, ShouldContainSubstring, "(15 de abril de 1452 - 2 de mayo de 1519)")
			So(html, ShouldContainSubstring, "<strong>Nacido en:</strong> Vinci")
			So(html, ShouldContainSubstring, "pintor italiano")
			So(html, ShouldNotContainSubstring, "<img")
		})

		Convey("Missing fields use placeholders and omit optional parts", func() {
			html := Popup(&model.PainterRecord{})
			So(html, ShouldContainSubstring, locale.UnknownArtist)
			So(html, ShouldContainSubstring, locale.UnknownBirthPlace)
			So(html, ShouldNotContainSubstring, "lifespan")
			So(html, ShouldNotContainSubstring, "description")
		})

		Convey("Only a birth date gives the born form", func() {
			html := Popup(&model.PainterRecord{Name: "X", BirthDate: "1452-04-15"})
			So(html, ShouldContainSubstring, "(Nacido: 15 de abril de 1452)")
		})

		Convey("Markup in names is escaped", func() {
			html := Popup(&model.PainterRecord{Name: "<b>X</b>"})
			So(strings.Contains(html, "<b>"), ShouldBeFalse)
		})

		Convey("Comparisons in a description survive as escaped text", func() {
			html := Popup(&model.PainterRecord{Name: "X", Description: "pintor (a<b y 3 > 2)"})
			So(html, ShouldContainSubstring, "pintor (a&lt;b y 3 &gt; 2)")
		})
	})
}
