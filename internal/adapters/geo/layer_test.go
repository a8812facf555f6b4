package geo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/artmap/internal/domain/markers"
	"github.com/okian/artmap/internal/domain/model"
)

func TestLayer(t *testing.T) {
	Convey("Given an empty layer", t, func() {
		ctx := context.Background()
		l := NewLayer()

		So(l.Len(), ShouldEqual, 0)
		So(l.FeatureCollection().Features, ShouldBeEmpty)

		Convey("Popup markup outside the popup elements is dropped", func() {
			l.AddMarker(ctx, markers.Marker{Name: "X", Popup: `<div class="painter-popup" onmouseover="x()"><h3>X</h3><script>alert(1)</script><p class="description">a&lt;b</p></div>`})
			got := l.FeatureCollection().Features[0].PropertyMustString(PropPopup)
			So(got, ShouldEqual, `<div class="painter-popup"><h3>X</h3><p class="description">a&lt;b</p></div>`)
		})

		Convey("Added markers render as points in insertion order", func() {
			a := l.AddMarker(ctx, markers.Marker{Name: "Goya", Popup: "<h3>Goya</h3>", Position: model.LatLng{Lat: 41.52, Lon: -1.02}})
			b := l.AddMarker(ctx, markers.Marker{Name: "Sorolla", Position: model.LatLng{Lat: 39.47, Lon: -0.38}})
			So(a, ShouldNotEqual, b)
			So(l.Len(), ShouldEqual, 2)

			fc := l.FeatureCollection()
			So(fc.Features, ShouldHaveLength, 2)
			So(fc.Features[0].Geometry.Point, ShouldResemble, []float64{-1.02, 41.52})
			So(fc.Features[0].PropertyMustString(PropName), ShouldEqual, "Goya")
			So(fc.Features[0].PropertyMustString(PropPopup), ShouldEqual, "<h3>Goya</h3>")
			So(fc.Features[1].PropertyMustString(PropMarker), ShouldEqual, b)
			So(fc.BoundingBox, ShouldResemble, []float64{-1.02, 39.47, -0.38, 41.52})

			raw, err := json.Marshal(fc)
			So(err, ShouldBeNil)
			back, err := geojson.UnmarshalFeatureCollection(raw)
			So(err, ShouldBeNil)
			So(back.Features, ShouldHaveLength, 2)

			Convey("Removing a marker drops its feature", func() {
				l.RemoveMarker(ctx, a)
				fc := l.FeatureCollection()
				So(fc.Features, ShouldHaveLength, 1)
				So(fc.Features[0].PropertyMustString(PropMarker), ShouldEqual, b)
			})

			Convey("Opening a popup flags the feature", func() {
				l.OpenPopup(ctx, b)
				So(l.Open(), ShouldEqual, b)
				So(l.FeatureCollection().Features[1].PropertyMustBool(PropOpen), ShouldBeTrue)
				l.RemoveMarker(ctx, b)
				So(l.Open(), ShouldBeEmpty)
			})
		})

		Convey("Clicking runs the marker handler with its handle", func() {
			var clicked string
			h := l.AddMarker(ctx, markers.Marker{Name: "Goya", OnClick: func(ctx context.Context, handle string) { clicked = handle }})
			So(l.Click(ctx, h), ShouldBeNil)
			So(clicked, ShouldEqual, h)

			err := l.Click(ctx, "m999")
			So(errors.Is(err, ErrUnknownMarker), ShouldBeTrue)
		})

		Convey("Preloads are deduplicated and forgotten when the layer empties", func() {
			h := l.AddMarker(ctx, markers.Marker{Name: "Goya"})
			l.Preload("https://example.org/a.jpg")
			l.Preload("https://example.org/a.jpg")
			l.Preload("")
			So(l.Preloads(), ShouldResemble, []string{"https://example.org/a.jpg"})
			l.RemoveMarker(ctx, h)
			So(l.Preloads(), ShouldBeEmpty)
		})
	})
}

type shownPanel struct{ names []string }

func (p *shownPanel) Show(_ context.Context, rec model.PainterRecord) {
	p.names = append(p.names, rec.Name)
}
func (p *shownPanel) Clear(context.Context)               {}
func (p *shownPanel) ShowMessage(context.Context, string) {}

func TestLayerWithSynchronizer(t *testing.T) {
	Convey("Given a layer driven by a synchronizer", t, func() {
		ctx := context.Background()
		l := NewLayer()
		p := &shownPanel{}
		s := markers.NewSynchronizer(l, p)
		at := func(name string) model.PainterRecord {
			return model.PainterRecord{Name: name, Location: &model.LatLng{Lat: 40, Lon: -3}}
		}

		s.Sync(ctx, model.ResultSet{Movement: "A", Records: []model.PainterRecord{at("Goya")}})
		l.mu.Lock()
		stale := l.markers["m1"]
		l.mu.Unlock()

		Convey("When the set is replaced before an old click handler runs", func() {
			s.Sync(ctx, model.ResultSet{Movement: "B", Records: []model.PainterRecord{at("Sorolla")}})
			stale.OnClick(ctx, "m1")

			Convey("Then the replaced painter is not shown", func() {
				So(p.names, ShouldBeEmpty)
				So(l.Open(), ShouldBeEmpty)
				So(l.Len(), ShouldEqual, 1)
			})

			Convey("And the current marker still works", func() {
				So(l.Click(ctx, "m2"), ShouldBeNil)
				So(p.names, ShouldResemble, []string{"Sorolla"})
				So(l.Open(), ShouldEqual, "m2")
			})
		})
	})
}
