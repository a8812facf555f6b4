// Package geo is the server-side marker layer of one map. It records what
// the synchronizer draws and renders it as GeoJSON for the browser.
package geo

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	geojson "github.com/paulmach/go.geojson"

	"github.com/okian/artmap/internal/adapters/textclean"
	"github.com/okian/artmap/internal/domain/markers"
)

// Feature property keys.
const (
	PropMarker = "marker"
	PropName   = "name"
	PropPopup  = "popup"
	PropImage  = "image"
	PropOpen   = "open"
)

// Layer is a concurrency-safe markers.Map and imageurl.Preloader.
type Layer struct {
	mu      sync.Mutex
	seq     uint64
	order   []string
	markers map[string]markers.Marker
	open    string
	preload []string
	preSeen map[string]struct{}
}

// NewLayer creates an empty layer.
func NewLayer() *Layer {
	return &Layer{
		markers: make(map[string]markers.Marker),
		preSeen: make(map[string]struct{}),
	}
}

// AddMarker places m on the layer and returns its handle.
func (l *Layer) AddMarker(ctx context.Context, m markers.Marker) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	h := "m" + strconv.FormatUint(l.seq, 10)
	l.markers[h] = m
	l.order = append(l.order, h)
	return h
}

// RemoveMarker drops handle. Removing the last marker also forgets the
// preload list and the open popup.
func (l *Layer) RemoveMarker(ctx context.Context, handle string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.markers[handle]; !ok {
		return
	}
	delete(l.markers, handle)
	for i, h := range l.order {
		if h == handle {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	if l.open == handle {
		l.open = ""
	}
	if len(l.markers) == 0 {
		l.preload = nil
		l.preSeen = make(map[string]struct{})
	}
}

// OpenPopup marks handle's popup as the open one.
func (l *Layer) OpenPopup(ctx context.Context, handle string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.markers[handle]; ok {
		l.open = handle
	}
}

// Preload records u for the browser to warm. Duplicates are ignored.
func (l *Layer) Preload(u string) {
	if u == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.preSeen[u]; ok {
		return
	}
	l.preSeen[u] = struct{}{}
	l.preload = append(l.preload, u)
}

// Click runs the click handler of handle.
func (l *Layer) Click(ctx context.Context, handle string) error {
	l.mu.Lock()
	m, ok := l.markers[handle]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMarker, handle)
	}
	if m.OnClick != nil {
		m.OnClick(ctx, handle)
	}
	return nil
}

// Len returns the number of markers on the layer.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.markers)
}

// Preloads returns the image URLs to warm, in the order they were added.
func (l *Layer) Preloads() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.preload...)
}

// Open returns the handle whose popup is open, if any.
func (l *Layer) Open() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// FeatureCollection renders the markers as GeoJSON points in insertion
// order, with a bounding box when the layer is not empty.
func (l *Layer) FeatureCollection() *geojson.FeatureCollection {
	l.mu.Lock()
	defer l.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	for _, h := range l.order {
		m := l.markers[h]
		f := geojson.NewPointFeature([]float64{m.Position.Lon, m.Position.Lat})
		f.ID = h
		f.SetProperty(PropMarker, h)
		f.SetProperty(PropName, m.Name)
		f.SetProperty(PropPopup, textclean.Fragment(m.Popup))
		f.SetProperty(PropImage, m.Image.URL)
		if h == l.open {
			f.SetProperty(PropOpen, true)
		}
		fc.AddFeature(f)

		minLon, maxLon = math.Min(minLon, m.Position.Lon), math.Max(maxLon, m.Position.Lon)
		minLat, maxLat = math.Min(minLat, m.Position.Lat), math.Max(maxLat, m.Position.Lat)
	}
	if len(l.order) > 0 {
		fc.BoundingBox = []float64{minLon, minLat, maxLon, maxLat}
	}
	return fc
}
