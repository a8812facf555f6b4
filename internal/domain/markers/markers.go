// Package markers keeps the map's markers in step with the current result
// set. A marker set never mixes two result sets.
package markers

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/internal/domain/locale"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/pkg/logger"
	"github.com/okian/artmap/pkg/metrics"
)

// Marker is what the synchronizer hands to the map for one painter.
type Marker struct {
	Position model.LatLng
	Name     string
	Popup    string
	Image    imageurl.Resolution
	// OnClick opens the popup of handle and shows the painter in the
	// detail panel. A handle no longer in the marker set is ignored.
	OnClick func(ctx context.Context, handle string)
}

// Map is the rendering widget.
type Map interface {
	AddMarker(ctx context.Context, m Marker) string
	RemoveMarker(ctx context.Context, handle string)
	OpenPopup(ctx context.Context, handle string)
}

// Panel is the detail panel as seen by the synchronizer.
type Panel interface {
	Show(ctx context.Context, rec model.PainterRecord)
	Clear(ctx context.Context)
	ShowMessage(ctx context.Context, msg string)
}

// Synchronizer owns the marker set of one map.
type Synchronizer struct {
	mu      sync.Mutex
	handles []string

	m         Map
	panel     Panel
	resolver  *imageurl.Resolver
	preloader imageurl.Preloader
	logger    logger.Logger
}

// NewSynchronizer creates a Synchronizer drawing on m and resetting panel.
func NewSynchronizer(m Map, panel Panel, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		m:        m,
		panel:    panel,
		resolver: imageurl.NewResolver(),
		logger:   logger.Current().Named("markers"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync replaces the marker set with one marker per located record of rs and
// returns how many were rendered. The panel is reset first; with no markers
// it shows the no-data message.
func (s *Synchronizer) Sync(ctx context.Context, rs model.ResultSet) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeAll(ctx)
	s.panel.Clear(ctx)

	skipped := 0
	for i := range rs.Records {
		rec := rs.Records[i]
		if !rec.HasLocation() {
			skipped++
			continue
		}
		s.handles = append(s.handles, s.add(ctx, rec))
	}

	metrics.RecordMarkerSync(len(s.handles), skipped)
	s.logger.Debug(ctx, "markers synchronized",
		logger.String("movement", rs.Movement.String()),
		logger.Int("rendered", len(s.handles)),
		logger.Int("skipped", skipped),
	)
	if len(s.handles) == 0 {
		s.panel.ShowMessage(ctx, locale.NoPaintersFound)
	}
	return len(s.handles)
}

// Clear removes every marker and resets the panel to its prompt.
func (s *Synchronizer) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeAll(ctx)
	s.panel.Clear(ctx)
}

// Len returns the size of the marker set.
func (s *Synchronizer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

func (s *Synchronizer) removeAll(ctx context.Context) {
	for _, h := range s.handles {
		s.m.RemoveMarker(ctx, h)
	}
	s.handles = s.handles[:0]
}

func (s *Synchronizer) add(ctx context.Context, rec model.PainterRecord) string {
	img := s.resolver.Resolve(rec.ArtworkImageURL, rec.PainterImageURL, imageurl.MarkerWidth)
	if img.Preload && s.preloader != nil {
		s.preloader.Preload(img.URL)
	}

	mk := Marker{
		Position: *rec.Location,
		Name:     locale.Or(rec.Name, locale.UnknownArtist),
		Popup:    Popup(&rec),
		Image:    img,
		OnClick: func(ctx context.Context, handle string) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !slices.Contains(s.handles, handle) {
				s.logger.Debug(ctx, "click on replaced marker ignored", logger.String("marker", handle))
				return
			}
			s.m.OpenPopup(ctx, handle)
			s.panel.Show(ctx, rec)
		},
	}
	return s.m.AddMarker(ctx, mk)
}
