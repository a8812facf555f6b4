package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/artmap/internal/adapters/geo"
	"github.com/okian/artmap/internal/adapters/repository"
	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/internal/domain/locale"
	"github.com/okian/artmap/internal/domain/markers"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/internal/domain/panel"
	"github.com/okian/artmap/internal/domain/types"
	"github.com/okian/artmap/pkg/logger"
)

// RefreshResult reports what the update trigger drew.
type RefreshResult struct {
	Movement model.MovementID
	Markers  int
	Cached   bool
}

// Session is one page: its markers and detail panel. The result cache is
// shared with every other session.
type Session struct {
	id    string
	cache repository.Cache

	layer *geo.Layer
	panel *panel.Controller
	sync  *markers.Synchronizer

	// refreshMu applies update triggers of one page in arrival order.
	refreshMu sync.Mutex

	mu       sync.Mutex
	movement model.MovementID
	seen     time.Time

	logger logger.Logger
}

func newSession(id string, cache repository.Cache, summaries panel.SummaryFetcher, resolver *imageurl.Resolver, errorText func(error) string, l logger.Logger) *Session {
	sl := l.Named("session")
	layer := geo.NewLayer()
	pc := panel.NewController(summaries,
		panel.WithResolver(resolver),
		panel.WithErrorText(errorText),
		panel.WithLogger(sl),
	)
	return &Session{
		id:    id,
		cache: cache,
		layer: layer,
		panel: pc,
		sync: markers.NewSynchronizer(layer, pc,
			markers.WithResolver(resolver),
			markers.WithPreloader(layer),
			markers.WithLogger(sl),
		),
		seen:   time.Now(),
		logger: sl,
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Movement returns the movement currently drawn, if any.
func (s *Session) Movement() model.MovementID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movement
}

// Refresh is the update trigger. An empty selection clears the map and
// fails with ErrNoMovementSelected. A cached movement is drawn directly;
// otherwise it is fetched, and a failed fetch leaves the map empty.
func (s *Session) Refresh(ctx context.Context, raw string) (RefreshResult, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	id := model.NormalizeMovementID(raw)
	if id.Empty() {
		s.sync.Clear(ctx)
		s.setMovement("")
		return RefreshResult{}, ErrNoMovementSelected
	}

	rs, cached, err := s.cache.GetOrFetch(ctx, id)
	if err != nil {
		s.sync.Clear(ctx)
		s.panel.ShowMessage(ctx, locale.MovementLoadFailed)
		s.setMovement("")
		s.logger.Warn(ctx, "movement could not be loaded",
			logger.String("session", s.id),
			logger.String("movement", id.String()),
			logger.Error(err),
		)
		return RefreshResult{Movement: id}, fmt.Errorf("%w: %w", ErrMovementUnavailable, err)
	}
	n := s.sync.Sync(ctx, rs)
	s.setMovement(id)
	return RefreshResult{Movement: id, Markers: n, Cached: cached}, nil
}

// Click opens the popup of marker and shows its painter in the panel.
func (s *Session) Click(ctx context.Context, marker string) (panel.View, error) {
	if err := s.layer.Click(ctx, marker); err != nil {
		return panel.View{}, err
	}
	return s.panel.View(), nil
}

// ClearPanel resets the panel to its prompt.
func (s *Session) ClearPanel(ctx context.Context) panel.View {
	s.panel.Clear(ctx)
	return s.panel.View()
}

// Panel returns the current panel view.
func (s *Session) Panel() panel.View { return s.panel.View() }

// Markers renders the marker layer.
func (s *Session) Markers() types.MarkersResponse {
	return types.NewMarkersResponse(s.layer.FeatureCollection(), s.layer.Preloads(), s.layer.Open())
}

// MarkerCount returns the size of the current marker set.
func (s *Session) MarkerCount() int { return s.sync.Len() }

// Wait blocks until outstanding summary lookups have returned.
func (s *Session) Wait() { s.panel.Wait() }

func (s *Session) setMovement(id model.MovementID) {
	s.mu.Lock()
	s.movement = id
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.seen = time.Now()
	s.mu.Unlock()
}

func (s *Session) lastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

func (s *Session) close() {
	s.panel.Close()
}
