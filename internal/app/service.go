// Package service wires the cache, prefetch pool and per-page sessions
// behind the operations the HTTP API exposes.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/artmap/internal/adapters/mq/queue"
	"github.com/okian/artmap/internal/adapters/mq/worker"
	"github.com/okian/artmap/internal/adapters/repository"
	"github.com/okian/artmap/internal/adapters/sparql"
	"github.com/okian/artmap/internal/adapters/wikipedia"
	"github.com/okian/artmap/internal/domain/catalog"
	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/internal/domain/panel"
	"github.com/okian/artmap/internal/domain/query"
	"github.com/okian/artmap/internal/domain/types"
	"github.com/okian/artmap/pkg/logger"
	"github.com/okian/artmap/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize   = 64
	defaultSessionIdle = time.Hour
	reapInterval       = time.Minute
)

// Service holds process-wide state: the result cache shared by all
// sessions and the prefetch pool that warms it.
type Service struct {
	mu sync.RWMutex

	// Configuration
	workerCount      int
	queueSize        int
	sessionIdle      time.Duration
	catalog          *catalog.Catalog
	fetcher          repository.Fetcher
	summaries        panel.SummaryFetcher
	summaryErrorText func(error) string
	resolver         *imageurl.Resolver

	// Runtime
	cache    *repository.MemoryCache
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	sessions map[string]*Session
	started  bool
	cancel   context.CancelFunc
	reaped   chan struct{}

	logger logger.Logger
}

// New constructs a Service. Without WithFetcher and WithSummaryFetcher it
// talks to the public Wikidata and Spanish Wikipedia endpoints.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		queueSize:        defaultQueueSize,
		sessionIdle:      defaultSessionIdle,
		summaryErrorText: wikipedia.UserMessage,
		sessions:         make(map[string]*Session),
		logger:           logger.Current().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		if c, err := catalog.Default(); err == nil {
			s.catalog = c
		}
	}
	if s.fetcher == nil {
		s.fetcher = sparql.NewClient(query.NewBuilder())
	}
	if s.summaries == nil {
		s.summaries = wikipedia.NewFetcher()
	}
	if s.resolver == nil {
		s.resolver = imageurl.NewResolver()
	}
	return s
}

// Start builds the cache and prefetch pool and schedules one prefetch per
// catalog movement. Prefetches complete in any order.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.catalog == nil {
		return fmt.Errorf("start: %w", catalog.ErrInvalidCatalog)
	}

	s.logger.Info(ctx, "starting map service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)
	s.cache = repository.NewMemoryCache(s.fetcher,
		repository.WithQueue(s.queue),
		repository.WithLogger(s.logger.Named("cache")),
	)
	s.pool = worker.NewPool(s.workerCount, s.queue, s.cache,
		worker.WithPoolLogger(s.logger.Named("prefetch")),
	)
	s.pool.Start(runCtx)

	accepted, err := s.cache.PrefetchAll(runCtx, s.catalog.IDs())
	if err != nil {
		s.logger.Warn(ctx, "some prefetches were not scheduled", logger.Error(err))
	}

	s.reaped = make(chan struct{})
	go s.reapIdleSessions(runCtx, s.reaped)

	s.started = true
	s.logger.Info(ctx, "map service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("prefetching", accepted),
	)
	return nil
}

// Stop closes every session and drains the prefetch pool.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	pool, cancel, reaped := s.pool, s.cancel, s.reaped
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping map service...")

	for _, sess := range sessions {
		sess.close()
	}
	metrics.UpdateActiveSessions(0)

	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "prefetch pool did not drain", logger.Error(err))
	}
	cancel()
	<-reaped

	s.logger.Info(ctx, "map service stopped")
}

// Movements returns the catalog in display order.
func (s *Service) Movements() []model.Movement {
	if s.catalog == nil {
		return nil
	}
	return append([]model.Movement(nil), s.catalog.Movements...)
}

// DefaultMovement returns the movement the page pre-selects.
func (s *Service) DefaultMovement() model.MovementID {
	if s.catalog == nil {
		return ""
	}
	return s.catalog.Default
}

// NewSession creates the state of one page: a marker layer, its
// synchronizer and a detail panel.
func (s *Service) NewSession(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	sess := newSession(uuid.NewString(), s.cache, s.summaries, s.resolver, s.summaryErrorText, s.logger)
	s.sessions[sess.ID()] = sess
	metrics.UpdateActiveSessions(len(s.sessions))
	s.logger.Debug(ctx, "session created", logger.String("session", sess.ID()))
	return sess, nil
}

// Session returns the session with id.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.touch()
	return sess, nil
}

// CloseSession discards the session with id.
func (s *Service) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.close()
	metrics.UpdateActiveSessions(n)
	s.logger.Debug(ctx, "session closed", logger.String("session", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"sessions":    len(s.sessions),
	}
	if s.catalog != nil {
		stats["catalogMovements"] = len(s.catalog.Movements)
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["cachedMovements"] = s.cache.Len(ctx)
		stats["cached"] = s.cache.Movements(ctx)
	}
	return stats
}

func (s *Service) reapIdleSessions(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	if s.sessionIdle == 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.reap(ctx, now)
		}
	}
}

// reap closes sessions untouched for longer than the idle limit.
func (s *Service) reap(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	var idle []*Session
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen()) > s.sessionIdle {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range idle {
		sess.close()
	}
	if len(idle) > 0 {
		metrics.UpdateActiveSessions(n)
		s.logger.Info(ctx, "idle sessions closed", logger.Int("closed", len(idle)))
	}
	return len(idle)
}

// CreateSession creates a session and returns its id.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	sess, err := s.NewSession(ctx)
	if err != nil {
		return "", err
	}
	return sess.ID(), nil
}

// Refresh runs the update trigger of session id.
func (s *Service) Refresh(ctx context.Context, id, movement string) (RefreshResult, error) {
	sess, err := s.Session(id)
	if err != nil {
		return RefreshResult{}, err
	}
	return sess.Refresh(ctx, movement)
}

// Markers renders the marker layer of session id.
func (s *Service) Markers(ctx context.Context, id string) (types.MarkersResponse, error) {
	sess, err := s.Session(id)
	if err != nil {
		return types.MarkersResponse{}, err
	}
	return sess.Markers(), nil
}

// Click clicks marker on the map of session id.
func (s *Service) Click(ctx context.Context, id, marker string) (panel.View, error) {
	sess, err := s.Session(id)
	if err != nil {
		return panel.View{}, err
	}
	return sess.Click(ctx, marker)
}

// Panel returns the detail panel of session id.
func (s *Service) Panel(ctx context.Context, id string) (panel.View, error) {
	sess, err := s.Session(id)
	if err != nil {
		return panel.View{}, err
	}
	return sess.Panel(), nil
}

// ClearPanel resets the detail panel of session id.
func (s *Service) ClearPanel(ctx context.Context, id string) (panel.View, error) {
	sess, err := s.Session(id)
	if err != nil {
		return panel.View{}, err
	}
	return sess.ClearPanel(ctx), nil
}
