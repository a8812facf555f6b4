package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	service "github.com/okian/artmap/internal/app"
	"github.com/okian/artmap/internal/domain/catalog"
	"github.com/okian/artmap/internal/domain/locale"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/internal/domain/panel"
	"github.com/okian/artmap/pkg/logger"
	"github.com/okian/artmap/pkg/metrics"
)

const testCatalog = `
default: Q40415
movements:
  - id: Q40415
    label: Impresionismo
  - id: Q42934
    label: Cubismo
`

var (
	impressionism = model.NormalizeMovementID("Q40415")
	cubism        = model.NormalizeMovementID("Q42934")
	surrealism    = model.NormalizeMovementID("Q39427")
)

type fakePainters struct {
	mu    sync.Mutex
	sets  map[model.MovementID][]model.PainterRecord
	calls map[model.MovementID]int
	fail  map[model.MovementID]bool
}

func newFakePainters() *fakePainters {
	return &fakePainters{
		sets: map[model.MovementID][]model.PainterRecord{
			impressionism: {
				{Name: "Claude Monet", ArticleURL: "https://es.wikipedia.org/wiki/Claude_Monet", Location: &model.LatLng{Lat: 48.85, Lon: 2.35}},
				{Name: "Sin lugar"},
			},
			cubism: {
				{Name: "Pablo Picasso", Location: &model.LatLng{Lat: 36.72, Lon: -4.42}},
				{Name: "Georges Braque", Location: &model.LatLng{Lat: 49.43, Lon: 1.09}},
			},
			surrealism: {
				{Name: "Salvador Dalí", Location: &model.LatLng{Lat: 42.27, Lon: 2.96}},
			},
		},
		calls: map[model.MovementID]int{},
		fail:  map[model.MovementID]bool{},
	}
}

func (f *fakePainters) Painters(ctx context.Context, id model.MovementID) (model.ResultSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if f.fail[id] {
		return model.ResultSet{}, errors.New("endpoint unreachable")
	}
	return model.ResultSet{Movement: id, Records: f.sets[id]}, nil
}

func (f *fakePainters) setFail(id model.MovementID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[id] = true
}

func (f *fakePainters) callsFor(id model.MovementID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type fakeSummaries struct{}

func (fakeSummaries) Summary(ctx context.Context, articleURL string) (string, error) {
	return "resumen de " + articleURL[strings.LastIndex(articleURL, "/")+1:], nil
}

func newService(fetcher *fakePainters) *service.Service {
	cat, err := catalog.Decode(strings.NewReader(testCatalog))
	if err != nil {
		panic(err)
	}
	return service.New(
		service.WithCatalog(cat),
		service.WithFetcher(fetcher),
		service.WithSummaryFetcher(fakeSummaries{}),
		service.WithWorkerCount(2),
		service.WithQueueSize(8),
		service.WithLogger(logger.Nop()),
	)
}

func waitPrefetched(svc *service.Service, n int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c, ok := svc.GetStats()["cachedMovements"].(int); ok && c >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// counterValue reads a counter from the service metrics registry.
func counterValue(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() == name && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestService_Lifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	Convey("Given a new service", t, func() {
		fetcher := newFakePainters()
		svc := newService(fetcher)
		ctx := context.Background()

		Convey("Sessions cannot be created before Start", func() {
			_, err := svc.NewSession(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Start prefetches every catalog movement", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)

			So(waitPrefetched(svc, 2), ShouldBeTrue)
			So(fetcher.callsFor(impressionism), ShouldEqual, 1)
			So(fetcher.callsFor(cubism), ShouldEqual, 1)
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.DefaultMovement(), ShouldEqual, impressionism)
			So(svc.Movements(), ShouldHaveLength, 2)
		})

		Convey("Stop is idempotent and closes sessions", func() {
			So(svc.Start(ctx), ShouldBeNil)
			sess, err := svc.NewSession(ctx)
			So(err, ShouldBeNil)
			svc.Stop()
			svc.Stop()
			_, err = svc.Session(sess.ID())
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestSession_Refresh(t *testing.T) {
	Convey("Given a started service and a session", t, func() {
		fetcher := newFakePainters()
		svc := newService(fetcher)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		So(waitPrefetched(svc, 2), ShouldBeTrue)

		sess, err := svc.NewSession(ctx)
		So(err, ShouldBeNil)
		got, err := svc.Session(sess.ID())
		So(err, ShouldBeNil)
		So(got, ShouldEqual, sess)

		Convey("An empty selection clears the map and asks for a movement", func() {
			_, err := sess.Refresh(ctx, "Q42934")
			So(err, ShouldBeNil)
			_, err = sess.Refresh(ctx, "  ")
			So(errors.Is(err, service.ErrNoMovementSelected), ShouldBeTrue)
			So(service.UserMessage(err), ShouldEqual, locale.SelectMovement)
			So(sess.MarkerCount(), ShouldEqual, 0)
			So(sess.Panel().State, ShouldEqual, panel.StateEmpty)
		})

		Convey("A cached movement is drawn without fetching", func() {
			res, err := sess.Refresh(ctx, string(cubism))
			So(err, ShouldBeNil)
			So(res.Cached, ShouldBeTrue)
			So(res.Markers, ShouldEqual, 2)
			So(fetcher.callsFor(cubism), ShouldEqual, 1)
			So(sess.Movement(), ShouldEqual, cubism)
			So(sess.Markers().Features, ShouldHaveLength, 2)
		})

		Convey("Records without coordinates are not drawn", func() {
			res, err := sess.Refresh(ctx, "Q40415")
			So(err, ShouldBeNil)
			So(res.Markers, ShouldEqual, 1)
		})

		Convey("An uncached movement is fetched on demand and then cached", func() {
			misses := counterValue("artmap_viewer_cache_misses_total")
			hits := counterValue("artmap_viewer_cache_hits_total")
			res, err := sess.Refresh(ctx, "Q39427")
			So(err, ShouldBeNil)
			So(res.Cached, ShouldBeFalse)
			So(res.Markers, ShouldEqual, 1)
			So(counterValue("artmap_viewer_cache_misses_total")-misses, ShouldEqual, 1)

			res, err = sess.Refresh(ctx, "Q39427")
			So(err, ShouldBeNil)
			So(res.Cached, ShouldBeTrue)
			So(counterValue("artmap_viewer_cache_misses_total")-misses, ShouldEqual, 1)
			So(counterValue("artmap_viewer_cache_hits_total")-hits, ShouldEqual, 1)
			So(fetcher.callsFor(surrealism), ShouldEqual, 1)
		})

		Convey("A failed on-demand fetch leaves the map empty", func() {
			_, err := sess.Refresh(ctx, "Q42934")
			So(err, ShouldBeNil)
			fetcher.setFail(surrealism)
			_, err = sess.Refresh(ctx, "Q39427")
			So(errors.Is(err, service.ErrMovementUnavailable), ShouldBeTrue)
			So(service.UserMessage(err), ShouldEqual, locale.MovementLoadFailed)
			So(sess.MarkerCount(), ShouldEqual, 0)
			So(sess.Markers().Features, ShouldBeEmpty)
			So(sess.Panel().Message, ShouldEqual, locale.MovementLoadFailed)
		})

		Convey("Clicking a marker fills the panel and loads the summary", func() {
			_, err := sess.Refresh(ctx, "Q40415")
			So(err, ShouldBeNil)
			features := sess.Markers().Features
			So(features, ShouldHaveLength, 1)
			handle := features[0].PropertyMustString("marker")

			view, err := sess.Click(ctx, handle)
			So(err, ShouldBeNil)
			So(view.Detail.Name, ShouldEqual, "Claude Monet")
			So(sess.Markers().Open, ShouldEqual, handle)

			sess.Wait()
			view = sess.Panel()
			So(view.State, ShouldEqual, panel.StateSummaryReady)
			So(view.Summary.Text, ShouldEqual, "resumen de Claude_Monet")

			Convey("and clearing the panel resets it to the prompt", func() {
				view := sess.ClearPanel(ctx)
				So(view.State, ShouldEqual, panel.StateEmpty)
				So(view.Message, ShouldEqual, locale.PanelPrompt)
			})

			Convey("and refreshing resets the panel", func() {
				_, err := sess.Refresh(ctx, "Q42934")
				So(err, ShouldBeNil)
				So(sess.Panel().State, ShouldEqual, panel.StateEmpty)
				_, err = sess.Click(ctx, handle)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("Closing a session forgets it", func() {
			So(svc.CloseSession(ctx, sess.ID()), ShouldBeNil)
			_, err := svc.Session(sess.ID())
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			So(errors.Is(svc.CloseSession(ctx, sess.ID()), service.ErrSessionNotFound), ShouldBeTrue)
		})
	})
}
