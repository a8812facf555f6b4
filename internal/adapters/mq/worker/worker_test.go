package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/artmap/internal/adapters/mq/queue"
	worker "github.com/okian/artmap/internal/adapters/mq/worker"
	model "github.com/okian/artmap/internal/domain/model"
	logging "github.com/okian/artmap/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

type mockLoader struct {
	mu     sync.Mutex
	loaded map[model.MovementID]int
	errors map[model.MovementID]error
}

func newMockLoader() *mockLoader {
	return &mockLoader{
		loaded: make(map[model.MovementID]int),
		errors: make(map[model.MovementID]error),
	}
}

func (m *mockLoader) Load(ctx context.Context, id model.MovementID) (model.ResultSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errors[id]; ok {
		return model.ResultSet{}, err
	}
	m.loaded[id]++
	return model.ResultSet{Movement: id, Records: []model.PainterRecord{{Name: string(id)}}}, nil
}

func (m *mockLoader) setError(id model.MovementID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[id] = err
}

func (m *mockLoader) count(id model.MovementID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded[id]
}

func (m *mockLoader) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.loaded {
		n += c
	}
	return n
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func enqueue(ctx context.Context, q *queue.InMemoryQueue, raw string) model.MovementID {
	id := model.NormalizeMovementID(raw)
	if err := q.Enqueue(ctx, queue.Job{Movement: id, EnqueuedAt: time.Now()}); err != nil {
		panic(err)
	}
	return id
}

func TestInMemoryWorker(t *testing.T) {
	defer goleak.VerifyNone(t)

	convey.Convey("Given a running worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		loader := newMockLoader()
		w := worker.NewInMemoryWorker(q, loader, worker.WithName("test-worker"), worker.WithLogger(logging.Nop()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job is queued the movement is loaded", func() {
			id := enqueue(ctx, q, "Q4692")
			convey.So(waitFor(func() bool { return loader.count(id) == 1 }), convey.ShouldBeTrue)
		})

		convey.Convey("When a load fails the worker keeps going", func() {
			bad := model.NormalizeMovementID("Q1")
			loader.setError(bad, errors.New("endpoint down"))
			enqueue(ctx, q, "Q1")
			good := enqueue(ctx, q, "Q2")
			convey.So(waitFor(func() bool { return loader.count(good) == 1 }), convey.ShouldBeTrue)
			convey.So(loader.count(bad), convey.ShouldEqual, 0)
		})

		convey.Convey("When shut down it returns", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	defer goleak.VerifyNone(t)

	convey.Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		loader := newMockLoader()
		pool := worker.NewPool(3, q, loader, worker.WithPoolLogger(logging.Nop()))
		convey.So(pool.Size(), convey.ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When many jobs are queued every one is loaded once", func() {
			const jobs = 30
			for i := 0; i < jobs; i++ {
				enqueue(ctx, q, fmt.Sprintf("Q%d", 100+i))
			}
			convey.So(waitFor(func() bool { return loader.total() == jobs }), convey.ShouldBeTrue)
		})

		convey.Convey("When shut down the queue is closed", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(pool.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
			convey.So(pool.Shutdown(sctx), convey.ShouldBeNil)
		})
	})

	convey.Convey("A non-positive count picks a default size", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newMockLoader())
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
