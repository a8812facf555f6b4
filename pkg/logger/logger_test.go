package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if Current() == nil {
		t.Fatal("current logger is nil after initialization")
	}
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		log := New(&buf)
		ctx := context.Background()
		So(SetLevelString("info"), ShouldBeNil)

		Convey("Info records carry fields and the caller", func() {
			log.Info(ctx, "cache stored", String("movement", "Q4692"), Int("records", 12), Bool("cached", true), Duration("took", time.Second))
			out := buf.String()
			So(out, ShouldContainSubstring, "cache stored")
			So(out, ShouldContainSubstring, "movement=Q4692")
			So(out, ShouldContainSubstring, "records=12")
			So(out, ShouldContainSubstring, "cached=true")
			So(out, ShouldContainSubstring, "source=")
		})

		Convey("Named loggers join names with dots", func() {
			log.Named("app").Named("session").Warn(ctx, "fetch failed", Error(errors.New("boom")))
			out := buf.String()
			So(out, ShouldContainSubstring, "logger=app.session")
			So(out, ShouldContainSubstring, "error=boom")
		})

		Convey("Debug is filtered at info level", func() {
			log.Debug(ctx, "hidden")
			So(buf.String(), ShouldNotContainSubstring, "hidden")
		})

		Convey("Debug is emitted once the level is lowered", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			log.Debug(ctx, "visible")
			So(buf.String(), ShouldContainSubstring, "visible")
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "warning", "error", " Error "} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	Convey("A nop logger accepts every call", t, func() {
		l := Nop()
		So(func() {
			l.Info(context.Background(), "x")
			l.Named("y").Error(context.Background(), "z")
		}, ShouldNotPanic)
	})
}
