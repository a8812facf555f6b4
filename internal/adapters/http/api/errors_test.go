package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/artmap/internal/app"
)

func TestOpErrors(t *testing.T) {
	Convey("Given a cause", t, func() {
		cause := errors.New("boom")

		Convey("WrapKind matches both kind and cause", func() {
			err := WrapKind("api.refresh", ErrBadRequest, cause)
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.refresh: bad request: boom")
		})

		Convey("WrapKind keeps nil nil", func() {
			So(WrapKind("op", ErrInternal, nil), ShouldBeNil)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given service errors", t, func() {
		cases := []struct {
			err    error
			status int
		}{
			{service.ErrNoMovementSelected, http.StatusBadRequest},
			{fmt.Errorf("x: %w", service.ErrSessionNotFound), http.StatusNotFound},
			{fmt.Errorf("%w: %w", service.ErrMovementUnavailable, errors.New("eof")), http.StatusBadGateway},
			{service.ErrNotStarted, http.StatusServiceUnavailable},
			{errors.New("other"), http.StatusInternalServerError},
		}
		for _, tc := range cases {
			status, _, _ := classify(tc.err)
			So(status, ShouldEqual, tc.status)
		}
	})

	Convey("Given error statuses", t, func() {
		So(getErrorType(http.StatusBadGateway), ShouldEqual, "upstream_error")
		So(getErrorType(http.StatusNotFound), ShouldEqual, "not_found")
		So(getErrorType(http.StatusBadRequest), ShouldEqual, "client_error")
		So(getErrorSeverity(http.StatusInternalServerError), ShouldEqual, "high")
	})
}
