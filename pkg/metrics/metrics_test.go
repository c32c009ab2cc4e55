package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"git.lost.host/meutraa/tapbeat/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func scrape(m interface{ Handler() http.Handler }) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}

func TestMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Recorded taps appear on the handler", func() {
			metrics.RecordTap("perfect", 0.01)
			metrics.RecordGridLock(128)
			body := scrape(handlerFunc(metrics.Handler))
			So(body, ShouldContainSubstring, "tapbeat_engine_taps_total")
			So(body, ShouldContainSubstring, "tapbeat_engine_grid_bpm 128")
		})

		Convey("The handler exposes the text format", func() {
			metrics.RecordCorrection("mic", metrics.OutcomeDropped)
			rec := httptest.NewRecorder()
			metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			So(rec.Code, ShouldEqual, 200)
			So(rec.Body.String(), ShouldContainSubstring, `outcome="dropped"`)
		})
	})

	Convey("A manager with its own namespace and buckets is independent", t, func() {
		m := metrics.NewManager(metrics.WithNamespace("other"), metrics.WithErrorBuckets([]float64{0.02, 0.1}))
		metrics.RecordTap("good", 0.05)
		body := scrape(m)
		So(body, ShouldContainSubstring, `other_engine_tap_error_seconds_bucket{le="0.1"} 0`)
		So(body, ShouldNotContainSubstring, "tapbeat_")
	})

	Convey("Init replaces the global manager", t, func() {
		metrics.Init(metrics.WithNamespace("replaced"), metrics.WithErrorBuckets([]float64{0.045, 0.09, 0.15}))
		defer metrics.Init()

		metrics.RecordTap("good", 0.06)
		body := scrape(handlerFunc(metrics.Handler))
		So(body, ShouldContainSubstring, `replaced_engine_tap_error_seconds_bucket{le="0.045"} 0`)
		So(body, ShouldContainSubstring, `replaced_engine_tap_error_seconds_bucket{le="0.09"} 1`)
	})
}

type handlerFunc func() http.Handler

func (f handlerFunc) Handler() http.Handler { return f() }
