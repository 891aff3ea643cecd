package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	m := New()

	m.SeriesQuery("q")
	m.SeriesQuery("q")
	m.SeriesQuery("w")
	if got := testutil.ToFloat64(m.seriesQueries.WithLabelValues("q")); got != 2 {
		t.Fatalf("expected 2 discharge queries, got %f", got)
	}

	m.Event("map_click")
	if got := testutil.ToFloat64(m.events.WithLabelValues("map_click")); got != 1 {
		t.Fatalf("expected 1 map click, got %f", got)
	}

	m.Export("w")
	if got := testutil.ToFloat64(m.exports.WithLabelValues("w")); got != 1 {
		t.Fatalf("expected 1 export, got %f", got)
	}

	m.SetCatalog(12, 3)
	if got := testutil.ToFloat64(m.catalogStations); got != 12 {
		t.Fatalf("expected catalog gauge 12, got %f", got)
	}
	if got := testutil.ToFloat64(m.catalogSkipped); got != 3 {
		t.Fatalf("expected skipped gauge 3, got %f", got)
	}

	m.SetSessions(4)
	if got := testutil.ToFloat64(m.activeSessions); got != 4 {
		t.Fatalf("expected sessions gauge 4, got %f", got)
	}

	m.ObserveStore("fetch_observations", time.Now())
	if samples := testutil.CollectAndCount(m.storeLatency); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 series, got %d", samples)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SeriesQuery("q")
	m.Event("kind_change")
	m.Export("q")
	m.ObserveStore("list_stations", time.Now())
	m.SetCatalog(1, 0)
	m.SetSessions(1)
	if m.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.Event("download")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `pegel_events_total{event="download"} 1`) {
		t.Fatalf("metrics output missing event counter:\n%s", body)
	}
}
