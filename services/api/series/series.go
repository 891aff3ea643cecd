// Package series reads gauge time series for one station and kind.
package series

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickb777/period"

	"github.com/schmitt-geo406/pegel-viewer/services/api/metrics"
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

// ErrInvalidWindow is returned for a window that is not a positive ISO-8601 period.
var ErrInvalidWindow = errors.New("invalid window")

// Store fetches the raw observations of a station.
type Store interface {
	FetchObservations(ctx context.Context, stationID string, kind models.Kind) ([]models.Observation, error)
}

// Stations answers catalog membership.
type Stations interface {
	Has(id string) bool
}

// Reader re-reads a series from the store on every call.
type Reader struct {
	store    Store
	stations Stations
	metrics  *metrics.Metrics
}

// NewReader returns a Reader over store limited to catalog stations.
func NewReader(store Store, stations Stations, m *metrics.Metrics) *Reader {
	return &Reader{store: store, stations: stations, metrics: m}
}

// Query returns every observation of stationID for kind, ordered by time.
// A station the catalog does not know yields an empty result without a
// store round trip.
func (r *Reader) Query(ctx context.Context, stationID string, kind models.Kind) ([]models.Observation, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownKind, string(kind))
	}
	if stationID == "" || !r.stations.Has(stationID) {
		return []models.Observation{}, nil
	}

	r.metrics.SeriesQuery(string(kind))
	start := time.Now()
	obs, err := r.store.FetchObservations(ctx, stationID, kind)
	r.metrics.ObserveStore("fetch_observations", start)
	if err != nil {
		return nil, fmt.Errorf("query %s series for station %s: %w", kind, stationID, err)
	}
	if obs == nil {
		obs = []models.Observation{}
	}
	return obs, nil
}

// Window is a trailing time span measured back from the newest observation.
// The zero Window keeps everything.
type Window struct {
	raw  string
	back period.Period
}

func (w Window) IsZero() bool { return w.raw == "" }

func (w Window) String() string { return w.raw }

// ParseWindow parses an ISO-8601 period such as P30D or PT12H. An empty
// string yields the zero Window.
func ParseWindow(raw string) (Window, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return Window{}, nil
	}
	if strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "+") {
		return Window{}, fmt.Errorf("%w %q: must be positive", ErrInvalidWindow, raw)
	}

	p, err := period.Parse(raw)
	if err != nil {
		return Window{}, fmt.Errorf("%w %q: %v", ErrInvalidWindow, raw, err)
	}
	if p.IsZero() {
		return Window{}, fmt.Errorf("%w %q: must be positive", ErrInvalidWindow, raw)
	}

	back, err := period.Parse("-" + raw)
	if err != nil {
		return Window{}, fmt.Errorf("%w %q: %v", ErrInvalidWindow, raw, err)
	}
	return Window{raw: raw, back: back}, nil
}

// Trim keeps the observations inside w. obs must be ordered by time.
func Trim(obs []models.Observation, w Window) []models.Observation {
	if w.IsZero() || len(obs) == 0 {
		return obs
	}

	from, ok := w.back.AddTo(obs[len(obs)-1].Time)
	if !ok {
		return obs
	}

	i := sort.Search(len(obs), func(i int) bool {
		return !obs[i].Time.Before(from)
	})
	return obs[i:]
}
