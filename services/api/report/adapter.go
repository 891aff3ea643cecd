// Package report turns a selection into the figures and tables the
// dashboard shows.
package report

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
	"github.com/schmitt-geo406/pegel-viewer/services/api/selection"
	"github.com/schmitt-geo406/pegel-viewer/services/api/stats"
)

// Reader is the time-series source.
type Reader interface {
	Query(ctx context.Context, stationID string, kind models.Kind) ([]models.Observation, error)
}

// Stations is the catalog view the adapter needs.
type Stations interface {
	All() []models.Station
	Get(id string) (models.Station, bool)
	Center() (lat, lon float64)
}

// View is everything rendered for one selection.
type View struct {
	Selection  selection.Selection `json:"selection"`
	State      string              `json:"state"`
	Map        Figure              `json:"map"`
	Chart      Figure              `json:"chart"`
	Metadata   Table               `json:"metadata"`
	Statistics Table               `json:"statistics"`
}

// Adapter turns a selection into map, chart and table payloads.
type Adapter struct {
	reader   Reader
	stations Stations
	logger   *zap.SugaredLogger
}

// NewAdapter returns an Adapter reading series through reader.
func NewAdapter(reader Reader, stations Stations, logger *zap.SugaredLogger) *Adapter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Adapter{reader: reader, stations: stations, logger: logger}
}

// Map builds the station map, centered on focus when it names a catalog
// station and on the mean station position otherwise.
func (a *Adapter) Map(focus string) Figure {
	center := Center{Zoom: DefaultZoom}
	if st, ok := a.stations.Get(focus); ok && focus != "" {
		center = Center{Lat: st.Lat, Lon: st.Lon, Zoom: FocusZoom}
	} else {
		center.Lat, center.Lon = a.stations.Center()
	}
	return MapFigure(a.stations.All(), center)
}

// Render produces the view for sel with at most one series read. A store
// failure is returned to the caller and nothing is rendered.
func (a *Adapter) Render(ctx context.Context, sel selection.Selection) (View, error) {
	view := View{
		Selection:  sel,
		State:      sel.State(),
		Map:        a.Map(""),
		Chart:      EmptyChart(),
		Metadata:   Placeholder(NoDataSelected),
		Statistics: Placeholder(NoDataSelected),
	}
	if sel.IsEmpty() {
		return view, nil
	}

	station, ok := a.stations.Get(sel.StationID)
	if !ok {
		a.logger.Warnw("selected station missing from catalog", "station", sel.StationID)
		return view, nil
	}

	obs, err := a.reader.Query(ctx, station.ID, sel.Kind)
	if err != nil {
		return View{}, err
	}

	view.Chart = ChartFigure(station, sel.Kind, obs)
	view.Metadata = MetadataTable(station)

	summary, err := stats.Summarize(obs)
	switch {
	case errors.Is(err, stats.ErrInsufficientData):
		view.Statistics = Placeholder(InsufficientData)
	case err != nil:
		return View{}, err
	default:
		view.Statistics = StatsTable(summary)
	}
	return view, nil
}
