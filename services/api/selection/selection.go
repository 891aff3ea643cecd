// Package selection models what a dashboard session is looking at. A
// Selection is either empty or names one station, and always carries the
// measurement kind chosen in the dropdown. Transition is the only way it
// changes.
package selection

import (
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

const (
	StateEmpty           = "empty"
	StateStationSelected = "station_selected"
)

// Selection is the station and series kind a session is looking at. An
// empty StationID means nothing is selected.
type Selection struct {
	StationID string      `json:"station_id,omitempty"`
	Kind      models.Kind `json:"kind"`
}

// Initial is the state of a new session.
func Initial() Selection {
	return Selection{Kind: models.Discharge}
}

func (s Selection) IsEmpty() bool {
	return s.StationID == ""
}

func (s Selection) State() string {
	if s.IsEmpty() {
		return StateEmpty
	}
	return StateStationSelected
}

// Lookup is the part of the station catalog transitions need.
type Lookup interface {
	Has(id string) bool
	Nearest(lat, lon float64) (models.Station, bool)
}

// Event is a user interaction on the dashboard.
type Event interface {
	Name() string
}

// MapClick selects the clicked station marker.
type MapClick struct {
	StationID   string `json:"station_id"`
	StationName string `json:"name"`
}

// KindChange switches between discharge and water level.
type KindChange struct {
	Kind models.Kind `json:"kind"`
}

// ChartClick is a click on a point of the time-series chart. The point
// carries its station id; Lat/Lon are used when it does not.
type ChartClick struct {
	StationID string   `json:"station_id,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	X         string   `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
}

// Download asks for the CSV export of the current selection.
type Download struct{}

func (MapClick) Name() string   { return "map_click" }
func (KindChange) Name() string { return "kind_change" }
func (ChartClick) Name() string { return "chart_click" }
func (Download) Name() string   { return "download" }

// Effect tells the caller what has to be produced after a transition.
type Effect struct {
	// Refresh means chart, metadata and statistics must be rebuilt.
	Refresh bool `json:"refresh"`
	// Recenter names the station the map should be centered on.
	Recenter string `json:"recenter,omitempty"`
	// Export means a CSV file should be produced.
	Export bool `json:"export"`
}

// Transition applies ev to sel. It never touches storage.
func Transition(sel Selection, ev Event, lookup Lookup) (Selection, Effect) {
	switch e := ev.(type) {
	case MapClick:
		next := Selection{Kind: sel.Kind}
		if e.StationID != "" && lookup.Has(e.StationID) {
			next.StationID = e.StationID
		}
		return next, Effect{Refresh: true}

	case KindChange:
		if !e.Kind.Valid() || e.Kind == sel.Kind {
			return sel, Effect{}
		}
		next := Selection{StationID: sel.StationID, Kind: e.Kind}
		return next, Effect{Refresh: !next.IsEmpty()}

	case ChartClick:
		return sel, Effect{Recenter: resolveChartStation(sel, e, lookup)}

	case Download:
		return sel, Effect{Export: !sel.IsEmpty()}
	}
	return sel, Effect{}
}

func resolveChartStation(sel Selection, e ChartClick, lookup Lookup) string {
	if e.StationID != "" && lookup.Has(e.StationID) {
		return e.StationID
	}
	if e.Lat != nil && e.Lon != nil {
		if st, ok := lookup.Nearest(*e.Lat, *e.Lon); ok {
			return st.ID
		}
	}
	return sel.StationID
}
