package selection

import (
	"encoding/json"
	"testing"

	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

type fakeLookup struct {
	known   map[string]bool
	nearest string
}

func (f fakeLookup) Has(id string) bool { return f.known[id] }

func (f fakeLookup) Nearest(lat, lon float64) (models.Station, bool) {
	if f.nearest == "" {
		return models.Station{}, false
	}
	return models.Station{StationRecord: models.StationRecord{ID: f.nearest}}, true
}

var lookup = fakeLookup{known: map[string]bool{"S1": true, "S2": true}, nearest: "S2"}

func f64(v float64) *float64 { return &v }

func TestInitial(t *testing.T) {
	sel := Initial()
	if !sel.IsEmpty() || sel.Kind != models.Discharge || sel.State() != StateEmpty {
		t.Fatalf("unexpected initial selection %+v", sel)
	}
}

func TestTransitions(t *testing.T) {
	selected := Selection{StationID: "S1", Kind: models.Discharge}

	tests := []struct {
		name   string
		from   Selection
		event  Event
		want   Selection
		effect Effect
	}{
		{
			name:   "map click selects station",
			from:   Initial(),
			event:  MapClick{StationID: "S1", StationName: "Erfurt"},
			want:   selected,
			effect: Effect{Refresh: true},
		},
		{
			name:   "map click keeps chosen kind",
			from:   Selection{Kind: models.WaterLevel},
			event:  MapClick{StationID: "S2"},
			want:   Selection{StationID: "S2", Kind: models.WaterLevel},
			effect: Effect{Refresh: true},
		},
		{
			name:   "map click on unknown station empties",
			from:   selected,
			event:  MapClick{StationID: "S9"},
			want:   Selection{Kind: models.Discharge},
			effect: Effect{Refresh: true},
		},
		{
			name:   "kind change refreshes chart",
			from:   selected,
			event:  KindChange{Kind: models.WaterLevel},
			want:   Selection{StationID: "S1", Kind: models.WaterLevel},
			effect: Effect{Refresh: true},
		},
		{
			name:   "kind change while empty is remembered",
			from:   Initial(),
			event:  KindChange{Kind: models.WaterLevel},
			want:   Selection{Kind: models.WaterLevel},
			effect: Effect{},
		},
		{
			name:   "same kind is a no-op",
			from:   selected,
			event:  KindChange{Kind: models.Discharge},
			want:   selected,
			effect: Effect{},
		},
		{
			name:   "invalid kind is ignored",
			from:   selected,
			event:  KindChange{Kind: models.Kind("x")},
			want:   selected,
			effect: Effect{},
		},
		{
			name:   "chart click recenters on point station",
			from:   selected,
			event:  ChartClick{StationID: "S1", X: "2024-03-01T00:00:00Z", Y: f64(4.2)},
			want:   selected,
			effect: Effect{Recenter: "S1"},
		},
		{
			name:   "chart click without id uses nearest station",
			from:   selected,
			event:  ChartClick{Lat: f64(50.9), Lon: f64(12.1)},
			want:   selected,
			effect: Effect{Recenter: "S2"},
		},
		{
			name:   "chart click falls back to current selection",
			from:   selected,
			event:  ChartClick{StationID: "S9"},
			want:   selected,
			effect: Effect{Recenter: "S1"},
		},
		{
			name:   "download with selection exports",
			from:   selected,
			event:  Download{},
			want:   selected,
			effect: Effect{Export: true},
		},
		{
			name:   "download while empty produces nothing",
			from:   Initial(),
			event:  Download{},
			want:   Initial(),
			effect: Effect{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, effect := Transition(tt.from, tt.event, lookup)
			if got != tt.want {
				t.Errorf("selection = %+v, want %+v", got, tt.want)
			}
			if effect != tt.effect {
				t.Errorf("effect = %+v, want %+v", effect, tt.effect)
			}
		})
	}
}

func TestEventNames(t *testing.T) {
	for ev, want := range map[Event]string{
		MapClick{}:   "map_click",
		KindChange{}: "kind_change",
		ChartClick{}: "chart_click",
		Download{}:   "download",
	} {
		if ev.Name() != want {
			t.Errorf("%T.Name() = %q, want %q", ev, ev.Name(), want)
		}
	}
}

func TestMapClickDecodesMarkerPayload(t *testing.T) {
	var ev MapClick
	if err := json.Unmarshal([]byte(`{"station_id":"S1","name":"Erfurt"}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.StationID != "S1" || ev.StationName != "Erfurt" {
		t.Fatalf("decoded %+v", ev)
	}
	if ev.Name() != "map_click" {
		t.Fatalf("event name = %q", ev.Name())
	}
}
