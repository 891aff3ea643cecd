package report

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/schmitt-geo406/pegel-viewer/services/api/catalog"
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
	"github.com/schmitt-geo406/pegel-viewer/services/api/selection"
)

type countingReader struct {
	calls int
	obs   []models.Observation
	err   error
}

func (r *countingReader) Query(ctx context.Context, stationID string, kind models.Kind) ([]models.Observation, error) {
	r.calls++
	return r.obs, r.err
}

func testCatalog() *catalog.Catalog {
	water := "Saale"
	return catalog.New([]models.StationRecord{
		{ID: "57001", Name: "Blankenstein", Water: &water, Easting: f64(698812), Northing: f64(5585035)},
		{ID: "41001", Name: "Gera-Langenberg", Easting: f64(722640), Northing: f64(5642620)},
	}, nil)
}

func f64(v float64) *float64 { return &v }

func observations(values ...float64) []models.Observation {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, len(values))
	for i := range values {
		obs[i] = models.Observation{StationID: "57001", Kind: models.Discharge, Time: start.Add(time.Duration(i) * 15 * time.Minute), Value: &values[i]}
	}
	return obs
}

func TestRenderEmpty(t *testing.T) {
	reader := &countingReader{}
	a := NewAdapter(reader, testCatalog(), nil)

	view, err := a.Render(context.Background(), selection.Initial())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if reader.calls != 0 {
		t.Fatalf("empty selection must not query, got %d calls", reader.calls)
	}
	if view.State != selection.StateEmpty {
		t.Errorf("state = %q", view.State)
	}
	if view.Metadata.Placeholder != NoDataSelected || view.Statistics.Placeholder != NoDataSelected {
		t.Errorf("expected placeholders, got %+v / %+v", view.Metadata, view.Statistics)
	}
	if len(view.Chart.Data) != 0 {
		t.Errorf("expected empty chart, got %d traces", len(view.Chart.Data))
	}
	if got := len(view.Map.Data[0].Lat); got != 2 {
		t.Errorf("map must show the whole catalog, got %d markers", got)
	}
}

func TestRenderSelected(t *testing.T) {
	reader := &countingReader{obs: observations(1, 2, 3, 4)}
	a := NewAdapter(reader, testCatalog(), nil)

	view, err := a.Render(context.Background(), selection.Selection{StationID: "57001", Kind: models.Discharge})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if reader.calls != 1 {
		t.Fatalf("expected exactly one query, got %d", reader.calls)
	}

	layout := view.Chart.Layout
	if layout.Title != "Time series for Blankenstein" {
		t.Errorf("title = %q", layout.Title)
	}
	if layout.XAxis.Title != "Time" || layout.YAxis.Title != "Discharge (m³/s)" {
		t.Errorf("axes = %q / %q", layout.XAxis.Title, layout.YAxis.Title)
	}

	trace := view.Chart.Data[0]
	if trace.Mode != "lines+markers" || len(trace.X) != 4 {
		t.Errorf("unexpected trace %+v", trace)
	}
	if trace.X[0] != "2024-03-01T00:00:00Z" {
		t.Errorf("x[0] = %q", trace.X[0])
	}
	for _, cd := range trace.CustomData {
		if cd[0] != "57001" {
			t.Fatalf("chart point customdata = %v", cd)
		}
	}

	if view.Metadata.Rows[0]["messstelle_nr"] != "57001" || len(view.Metadata.Columns) != 13 {
		t.Errorf("unexpected metadata %+v", view.Metadata)
	}

	want := map[string]any{"Mean": 2.5, "Max": 4.0, "Min": 1.0, "25%": 1.75, "50%": 2.5, "75%": 3.25}
	for _, row := range view.Statistics.Rows {
		name := row["Statistic"].(string)
		if v, ok := want[name]; ok && row["Value"] != v {
			t.Errorf("%s = %v, want %v", name, row["Value"], v)
		}
	}
}

func TestRenderWaterLevelAxis(t *testing.T) {
	a := NewAdapter(&countingReader{obs: observations(100)}, testCatalog(), nil)

	view, err := a.Render(context.Background(), selection.Selection{StationID: "41001", Kind: models.WaterLevel})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if view.Chart.Layout.YAxis.Title != "Water level (cm)" {
		t.Errorf("y axis = %q", view.Chart.Layout.YAxis.Title)
	}
	if view.Statistics.IsPlaceholder() {
		t.Error("one value is enough for a statistics table")
	}
}

func TestRenderInsufficientData(t *testing.T) {
	a := NewAdapter(&countingReader{obs: []models.Observation{}}, testCatalog(), nil)

	view, err := a.Render(context.Background(), selection.Selection{StationID: "57001", Kind: models.Discharge})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if view.Statistics.Placeholder != InsufficientData {
		t.Errorf("statistics = %+v", view.Statistics)
	}
	if view.Metadata.IsPlaceholder() {
		t.Error("metadata is shown even without observations")
	}
}

func TestRenderStoreFailure(t *testing.T) {
	boom := errors.New("db down")
	a := NewAdapter(&countingReader{err: boom}, testCatalog(), nil)

	if _, err := a.Render(context.Background(), selection.Selection{StationID: "57001", Kind: models.Discharge}); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestMapFigure(t *testing.T) {
	a := NewAdapter(&countingReader{}, testCatalog(), nil)

	fig := a.Map("")
	if fig.Layout.Mapbox.Style != "open-street-map" || fig.Layout.Mapbox.Zoom != DefaultZoom {
		t.Errorf("unexpected mapbox %+v", fig.Layout.Mapbox)
	}
	trace := fig.Data[0]
	if trace.Type != "scattermapbox" || trace.CustomData[1][0] != "41001" {
		t.Errorf("unexpected trace %+v", trace)
	}
	if !strings.Contains(trace.HoverTemplate, "ID: %{customdata[0]}") {
		t.Errorf("hover template = %q", trace.HoverTemplate)
	}

	focused := a.Map("41001")
	if focused.Layout.Mapbox.Zoom != FocusZoom || focused.Layout.Mapbox.Center.Lat != trace.Lat[1] {
		t.Errorf("map not centered on station: %+v", focused.Layout.Mapbox)
	}
}

func TestViewJSON(t *testing.T) {
	a := NewAdapter(&countingReader{}, testCatalog(), nil)
	view, _ := a.Render(context.Background(), selection.Initial())

	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"selection", "state", "map", "chart", "metadata", "statistics"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("view JSON lacks %q", key)
		}
	}
}
