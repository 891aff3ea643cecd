package series

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

type fakeStore struct {
	calls int
	obs   []models.Observation
	err   error
}

func (f *fakeStore) FetchObservations(ctx context.Context, stationID string, kind models.Kind) ([]models.Observation, error) {
	f.calls++
	return f.obs, f.err
}

type knownStations map[string]bool

func (k knownStations) Has(id string) bool { return k[id] }

func hourly(n int) []models.Observation {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, n)
	for i := range obs {
		v := float64(i)
		obs[i] = models.Observation{StationID: "S1", Kind: models.Discharge, Time: start.Add(time.Duration(i) * time.Hour), Value: &v}
	}
	return obs
}

func TestQueryUnknownStationSkipsStore(t *testing.T) {
	store := &fakeStore{obs: hourly(3)}
	r := NewReader(store, knownStations{"S1": true}, nil)

	obs, err := r.Query(context.Background(), "NOPE", models.Discharge)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if obs == nil || len(obs) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", obs)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store calls, got %d", store.calls)
	}
}

func TestQueryKnownStation(t *testing.T) {
	store := &fakeStore{obs: hourly(3)}
	r := NewReader(store, knownStations{"S1": true}, nil)

	obs, err := r.Query(context.Background(), "S1", models.Discharge)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(obs) != 3 || store.calls != 1 {
		t.Fatalf("expected 3 observations from 1 call, got %d from %d", len(obs), store.calls)
	}

	if _, err := r.Query(context.Background(), "S1", models.Discharge); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("expected a fresh read per call, got %d calls", store.calls)
	}
}

func TestQueryRejectsUnknownKind(t *testing.T) {
	store := &fakeStore{}
	r := NewReader(store, knownStations{"S1": true}, nil)

	_, err := r.Query(context.Background(), "S1", models.Kind("x; DROP TABLE pegel_q"))
	if !errors.Is(err, models.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store calls, got %d", store.calls)
	}
}

func TestQueryStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewReader(&fakeStore{err: boom}, knownStations{"S1": true}, nil)

	if _, err := r.Query(context.Background(), "S1", models.WaterLevel); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"", false},
		{"P30D", false},
		{"pt12h", false},
		{"P1M", false},
		{"30 days", true},
		{"P0D", true},
		{"-P1D", true},
	}
	for _, tt := range tests {
		_, err := ParseWindow(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWindow(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("ParseWindow(%q) error should wrap ErrInvalidWindow, got %v", tt.raw, err)
		}
	}
}

func TestTrim(t *testing.T) {
	obs := hourly(48)

	w, err := ParseWindow("PT12H")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	trimmed := Trim(obs, w)
	if len(trimmed) != 13 {
		t.Fatalf("expected 13 observations in the last 12 hours, got %d", len(trimmed))
	}
	if !trimmed[len(trimmed)-1].Time.Equal(obs[47].Time) {
		t.Fatal("trim must keep the last observation")
	}

	all, _ := ParseWindow("")
	if len(Trim(obs, all)) != 48 {
		t.Fatal("zero window must keep everything")
	}
	if len(Trim(nil, w)) != 0 {
		t.Fatal("trimming nothing must yield nothing")
	}
}
