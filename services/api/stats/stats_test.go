package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

func series(values ...float64) []models.Observation {
	obs := make([]models.Observation, 0, len(values))
	for _, v := range values {
		v := v
		obs = append(obs, models.Observation{StationID: "S1", Kind: models.Discharge, Value: &v})
	}
	return obs
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Expected ErrInsufficientData, got %v", err)
	}

	onlyNulls := []models.Observation{{StationID: "S1"}, {StationID: "S1"}}
	if _, err := Summarize(onlyNulls); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Expected ErrInsufficientData for null values, got %v", err)
	}
}

func TestSummarizeOneToFour(t *testing.T) {
	s, err := Summarize(series(4, 2, 1, 3))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if s.Count != 4 || s.Mean != 2.5 || s.Min != 1 || s.Max != 4 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if s.Std == nil || *s.Std != 1.291 {
		t.Errorf("Expected std 1.291, got %v", s.Std)
	}
	if s.Q25 != 1.75 || s.Q50 != 2.5 || s.Q75 != 3.25 {
		t.Errorf("Unexpected quartiles %v %v %v", s.Q25, s.Q50, s.Q75)
	}
}

func TestSummarizeRounding(t *testing.T) {
	s, err := Summarize(series(0.1234, 0.2345, 0.98765))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Max != 0.98765 || s.Min != 0.1234 {
		t.Errorf("Max/min must stay unrounded, got %v/%v", s.Max, s.Min)
	}
	if s.Mean != 0.449 {
		t.Errorf("Expected mean 0.449, got %v", s.Mean)
	}
	if s.Q50 != 0.235 {
		t.Errorf("Expected median 0.235, got %v", s.Q50)
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	s, err := Summarize(series(7.5))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Std != nil {
		t.Errorf("Expected undefined std for one value, got %v", *s.Std)
	}
	if s.Q25 != 7.5 || s.Q75 != 7.5 || s.Mean != 7.5 {
		t.Errorf("Unexpected summary %+v", s)
	}
}

func TestSummarizeSkipsNulls(t *testing.T) {
	obs := append(series(1, 3), models.Observation{StationID: "S1"})
	s, err := Summarize(obs)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Count != 2 || s.Mean != 2 {
		t.Errorf("Unexpected summary %+v", s)
	}
}

func TestPercentile(t *testing.T) {
	data := []float64{10, 20, 30, 40, 50}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{0.1, 14},
		{0.25, 20},
		{0.5, 30},
		{0.9, 46},
		{1, 50},
	}
	for _, tt := range tests {
		if got := Percentile(data, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if !math.IsNaN(Percentile(nil, 0.5)) {
		t.Error("Expected NaN for empty data")
	}
}
