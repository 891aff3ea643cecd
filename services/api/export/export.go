// Package export serializes a selected series as CSV.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/schmitt-geo406/pegel-viewer/services/api/metrics"
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
	"github.com/schmitt-geo406/pegel-viewer/services/api/selection"
)

const ContentType = "text/csv"

// Reader is the time-series source.
type Reader interface {
	Query(ctx context.Context, stationID string, kind models.Kind) ([]models.Observation, error)
}

// File is a finished CSV download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Rows        int
}

type dischargeRow struct {
	StationID string   `csv:"messstelle_nr"`
	Time      string   `csv:"zeit"`
	Value     *float64 `csv:"q,omitempty"`
	Min       *float64 `csv:"q_min,omitempty"`
	Max       *float64 `csv:"q_max,omitempty"`
}

type waterLevelRow struct {
	StationID string   `csv:"messstelle_nr"`
	Time      string   `csv:"zeit"`
	Value     *float64 `csv:"w,omitempty"`
	Min       *float64 `csv:"w_min,omitempty"`
	Max       *float64 `csv:"w_max,omitempty"`
}

// Writer builds CSV downloads from freshly read series.
type Writer struct {
	reader  Reader
	metrics *metrics.Metrics
}

// NewWriter returns a Writer reading through reader.
func NewWriter(reader Reader, m *metrics.Metrics) *Writer {
	return &Writer{reader: reader, metrics: m}
}

// FileName is the download name for a station series.
func FileName(stationID string, kind models.Kind) string {
	return fmt.Sprintf("%s_%s.csv", stationID, kind)
}

// Export re-reads every row of the selected series and encodes it. An
// empty selection produces no file and no error.
func (w *Writer) Export(ctx context.Context, sel selection.Selection) (*File, error) {
	if sel.IsEmpty() {
		return nil, nil
	}

	obs, err := w.reader.Query(ctx, sel.StationID, sel.Kind)
	if err != nil {
		return nil, err
	}

	data, err := Encode(sel.Kind, obs)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", FileName(sel.StationID, sel.Kind), err)
	}

	w.metrics.Export(string(sel.Kind))
	return &File{
		Name:        FileName(sel.StationID, sel.Kind),
		ContentType: ContentType,
		Data:        data,
		Rows:        len(obs),
	}, nil
}

// Encode writes obs with the column layout of kind.
func Encode(kind models.Kind, obs []models.Observation) ([]byte, error) {
	switch kind {
	case models.Discharge:
		rows := make([]dischargeRow, len(obs))
		for i, o := range obs {
			rows[i] = dischargeRow{o.StationID, formatTime(o.Time), o.Value, o.Min, o.Max}
		}
		return gocsv.MarshalBytes(&rows)
	case models.WaterLevel:
		rows := make([]waterLevelRow, len(obs))
		for i, o := range obs {
			rows[i] = waterLevelRow{o.StationID, formatTime(o.Time), o.Value, o.Min, o.Max}
		}
		return gocsv.MarshalBytes(&rows)
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownKind, string(kind))
}

// Parse reads a file produced by Encode back into observations.
func Parse(data []byte, kind models.Kind) ([]models.Observation, error) {
	var obs []models.Observation
	add := func(id, ts string, value, min, max *float64) error {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return fmt.Errorf("row %d: %w", len(obs)+1, err)
		}
		obs = append(obs, models.Observation{
			StationID: id,
			Kind:      kind,
			Time:      t,
			Value:     value,
			Min:       min,
			Max:       max,
		})
		return nil
	}

	switch kind {
	case models.Discharge:
		var rows []dischargeRow
		if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		for _, r := range rows {
			if err := add(r.StationID, r.Time, r.Value, r.Min, r.Max); err != nil {
				return nil, err
			}
		}
	case models.WaterLevel:
		var rows []waterLevelRow
		if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		for _, r := range rows {
			if err := add(r.StationID, r.Time, r.Value, r.Min, r.Max); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownKind, string(kind))
	}
	return obs, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
