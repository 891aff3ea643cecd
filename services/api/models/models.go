package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownKind is returned for measurement kinds outside the closed set.
var ErrUnknownKind = errors.New("unknown measurement kind")

// Kind selects one of the two gauge series kept per station.
type Kind string

const (
	Discharge  Kind = "q"
	WaterLevel Kind = "w"
)

// Kinds lists every valid measurement kind.
var Kinds = []Kind{Discharge, WaterLevel}

// ParseKind validates raw input against the closed set of kinds.
// The empty string maps to Discharge, the dashboard default.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "q":
		return Discharge, nil
	case "w":
		return WaterLevel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	return k == Discharge || k == WaterLevel
}

// Label is the human readable name of the kind.
func (k Kind) Label() string {
	switch k {
	case Discharge:
		return "Discharge"
	case WaterLevel:
		return "Water level"
	default:
		return string(k)
	}
}

// Unit is the unit the primary value is recorded in.
func (k Kind) Unit() string {
	switch k {
	case Discharge:
		return "m³/s"
	case WaterLevel:
		return "cm"
	default:
		return ""
	}
}

// AxisTitle is the y-axis label used for charts of this kind.
func (k Kind) AxisTitle() string {
	return fmt.Sprintf("%s (%s)", k.Label(), k.Unit())
}

// StationRecord is a pegel_meta row as stored; coordinates are projected
// (ETRS89 / UTM zone 32N).
type StationRecord struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Water           *string  `json:"water,omitempty"`
	CatchmentArea   *float64 `json:"catchment_area_km2,omitempty"`
	Status          *int64   `json:"status,omitempty"`
	DistanceToMouth *float64 `json:"distance_to_mouth_km,omitempty"`
	Network         *string  `json:"network,omitempty"`
	Easting         *float64 `json:"easting"`
	Northing        *float64 `json:"northing"`
	MB              *int64   `json:"mb,omitempty"`
	MS1             *int64   `json:"ms1,omitempty"`
	MS2             *int64   `json:"ms2,omitempty"`
	MS3             *int64   `json:"ms3,omitempty"`
}

// Station is a catalog entry: the stored record plus geographic
// coordinates derived from Easting/Northing.
type Station struct {
	StationRecord
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Observation is one sample of a station's discharge or water level series.
type Observation struct {
	StationID string    `json:"station_id"`
	Kind      Kind      `json:"kind"`
	Time      time.Time `json:"ts"`
	Value     *float64  `json:"value"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
}
