// Package catalog holds the in-memory table of gauge stations. It is loaded
// once at startup and read concurrently afterwards without locking; nothing
// mutates a Catalog after Load returns.
package catalog

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/schmitt-geo406/pegel-viewer/services/api/geo"
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

// Source provides the raw station rows.
type Source interface {
	ListStations(ctx context.Context) ([]models.StationRecord, error)
}

// Skipped records a station row left out of the catalog.
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Catalog is the read-only station table.
type Catalog struct {
	stations []models.Station
	byID     map[string]int
	skipped  []Skipped
}

// Load reads every station from src and builds the catalog. A read failure
// is returned as is; callers treat it as fatal.
func Load(ctx context.Context, src Source, logger *zap.SugaredLogger) (*Catalog, error) {
	records, err := src.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load station catalog: %w", err)
	}
	return New(records, logger), nil
}

// New builds a catalog from records in the given order. Rows without
// coordinates or with coordinates outside the projection domain, and repeated
// identifiers, are skipped and logged.
func New(records []models.StationRecord, logger *zap.SugaredLogger) *Catalog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	c := &Catalog{
		stations: make([]models.Station, 0, len(records)),
		byID:     make(map[string]int, len(records)),
	}

	for _, rec := range records {
		if _, dup := c.byID[rec.ID]; dup {
			logger.Warnw("duplicate station id, keeping first row", "station", rec.ID, "name", rec.Name)
			c.skipped = append(c.skipped, Skipped{ID: rec.ID, Reason: "duplicate id"})
			continue
		}

		if rec.Easting == nil || rec.Northing == nil {
			logger.Warnw("excluding station without coordinates", "station", rec.ID, "name", rec.Name)
			c.skipped = append(c.skipped, Skipped{ID: rec.ID, Reason: "missing coordinates"})
			continue
		}

		lat, lon, err := geo.ToLatLon(*rec.Easting, *rec.Northing)
		if err != nil {
			logger.Warnw("excluding station with invalid coordinates", "station", rec.ID, "name", rec.Name, "error", err)
			c.skipped = append(c.skipped, Skipped{ID: rec.ID, Reason: err.Error()})
			continue
		}

		c.byID[rec.ID] = len(c.stations)
		c.stations = append(c.stations, models.Station{StationRecord: rec, Lat: lat, Lon: lon})
	}

	logger.Infow("station catalog loaded", "stations", len(c.stations), "skipped", len(c.skipped))
	return c
}

// All returns a copy of every station in load order.
func (c *Catalog) All() []models.Station {
	result := make([]models.Station, len(c.stations))
	copy(result, c.stations)
	return result
}

// Get returns the station with the given id.
func (c *Catalog) Get(id string) (models.Station, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Station{}, false
	}
	return c.stations[i], true
}

// Has reports whether id is a catalog station.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len is the number of stations in the catalog.
func (c *Catalog) Len() int {
	return len(c.stations)
}

// Skipped lists the rows left out during load.
func (c *Catalog) Skipped() []Skipped {
	result := make([]Skipped, len(c.skipped))
	copy(result, c.skipped)
	return result
}

// Center is the mean position of all stations, or (0, 0) when empty.
func (c *Catalog) Center() (lat, lon float64) {
	if len(c.stations) == 0 {
		return 0, 0
	}
	for _, st := range c.stations {
		lat += st.Lat
		lon += st.Lon
	}
	n := float64(len(c.stations))
	return lat / n, lon / n
}

// Nearest returns the station closest to the given position. Distances are
// compared in projected metres when the point lies in the projection domain.
func (c *Catalog) Nearest(lat, lon float64) (models.Station, bool) {
	if len(c.stations) == 0 {
		return models.Station{}, false
	}

	e, n, projErr := geo.FromLatLon(lat, lon)

	best, bestDist := 0, math.Inf(1)
	for i, st := range c.stations {
		var d float64
		if projErr == nil {
			d = math.Hypot(*st.Easting-e, *st.Northing-n)
		} else {
			d = math.Hypot(st.Lat-lat, (st.Lon-lon)*math.Cos(lat*math.Pi/180))
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return c.stations[best], true
}
