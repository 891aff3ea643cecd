package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

// ErrUnsupportedURL is returned by Open for DATABASE_URL values it cannot map
// to a driver.
var ErrUnsupportedURL = errors.New("unsupported database url")

// Store is the read side of the gauge database shared by the catalog loader,
// the time-series reader and the export writer.
type Store interface {
	ListStations(ctx context.Context) ([]models.StationRecord, error)
	FetchObservations(ctx context.Context, stationID string, kind models.Kind) ([]models.Observation, error)
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// Open picks a Store implementation from the URL scheme: postgres:// and
// postgresql:// use pgx, sqlite://, file: and *.db / *.sqlite paths use
// go-sqlite3.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return NewPostgres(ctx, u)
	case strings.HasPrefix(u, "sqlite://"):
		return NewSQLite(ctx, strings.TrimPrefix(u, "sqlite://"))
	case strings.HasPrefix(u, "file:"), strings.HasSuffix(u, ".db"), strings.HasSuffix(u, ".sqlite"):
		return NewSQLite(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, u)
	}
}

// listStationsSQL reads pegel_meta in storage order. Casts keep the scan
// targets identical across SQLite's loose typing and Postgres.
const listStationsSQL = `
    SELECT CAST(messstelle_nr AS TEXT),
           COALESCE(Standort, ''),
           Gewaesser,
           CAST(Einzugsgebiet_Oberirdisch AS DOUBLE PRECISION),
           CAST(Status AS BIGINT),
           CAST(Entfernung_Muendung AS DOUBLE PRECISION),
           Messnetz_Kurzname,
           CAST(Ostwert AS DOUBLE PRECISION),
           CAST(Nordwert AS DOUBLE PRECISION),
           CAST(MB AS BIGINT),
           CAST(MS1 AS BIGINT),
           CAST(MS2 AS BIGINT),
           CAST(MS3 AS BIGINT)
    FROM pegel_meta
`

type scanner interface {
	Scan(dest ...any) error
}

func scanStation(row scanner) (models.StationRecord, error) {
	var st models.StationRecord
	err := row.Scan(
		&st.ID,
		&st.Name,
		&st.Water,
		&st.CatchmentArea,
		&st.Status,
		&st.DistanceToMouth,
		&st.Network,
		&st.Easting,
		&st.Northing,
		&st.MB,
		&st.MS1,
		&st.MS2,
		&st.MS3,
	)
	return st, err
}

// seriesTable names the table and columns holding one kind. Query text is
// only ever assembled from these constants, never from request input.
type seriesTable struct {
	table, value, min, max string
}

var seriesTables = map[models.Kind]seriesTable{
	models.Discharge:  {table: "pegel_q", value: "q", min: "q_min", max: "q_max"},
	models.WaterLevel: {table: "pegel_w", value: "w", min: "w_min", max: "w_max"},
}

// observationsSQL returns the series query for kind using placeholder for the
// station id parameter ("?" for SQLite, "$1" for Postgres).
func observationsSQL(kind models.Kind, placeholder string) (string, error) {
	t, ok := seriesTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
	}
	return `
    SELECT CAST(messstelle_nr AS TEXT),
           CAST(zeit AS TEXT),
           CAST(` + t.value + ` AS DOUBLE PRECISION),
           CAST(` + t.min + ` AS DOUBLE PRECISION),
           CAST(` + t.max + ` AS DOUBLE PRECISION)
    FROM ` + t.table + `
    WHERE CAST(messstelle_nr AS TEXT) = ` + placeholder + `
    ORDER BY zeit`, nil
}

func scanObservation(row scanner, kind models.Kind) (models.Observation, error) {
	var (
		obs models.Observation
		ts  string
	)
	if err := row.Scan(&obs.StationID, &ts, &obs.Value, &obs.Min, &obs.Max); err != nil {
		return obs, err
	}
	t, err := ParseTimestamp(ts)
	if err != nil {
		return obs, err
	}
	obs.Kind = kind
	obs.Time = t
	return obs, nil
}

// sortByTime orders a series ascending. Stable so rows sharing a timestamp
// keep storage order.
func sortByTime(obs []models.Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Time.Before(obs[j].Time)
	})
}

// timestampLayouts are tried in order when parsing zeit values. Text-typed
// columns hold whatever the loader wrote, Postgres timestamptz renders with a
// short zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02",
	"02.01.2006",
}

// ParseTimestamp parses a stored zeit value. Values without a zone are taken
// as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", raw)
}

// schemaStatements mirror the tables written by the ingestion job.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pegel_meta (
        messstelle_nr TEXT PRIMARY KEY,
        Standort TEXT,
        Gewaesser TEXT,
        Einzugsgebiet_Oberirdisch REAL,
        Status INTEGER,
        Entfernung_Muendung REAL,
        Messnetz_Kurzname TEXT,
        Ostwert REAL,
        Nordwert REAL,
        MB INTEGER,
        MS1 INTEGER,
        MS2 INTEGER,
        MS3 INTEGER
    )`,
	`CREATE TABLE IF NOT EXISTS pegel_q (
        messstelle_nr TEXT NOT NULL,
        zeit TEXT NOT NULL,
        q REAL,
        q_min REAL,
        q_max REAL,
        UNIQUE (messstelle_nr, zeit)
    )`,
	`CREATE TABLE IF NOT EXISTS pegel_w (
        messstelle_nr TEXT NOT NULL,
        zeit TEXT NOT NULL,
        w INTEGER,
        w_min INTEGER,
        w_max INTEGER,
        UNIQUE (messstelle_nr, zeit)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_pegel_q_station ON pegel_q (messstelle_nr)`,
	`CREATE INDEX IF NOT EXISTS idx_pegel_w_station ON pegel_w (messstelle_nr)`,
}
