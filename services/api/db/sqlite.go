package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	DBPath string
}

// NewSQLite opens the database at dbPath and verifies it is reachable.
func NewSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedURL)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database %s: %w", dbPath, err)
	}

	s := NewSQLiteFromDB(db)
	s.DBPath = dbPath
	return s, nil
}

// NewSQLiteFromDB wraps an already opened handle.
func NewSQLiteFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the database handle.
func (s *SQLiteStore) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListStations returns all station metadata rows in storage order.
func (s *SQLiteStore) ListStations(ctx context.Context) ([]models.StationRecord, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, listStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	stations := make([]models.StationRecord, 0)
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return stations, nil
}

// FetchObservations returns one station's series of the given kind, oldest
// first, on a connection that is released before returning.
func (s *SQLiteStore) FetchObservations(ctx context.Context, stationID string, kind models.Kind) ([]models.Observation, error) {
	query, err := observationsSQL(kind, "?")
	if err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, stationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s series for %s: %w", kind, stationID, err)
	}
	defer rows.Close()

	observations := make([]models.Observation, 0)
	for rows.Next() {
		obs, err := scanObservation(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	sortByTime(observations)
	return observations, nil
}

// EnsureSchema creates the gauge tables if they do not exist yet.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

// SaveStations upserts station metadata rows.
func (s *SQLiteStore) SaveStations(ctx context.Context, stations []models.StationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pegel_meta (messstelle_nr, Standort, Gewaesser, Einzugsgebiet_Oberirdisch, Status,
			Entfernung_Muendung, Messnetz_Kurzname, Ostwert, Nordwert, MB, MS1, MS2, MS3)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (messstelle_nr) DO UPDATE SET
			Standort = excluded.Standort,
			Gewaesser = excluded.Gewaesser,
			Einzugsgebiet_Oberirdisch = excluded.Einzugsgebiet_Oberirdisch,
			Status = excluded.Status,
			Entfernung_Muendung = excluded.Entfernung_Muendung,
			Messnetz_Kurzname = excluded.Messnetz_Kurzname,
			Ostwert = excluded.Ostwert,
			Nordwert = excluded.Nordwert,
			MB = excluded.MB,
			MS1 = excluded.MS1,
			MS2 = excluded.MS2,
			MS3 = excluded.MS3
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, st := range stations {
		if _, err := stmt.ExecContext(ctx,
			st.ID, st.Name, st.Water, st.CatchmentArea, st.Status,
			st.DistanceToMouth, st.Network, st.Easting, st.Northing,
			st.MB, st.MS1, st.MS2, st.MS3,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert station %s: %w", st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveObservations upserts series rows of one kind. Timestamps are written
// as RFC 3339 text with fractional seconds kept.
func (s *SQLiteStore) SaveObservations(ctx context.Context, kind models.Kind, observations []models.Observation) error {
	t, ok := seriesTables[kind]
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+t.table+` (messstelle_nr, zeit, `+t.value+`, `+t.min+`, `+t.max+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (messstelle_nr, zeit) DO UPDATE SET
			`+t.value+` = excluded.`+t.value+`,
			`+t.min+` = excluded.`+t.min+`,
			`+t.max+` = excluded.`+t.max)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, obs := range observations {
		if _, err := stmt.ExecContext(ctx,
			obs.StationID,
			obs.Time.UTC().Format(time.RFC3339Nano),
			obs.Value,
			obs.Min,
			obs.Max,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert %s observation for %s at %s: %w",
				kind, obs.StationID, obs.Time.Format(time.RFC3339Nano), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
