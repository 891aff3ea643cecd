// Package dashboard is the application context: the station catalog, the
// per-session selections and the readers and renderers built on them. One
// Dashboard is created in main and shared by every request.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/schmitt-geo406/pegel-viewer/services/api/catalog"
	"github.com/schmitt-geo406/pegel-viewer/services/api/export"
	"github.com/schmitt-geo406/pegel-viewer/services/api/metrics"
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
	"github.com/schmitt-geo406/pegel-viewer/services/api/report"
	"github.com/schmitt-geo406/pegel-viewer/services/api/selection"
	"github.com/schmitt-geo406/pegel-viewer/services/api/series"
	"github.com/schmitt-geo406/pegel-viewer/services/api/stats"
)

// Dashboard routes UI events for all sessions to the selection registry,
// the presentation adapter and the export writer.
type Dashboard struct {
	catalog  *catalog.Catalog
	sessions *selection.Registry
	reader   *series.Reader
	adapter  *report.Adapter
	exporter *export.Writer
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
	cron     *cron.Cron
}

// Result is the outcome of one event. Only the parts named by Effect are set.
type Result struct {
	Selection selection.Selection `json:"selection"`
	Effect    selection.Effect    `json:"effect"`
	View      *report.View        `json:"view,omitempty"`
	Map       *report.Figure      `json:"map,omitempty"`
	File      *export.File        `json:"-"`
}

// New wires a dashboard over cat and store.
func New(cat *catalog.Catalog, store series.Store, m *metrics.Metrics, logger *zap.SugaredLogger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	reader := series.NewReader(store, cat, m)
	m.SetCatalog(cat.Len(), len(cat.Skipped()))

	return &Dashboard{
		catalog:  cat,
		sessions: selection.NewRegistry(),
		reader:   reader,
		adapter:  report.NewAdapter(reader, cat, logger),
		exporter: export.NewWriter(reader, m),
		metrics:  m,
		logger:   logger,
	}
}

func (d *Dashboard) Catalog() *catalog.Catalog {
	return d.catalog
}

// Dispatch applies ev to the session's selection and produces what the
// resulting effect asks for. When rendering fails the new selection is
// kept and returned together with the error.
func (d *Dashboard) Dispatch(ctx context.Context, sessionID string, ev selection.Event) (Result, error) {
	d.metrics.Event(ev.Name())
	sel, effect := d.sessions.Apply(sessionID, ev, d.catalog)
	d.metrics.SetSessions(d.sessions.Len())

	res := Result{Selection: sel, Effect: effect}
	d.logger.Debugw("event applied", "session", sessionID, "event", ev.Name(), "station", sel.StationID, "kind", sel.Kind)

	if effect.Refresh {
		view, err := d.adapter.Render(ctx, sel)
		if err != nil {
			d.logger.Errorw("render failed", "session", sessionID, "station", sel.StationID, "kind", sel.Kind, "error", err)
			return res, err
		}
		res.View = &view
	}
	if effect.Recenter != "" {
		fig := d.adapter.Map(effect.Recenter)
		res.Map = &fig
	}
	if effect.Export {
		file, err := d.exporter.Export(ctx, sel)
		if err != nil {
			d.logger.Errorw("export failed", "session", sessionID, "station", sel.StationID, "kind", sel.Kind, "error", err)
			return res, err
		}
		res.File = file
	}
	return res, nil
}

// Selection returns the session's current selection.
func (d *Dashboard) Selection(sessionID string) selection.Selection {
	return d.sessions.Current(sessionID)
}

// View renders the session's current selection.
func (d *Dashboard) View(ctx context.Context, sessionID string) (report.View, error) {
	return d.adapter.Render(ctx, d.sessions.Current(sessionID))
}

// Map is the station map without a focus station.
func (d *Dashboard) Map() report.Figure {
	return d.adapter.Map("")
}

// Reset returns the session to the initial selection.
func (d *Dashboard) Reset(sessionID string) {
	d.sessions.Reset(sessionID)
	d.metrics.SetSessions(d.sessions.Len())
}

// Series reads one station series outside any session, optionally trimmed
// to a trailing window.
func (d *Dashboard) Series(ctx context.Context, stationID string, kind models.Kind, window series.Window) ([]models.Observation, error) {
	obs, err := d.reader.Query(ctx, stationID, kind)
	if err != nil {
		return nil, err
	}
	return series.Trim(obs, window), nil
}

// Summary computes statistics for one station series outside any session.
func (d *Dashboard) Summary(ctx context.Context, stationID string, kind models.Kind, window series.Window) (stats.Summary, error) {
	obs, err := d.Series(ctx, stationID, kind, window)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(obs)
}

// ExportStation builds the CSV download for a station outside any session.
func (d *Dashboard) ExportStation(ctx context.Context, stationID string, kind models.Kind) (*export.File, error) {
	if !d.catalog.Has(stationID) {
		return nil, nil
	}
	return d.exporter.Export(ctx, selection.Selection{StationID: stationID, Kind: kind})
}

// Sweep evicts sessions idle for longer than idle.
func (d *Dashboard) Sweep(idle time.Duration) int {
	removed := d.sessions.Sweep(idle)
	d.metrics.SetSessions(d.sessions.Len())
	if removed > 0 {
		d.logger.Infow("idle sessions evicted", "removed", removed, "remaining", d.sessions.Len())
	}
	return removed
}

// StartSweeper runs Sweep on the given cron spec until StopSweeper.
func (d *Dashboard) StartSweeper(spec string, idle time.Duration) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { d.Sweep(idle) }); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", spec, err)
	}
	c.Start()
	d.cron = c
	d.logger.Infow("session sweeper scheduled", "spec", spec, "idle", idle.String())
	return nil
}

func (d *Dashboard) StopSweeper() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
	d.cron = nil
}
