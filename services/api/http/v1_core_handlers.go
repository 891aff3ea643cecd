package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schmitt-geo406/pegel-viewer/services/api/export"
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
	"github.com/schmitt-geo406/pegel-viewer/services/api/report"
	"github.com/schmitt-geo406/pegel-viewer/services/api/series"
	"github.com/schmitt-geo406/pegel-viewer/services/api/stats"
)

// handleV1ListStations returns all catalog stations
// GET /api/v1/core/stations
func (s *Server) handleV1ListStations(c *gin.Context) {
	cat := s.dash.Catalog()
	stations := cat.All()

	c.JSON(http.StatusOK, gin.H{
		"data": stations,
		"meta": gin.H{
			"count":   len(stations),
			"skipped": cat.Skipped(),
		},
	})
}

// handleV1GetStation returns details for a specific station
// GET /api/v1/core/stations/:id
func (s *Server) handleV1GetStation(c *gin.Context) {
	station, ok := s.dash.Catalog().Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": station,
	})
}

// handleV1StationSeries returns the observations of a station
// GET /api/v1/core/stations/:id/series?kind=q&window=P30D
func (s *Server) handleV1StationSeries(c *gin.Context) {
	kind, window, ok := parseSeriesQuery(c)
	if !ok {
		return
	}

	ctx, cancel := s.queryContext(c)
	defer cancel()

	stationID := c.Param("id")
	obs, err := s.dash.Series(ctx, stationID, kind, window)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": obs,
		"meta": gin.H{
			"station_id": stationID,
			"kind":       kind,
			"unit":       kind.Unit(),
			"window":     window.String(),
			"count":      len(obs),
		},
	})
}

// handleV1StationStats returns summary statistics of a station series
// GET /api/v1/core/stations/:id/stats?kind=q&window=P30D
func (s *Server) handleV1StationStats(c *gin.Context) {
	kind, window, ok := parseSeriesQuery(c)
	if !ok {
		return
	}

	ctx, cancel := s.queryContext(c)
	defer cancel()

	stationID := c.Param("id")
	meta := gin.H{
		"station_id": stationID,
		"kind":       kind,
		"window":     window.String(),
	}

	summary, err := s.dash.Summary(ctx, stationID, kind, window)
	switch {
	case errors.Is(err, stats.ErrInsufficientData):
		c.JSON(http.StatusOK, gin.H{"data": nil, "message": report.InsufficientData, "meta": meta})
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"data": summary, "meta": meta})
	}
}

// handleV1StationExport streams a station series as CSV
// GET /api/v1/core/stations/:id/export?kind=q
func (s *Server) handleV1StationExport(c *gin.Context) {
	kind, err := models.ParseKind(c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := s.queryContext(c)
	defer cancel()

	file, err := s.dash.ExportStation(ctx, c.Param("id"), kind)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	writeFile(c, file)
}

func parseSeriesQuery(c *gin.Context) (models.Kind, series.Window, bool) {
	kind, err := models.ParseKind(c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", series.Window{}, false
	}
	window, err := series.ParseWindow(c.Query("window"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", series.Window{}, false
	}
	return kind, window, true
}

// writeFile sends f as an attachment, or 204 when there is nothing to send.
func writeFile(c *gin.Context, f *export.File) {
	if f == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	c.Data(http.StatusOK, f.ContentType, f.Data)
}
