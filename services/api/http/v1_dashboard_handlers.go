package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schmitt-geo406/pegel-viewer/services/api/dashboard"
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
	"github.com/schmitt-geo406/pegel-viewer/services/api/selection"
)

type kindRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// handleDashboardView renders the session's current selection
// GET /api/v1/dashboard/view
func (s *Server) handleDashboardView(c *gin.Context) {
	ctx, cancel := s.queryContext(c)
	defer cancel()

	view, err := s.dash.View(ctx, sessionID(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     err.Error(),
			"selection": s.dash.Selection(sessionID(c)),
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleDashboardMap returns the station map
// GET /api/v1/dashboard/map
func (s *Server) handleDashboardMap(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.Map())
}

// handleMapClick selects the clicked station
// POST /api/v1/dashboard/events/map-click
func (s *Server) handleMapClick(c *gin.Context) {
	var ev selection.MapClick
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.dispatchWithView(c, ev)
}

// handleKindChange switches between discharge and water level
// POST /api/v1/dashboard/events/kind
func (s *Server) handleKindChange(c *gin.Context) {
	var req kindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.dispatchWithView(c, selection.KindChange{Kind: kind})
}

// handleChartClick re-centers the map on the station of a chart point
// POST /api/v1/dashboard/events/chart-click
func (s *Server) handleChartClick(c *gin.Context) {
	var ev selection.ChartClick
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.dash.Dispatch(c.Request.Context(), sessionID(c), ev)
	if err != nil {
		s.eventFailed(c, res, err)
		return
	}
	if res.Map == nil {
		fig := s.dash.Map()
		res.Map = &fig
	}
	c.JSON(http.StatusOK, eventResponse(res))
}

// handleDownload exports the selected series as CSV
// POST /api/v1/dashboard/events/download, GET /api/v1/dashboard/export
func (s *Server) handleDownload(c *gin.Context) {
	ctx, cancel := s.queryContext(c)
	defer cancel()

	res, err := s.dash.Dispatch(ctx, sessionID(c), selection.Download{})
	if err != nil {
		s.eventFailed(c, res, err)
		return
	}
	writeFile(c, res.File)
}

// handleResetSession returns the session to the initial selection
// DELETE /api/v1/dashboard/session
func (s *Server) handleResetSession(c *gin.Context) {
	s.dash.Reset(sessionID(c))
	sel := selection.Initial()
	c.JSON(http.StatusOK, gin.H{"selection": sel, "state": sel.State()})
}

// dispatchWithView applies ev and answers with the full view of the
// resulting selection.
func (s *Server) dispatchWithView(c *gin.Context, ev selection.Event) {
	ctx, cancel := s.queryContext(c)
	defer cancel()

	res, err := s.dash.Dispatch(ctx, sessionID(c), ev)
	if err != nil {
		s.eventFailed(c, res, err)
		return
	}
	if res.View == nil {
		view, err := s.dash.View(ctx, sessionID(c))
		if err != nil {
			s.eventFailed(c, res, err)
			return
		}
		res.View = &view
	}
	c.JSON(http.StatusOK, eventResponse(res))
}

func (s *Server) eventFailed(c *gin.Context, res dashboard.Result, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":     err.Error(),
		"selection": res.Selection,
		"state":     res.Selection.State(),
	})
}

func eventResponse(res dashboard.Result) gin.H {
	body := gin.H{
		"selection": res.Selection,
		"state":     res.Selection.State(),
		"effect":    res.Effect,
	}
	if res.View != nil {
		body["view"] = res.View
	}
	if res.Map != nil {
		body["map"] = res.Map
	}
	return body
}
