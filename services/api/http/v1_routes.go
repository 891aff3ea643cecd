package http

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/core, /api/v1/dashboard
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	// Core endpoints - station metadata and series, no session state
	core := v1.Group("/core")
	{
		core.GET("/stations", s.handleV1ListStations)
		core.GET("/stations/:id", s.handleV1GetStation)
		core.GET("/stations/:id/series", s.handleV1StationSeries)
		core.GET("/stations/:id/stats", s.handleV1StationStats)
		core.GET("/stations/:id/export", s.handleV1StationExport)
	}

	// Dashboard endpoints - UI events against the caller's selection
	dash := v1.Group("/dashboard")
	dash.Use(s.sessionMiddleware())
	{
		dash.GET("/view", s.handleDashboardView)
		dash.GET("/map", s.handleDashboardMap)
		dash.POST("/events/map-click", s.handleMapClick)
		dash.POST("/events/kind", s.handleKindChange)
		dash.POST("/events/chart-click", s.handleChartClick)
		dash.POST("/events/download", s.handleDownload)
		dash.GET("/export", s.handleDownload)
		dash.DELETE("/session", s.handleResetSession)
	}
}
