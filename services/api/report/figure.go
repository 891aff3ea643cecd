package report

import (
	"fmt"
	"time"

	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

const (
	DefaultZoom = 5
	FocusZoom   = 9

	mapStyle      = "open-street-map"
	hoverTemplate = "Standort: %{hovertext}<br>lat: %{lat}<br>lon: %{lon}<br>ID: %{customdata[0]}<extra></extra>"
)

// Figure is a plotly-compatible figure description.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type          string     `json:"type"`
	Mode          string     `json:"mode,omitempty"`
	Name          string     `json:"name,omitempty"`
	X             []string   `json:"x,omitempty"`
	Y             []*float64 `json:"y,omitempty"`
	Lat           []float64  `json:"lat,omitempty"`
	Lon           []float64  `json:"lon,omitempty"`
	HoverText     []string   `json:"hovertext,omitempty"`
	HoverTemplate string     `json:"hovertemplate,omitempty"`
	CustomData    [][]string `json:"customdata,omitempty"`
}

type Layout struct {
	Title  string  `json:"title,omitempty"`
	XAxis  *Axis   `json:"xaxis,omitempty"`
	YAxis  *Axis   `json:"yaxis,omitempty"`
	Mapbox *Mapbox `json:"mapbox,omitempty"`
}

type Axis struct {
	Title string `json:"title"`
}

type Mapbox struct {
	Style  string  `json:"style"`
	Zoom   float64 `json:"zoom"`
	Center Center  `json:"center"`
}

// Center is a map viewport.
type Center struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom float64 `json:"-"`
}

// MapFigure places every station on an OpenStreetMap base layer. Each
// marker carries its station id as customdata.
func MapFigure(stations []models.Station, center Center) Figure {
	trace := Trace{
		Type:          "scattermapbox",
		Mode:          "markers",
		Lat:           make([]float64, 0, len(stations)),
		Lon:           make([]float64, 0, len(stations)),
		HoverText:     make([]string, 0, len(stations)),
		HoverTemplate: hoverTemplate,
		CustomData:    make([][]string, 0, len(stations)),
	}
	for _, st := range stations {
		trace.Lat = append(trace.Lat, st.Lat)
		trace.Lon = append(trace.Lon, st.Lon)
		trace.HoverText = append(trace.HoverText, st.Name)
		trace.CustomData = append(trace.CustomData, []string{st.ID})
	}

	zoom := center.Zoom
	if zoom == 0 {
		zoom = DefaultZoom
	}
	return Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Mapbox: &Mapbox{Style: mapStyle, Zoom: zoom, Center: center},
		},
	}
}

// ChartFigure draws the primary values of obs over time.
func ChartFigure(station models.Station, kind models.Kind, obs []models.Observation) Figure {
	trace := Trace{
		Type:       "scatter",
		Mode:       "lines+markers",
		Name:       station.Name,
		X:          make([]string, 0, len(obs)),
		Y:          make([]*float64, 0, len(obs)),
		CustomData: make([][]string, 0, len(obs)),
	}
	for _, o := range obs {
		trace.X = append(trace.X, o.Time.UTC().Format(time.RFC3339Nano))
		trace.Y = append(trace.Y, o.Value)
		trace.CustomData = append(trace.CustomData, []string{station.ID})
	}

	return Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Title: fmt.Sprintf("Time series for %s", station.Name),
			XAxis: &Axis{Title: "Time"},
			YAxis: &Axis{Title: kind.AxisTitle()},
		},
	}
}

// EmptyChart is shown while nothing is selected.
func EmptyChart() Figure {
	return Figure{Data: []Trace{}}
}
