package report

import (
	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
	"github.com/schmitt-geo406/pegel-viewer/services/api/stats"
)

const (
	NoDataSelected   = "No data selected"
	InsufficientData = "Insufficient data"
)

type Column struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Table is either a set of rows or a placeholder message.
type Table struct {
	Columns     []Column         `json:"columns,omitempty"`
	Rows        []map[string]any `json:"rows,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
}

func (t Table) IsPlaceholder() bool {
	return t.Placeholder != ""
}

func Placeholder(msg string) Table {
	return Table{Placeholder: msg}
}

var metadataColumns = []string{
	"messstelle_nr", "Standort", "Gewaesser", "Einzugsgebiet_Oberirdisch",
	"Status", "Entfernung_Muendung", "Messnetz_Kurzname", "Ostwert",
	"Nordwert", "MB", "MS1", "MS2", "MS3",
}

// MetadataTable renders the stored record of a station under its storage
// column names.
func MetadataTable(st models.Station) Table {
	row := map[string]any{
		"messstelle_nr":             st.ID,
		"Standort":                  st.Name,
		"Gewaesser":                 st.Water,
		"Einzugsgebiet_Oberirdisch": st.CatchmentArea,
		"Status":                    st.Status,
		"Entfernung_Muendung":       st.DistanceToMouth,
		"Messnetz_Kurzname":         st.Network,
		"Ostwert":                   st.Easting,
		"Nordwert":                  st.Northing,
		"MB":                        st.MB,
		"MS1":                       st.MS1,
		"MS2":                       st.MS2,
		"MS3":                       st.MS3,
	}

	cols := make([]Column, len(metadataColumns))
	for i, name := range metadataColumns {
		cols[i] = Column{ID: name, Name: name}
	}
	return Table{Columns: cols, Rows: []map[string]any{row}}
}

// StatsTable renders a Summary as Statistic/Value rows.
func StatsTable(s stats.Summary) Table {
	var std any
	if s.Std != nil {
		std = *s.Std
	}

	rows := []map[string]any{
		{"Statistic": "Mean", "Value": s.Mean},
		{"Statistic": "Max", "Value": s.Max},
		{"Statistic": "Min", "Value": s.Min},
		{"Statistic": "Std", "Value": std},
		{"Statistic": "25%", "Value": s.Q25},
		{"Statistic": "50%", "Value": s.Q50},
		{"Statistic": "75%", "Value": s.Q75},
	}
	return Table{
		Columns: []Column{{ID: "Statistic", Name: "Statistic"}, {ID: "Value", Name: "Value"}},
		Rows:    rows,
	}
}
