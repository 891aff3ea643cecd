// Package stats derives descriptive statistics from a gauge series.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/schmitt-geo406/pegel-viewer/services/api/models"
)

// ErrInsufficientData is returned when a series has no usable values.
var ErrInsufficientData = errors.New("insufficient data")

// Summary holds the statistics shown under the chart. Mean, Std and the
// percentiles are rounded to three decimals, Min and Max are exact.
type Summary struct {
	Count int      `json:"count"`
	Mean  float64  `json:"mean"`
	Max   float64  `json:"max"`
	Min   float64  `json:"min"`
	Std   *float64 `json:"std"`
	Q25   float64  `json:"q25"`
	Q50   float64  `json:"q50"`
	Q75   float64  `json:"q75"`
}

// Summarize computes a Summary over the non-null primary values of obs.
// Std is nil for a single value.
func Summarize(obs []models.Observation) (Summary, error) {
	values := make([]float64, 0, len(obs))
	for _, o := range obs {
		if o.Value == nil || math.IsNaN(*o.Value) {
			continue
		}
		values = append(values, *o.Value)
	}
	return SummarizeValues(values)
}

// SummarizeValues is Summarize over plain values.
func SummarizeValues(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrInsufficientData
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		Count: len(sorted),
		Mean:  round3(stat.Mean(sorted, nil)),
		Max:   floats.Max(sorted),
		Min:   floats.Min(sorted),
		Q25:   round3(Percentile(sorted, 0.25)),
		Q50:   round3(Percentile(sorted, 0.50)),
		Q75:   round3(Percentile(sorted, 0.75)),
	}
	if len(sorted) > 1 {
		std := round3(stat.StdDev(sorted, nil))
		s.Std = &std
	}
	return s, nil
}

// Percentile returns the p-quantile (0 <= p <= 1) of sorted ascending data,
// interpolating linearly between the two nearest order statistics at rank
// (n-1)p.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
