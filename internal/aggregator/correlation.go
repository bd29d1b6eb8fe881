package aggregator

import (
	"github.com/pable/go-cod-stats/internal/metric"
	"github.com/pable/go-cod-stats/internal/model"
)

// MinCorrelationSamples is the number of co-present points a pair must
// exceed before its correlation is computed.
const MinCorrelationSamples = 5

// HeatmapMetrics are the metrics of the correlation heatmap.
var HeatmapMetrics = []string{
	model.MetricKD, model.MetricEKIAD, model.MetricSkill, model.MetricScore,
	model.MetricKills, model.MetricDeaths, model.MetricAccuracyPct,
	model.MetricHeadshotPct, model.MetricDamageDone,
}

// Cell is one entry of a correlation matrix. N is the number of records
// where both metrics were defined; R is 0 whenever N <= MinCorrelationSamples.
type Cell struct {
	X        string  `json:"x"`
	Y        string  `json:"y"`
	R        float64 `json:"r"`
	N        int     `json:"n"`
	Reliable bool    `json:"reliable"`
}

// CorrelationMatrix returns len(metrics)^2 cells in row-major order,
// including self-pairs.
func CorrelationMatrix(data []*model.CanonicalMatch, metrics []string) [][]Cell {
	out := make([][]Cell, len(metrics))
	for i, a := range metrics {
		row := make([]Cell, len(metrics))
		for j, b := range metrics {
			var xs, ys []float64
			for _, m := range data {
				x, okx := m.Metric(a)
				y, oky := m.Metric(b)
				if okx && oky {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			c := Cell{X: b, Y: a, N: len(xs)}
			if len(xs) > MinCorrelationSamples {
				c.R = metric.Pearson(xs, ys)
				c.Reliable = true
			}
			row[j] = c
		}
		out[i] = row
	}
	return out
}
