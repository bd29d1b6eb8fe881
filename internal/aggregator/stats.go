// Package aggregator computes statistics over filtered match views: win/loss
// counts, means, spread, correlation, histograms, sessions and the derived
// dashboards built from them. Every function is pure and returns NaN or 0
// sentinels instead of errors.
package aggregator

import (
	"math"
	"sort"
	"strconv"

	"github.com/pable/go-cod-stats/internal/metric"
	"github.com/pable/go-cod-stats/internal/model"
)

// WinLoss counts decided matches. Unknown outcomes are in neither bucket.
type WinLoss struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Total is Wins+Losses, which may be less than the number of matches seen.
func (w WinLoss) Total() int { return w.Wins + w.Losses }

// WinRate is the percentage of decided matches won, 0 when none are decided.
func (w WinLoss) WinRate() float64 {
	if w.Total() == 0 {
		return 0
	}
	return float64(w.Wins) / float64(w.Total()) * 100
}

// WinLossCounts tallies wins and losses.
func WinLossCounts(data []*model.CanonicalMatch) WinLoss {
	var wl WinLoss
	for _, m := range data {
		switch m.Outcome {
		case model.OutcomeWin:
			wl.Wins++
		case model.OutcomeLoss:
			wl.Losses++
		}
	}
	return wl
}

// Values returns the defined values of name, in input order.
func Values(data []*model.CanonicalMatch, name string) []float64 {
	out := make([]float64, 0, len(data))
	for _, m := range data {
		if v, ok := m.Metric(name); ok {
			out = append(out, v)
		}
	}
	return out
}

// Average is the mean of name over records where it is defined. NaN when
// there are none.
func Average(data []*model.CanonicalMatch, name string) float64 {
	return Mean(Values(data, name))
}

// Mean returns the arithmetic mean, NaN for an empty slice.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// Float is a float64 that encodes NaN and infinities as JSON null, so
// sentinel aggregates survive the HTTP surface.
type Float float64

// NaN reports whether f is the "no data" sentinel.
func (f Float) NaN() bool { return math.IsNaN(float64(f)) }

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

// Spread summarizes dispersion of a series.
type Spread struct {
	N      int     `json:"n"`
	Mean   Float   `json:"mean"`
	Median Float   `json:"median"`
	StdDev float64 `json:"stdDev"`
	// CV is StdDev/Mean*100, 0 when Mean <= 0.
	CV float64 `json:"cv"`
}

// SpreadOf computes sample standard deviation (n-1) and CV. StdDev is 0 for
// fewer than two values; Mean and Median are NaN for none.
func SpreadOf(vs []float64) Spread {
	mean := Mean(vs)
	s := Spread{N: len(vs), Mean: Float(mean), Median: Float(math.NaN())}
	if len(vs) == 0 {
		return s
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	s.Median = Float(median(sorted))
	if len(vs) > 1 {
		var ss float64
		for _, v := range vs {
			d := v - mean
			ss += d * d
		}
		s.StdDev = math.Sqrt(ss / float64(len(vs)-1))
	}
	if mean > 0 {
		s.CV = s.StdDev / mean * 100
	}
	return s
}

// median returns the median of a pre-sorted (ascending) slice of float64.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram splits [0, max(values)] into count equal-width bins. The last bin
// includes max. Negative values are ignored. Returns nil when there is
// nothing to bin.
func Histogram(values []float64, count int) []Bin {
	if count <= 0 || len(values) == 0 {
		return nil
	}
	hi := math.Inf(-1)
	for _, v := range values {
		if v > hi {
			hi = v
		}
	}
	if hi <= 0 {
		hi = 1
	}
	width := hi / float64(count)
	bins := make([]Bin, count)
	for i := range bins {
		bins[i] = Bin{Lo: float64(i) * width, Hi: float64(i+1) * width}
	}
	for _, v := range values {
		if v < 0 {
			continue
		}
		i := int(v / width)
		if i >= count {
			i = count - 1
		}
		bins[i].Count++
	}
	return bins
}

func round1(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return metric.Round(v, 1)
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
