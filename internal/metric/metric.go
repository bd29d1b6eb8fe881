// Package metric holds the pure derivation formulas shared by the normalizer
// and the aggregators. Nothing here logs or returns errors; NaN inputs are
// expected to have been filtered out by the caller.
package metric

import "math"

// DefaultCap is the ratio reported when the denominator is zero and the
// numerator positive. It marks "undefined, very high", not a real ratio.
const DefaultCap = 99

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// RatioWithCap returns num/den rounded to 2 places when den > 0, otherwise cap
// if num > 0, otherwise 0. K/D and EKIA/D both use it.
func RatioWithCap(num, den, cap float64) float64 {
	if den > 0 {
		return Round(num/den, 2)
	}
	if num > 0 {
		return cap
	}
	return 0
}

// KD is RatioWithCap with DefaultCap.
func KD(kills, deaths float64) float64 {
	return RatioWithCap(kills, deaths, DefaultCap)
}

// EKIA is kills plus assists.
func EKIA(kills, assists float64) float64 {
	return kills + assists
}

// HeadshotPercent returns headshots/kills*100 rounded to 1 place. It returns
// nil when kills is not positive or headshots is unknown; callers must keep
// that distinct from 0.
func HeadshotPercent(headshots *float64, kills float64) *float64 {
	if headshots == nil || kills <= 0 {
		return nil
	}
	v := Round(*headshots/kills*100, 1)
	return &v
}

// AccuracyPercent returns hits/shots*100 rounded to 1 place, nil when shots
// is not positive or either count is unknown.
func AccuracyPercent(hits, shots *float64) *float64 {
	if hits == nil || shots == nil || *shots <= 0 {
		return nil
	}
	v := Round(*hits / *shots * 100, 1)
	return &v
}

// Pearson returns the product-moment correlation of xs and ys. It returns 0
// when either series has zero variance or the lengths differ or n < 2.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}
	var sx, sy float64
	for i := 0; i < n; i++ {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/float64(n), sy/float64(n)

	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	r := cov / math.Sqrt(vx*vy)
	// clamp float drift
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
