package scape

import "math"

// Scale is a staircase over score: every scoreInterval points move the
// value one step from lo toward hi, or from hi toward lo when reverse is
// set. The result always stays in [lo, hi].
func Scale(hi, lo, step float64, score uint64, scoreInterval float64, reverse bool) float64 {
	buckets := 0.0
	if scoreInterval > 0 {
		buckets = math.Floor(float64(score) / scoreInterval)
	}
	var v float64
	if reverse {
		v = hi - step*buckets
	} else {
		v = lo + step*buckets
	}
	return math.Min(math.Max(v, lo), hi)
}
