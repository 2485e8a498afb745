// Package render prints benchmark results for a terminal.
package render

import (
	"math"
	"math/big"
	"strconv"

	"github.com/dustin/go-humanize"
)

var denominators = []uint64{1_000_000_000, 1_000_000, 1_000, 1}
var units = []string{"Gcyc", "Mcyc", "Kcyc", "cyc"}

// FormatUint formats n with thousands separators.
func FormatUint(n uint64) string {
	if n > math.MaxInt64 {
		return humanize.BigComma(new(big.Int).SetUint64(n))
	}
	return humanize.Comma(int64(n))
}

// FormatRatio formats v rounded to one decimal place, with thousands
// separators. The decimal is dropped when it is zero or when |v| >= 10.
func FormatRatio(v float64) string {
	if math.Abs(v) >= 10 {
		return humanize.Comma(int64(v))
	}
	r := math.Round(v*10) / 10
	if r == math.Trunc(r) {
		return humanize.Comma(int64(r))
	}
	return humanize.Commaf(r)
}

// getMeasurementMetrics returns the largest cycle unit that fits at least
// once into cycles.
func getMeasurementMetrics(cycles uint64) (float64, string) {
	for i, denominator := range denominators {
		if cycles/denominator > 0 {
			return float64(denominator), units[i]
		}
	}
	return 1, units[len(units)-1]
}

// FormatCycles formats cycles scaled to a readable unit, e.g. "1.50 Kcyc".
func FormatCycles(cycles uint64) string {
	denominator, unit := getMeasurementMetrics(cycles)
	return strconv.FormatFloat(float64(cycles)/denominator, 'f', 2, 64) + " " + unit
}
