package hikaku

import (
	"math/bits"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Statistic selects a single value from raw benchmark samples.
type Statistic uint8

const (
	// Median is the value at index len/2 of the sorted samples. For an even
	// number of samples this is the upper of the two middle values; the two
	// are never averaged.
	Median Statistic = iota
	// Minimum is the smallest sample.
	Minimum
	// Maximum is the largest sample.
	Maximum
	// Average is the integer mean, truncated.
	Average
)

func (s Statistic) String() string {
	switch s {
	case Median:
		return "median"
	case Minimum:
		return "min"
	case Maximum:
		return "max"
	case Average:
		return "avg"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined statistics.
func (s Statistic) Valid() bool {
	return s <= Average
}

// ParseStatistic returns the statistic named s, as printed by String.
func ParseStatistic(s string) (Statistic, error) {
	switch strings.ToLower(s) {
	case "median", "mdn":
		return Median, nil
	case "min", "minimum":
		return Minimum, nil
	case "max", "maximum":
		return Maximum, nil
	case "avg", "average", "mean":
		return Average, nil
	}
	return Median, errors.Errorf("unknown statistic '%s'", s)
}

// Apply reduces samples to one value. samples must not be empty and is not
// modified. Apply panics if s is not Valid; Run rejects such selections
// before any benchmark executes.
func (s Statistic) Apply(samples []uint64) uint64 {
	switch s {
	case Median:
		return median(samples)
	case Minimum:
		return slices.Min(samples)
	case Maximum:
		return slices.Max(samples)
	case Average:
		return mean(samples)
	}
	panic(errors.Wrapf(ErrUnknownStatistic, "statistic %d", uint8(s)))
}

// StatValue is a statistic computed from one benchmark's samples.
type StatValue[L Label[L]] struct {
	Label L
	Value uint64
}

func median(samples []uint64) uint64 {
	vals := slices.Clone(samples)
	return selectNth(vals, len(vals)/2)
}

// mean sums into 128 bits so large cycle counts cannot overflow.
func mean(samples []uint64) uint64 {
	var hi, lo, carry uint64
	for _, v := range samples {
		lo, carry = bits.Add64(lo, v, 0)
		hi += carry
	}
	n := uint64(len(samples))
	// hi < n always holds since each sample is below 2^64.
	q, _ := bits.Div64(hi, lo, n)
	return q
}

// selectNth partially sorts vals so vals[n] holds the value it would have
// after a full sort, and returns it.
func selectNth(vals []uint64, n int) uint64 {
	lo, hi := 0, len(vals)-1
	for lo < hi {
		lt, gt := partition(vals, lo, hi)
		switch {
		case n < lt:
			hi = lt - 1
		case n > gt:
			lo = gt + 1
		default:
			return vals[n]
		}
	}
	return vals[n]
}

// partition splits vals[lo:hi+1] around the median of three into values
// below, equal to and above the pivot. It returns the bounds of the equal
// band, so runs of duplicates are settled in one pass.
func partition(vals []uint64, lo, hi int) (lt, gt int) {
	mid := lo + (hi-lo)/2
	if vals[mid] < vals[lo] {
		vals[mid], vals[lo] = vals[lo], vals[mid]
	}
	if vals[hi] < vals[lo] {
		vals[hi], vals[lo] = vals[lo], vals[hi]
	}
	if vals[hi] < vals[mid] {
		vals[mid], vals[hi] = vals[hi], vals[mid]
	}
	pivot := vals[mid]
	lt, gt = lo, hi
	for i := lo; i <= gt; {
		switch {
		case vals[i] < pivot:
			vals[lt], vals[i] = vals[i], vals[lt]
			lt++
			i++
		case vals[i] > pivot:
			vals[gt], vals[i] = vals[i], vals[gt]
			gt--
		default:
			i++
		}
	}
	return lt, gt
}
