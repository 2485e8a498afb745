package hikaku

import (
	"math"
	"slices"

	"github.com/pkg/errors"
)

// Ratio returns max(a, b) / min(a, b) rounded to one decimal place. The
// denominator is floored at one so near-zero samples cannot blow up.
func Ratio(a, b uint64) float64 {
	lo, hi := min(a, b), max(a, b)
	r := float64(hi) / float64(max(lo, 1))
	return math.Round(r*10) / 10
}

// compare validates that a and b hold the same benchmark labels, in the
// same order, and computes their ratios.
func compare[L Label[L]](a, b Selection[L]) (Comparison[L], error) {
	if len(a.Values) != len(b.Values) {
		return Comparison[L]{}, errors.Wrapf(ErrUnevenSelections, "(a len:%d, b len:%d)", len(a.Values), len(b.Values))
	}
	// Values were previously sorted by label.
	for idx := range a.Values {
		if a.Values[idx].Label != b.Values[idx].Label {
			return Comparison[L]{}, errors.Wrapf(ErrUnequalLabels, "idx:%d (a:%s, b:%s)", idx, a.Values[idx].Label, b.Values[idx].Label)
		}
	}

	cmp := Comparison[L]{
		Header:  make([]L, len(a.Values)),
		ALabels: slices.Clone(a.Labels),
		BLabels: slices.Clone(b.Labels),
		AValues: make([]uint64, len(a.Values)),
		BValues: make([]uint64, len(b.Values)),
		Ratios:  make([]float64, len(a.Values)),
	}
	for idx := range a.Values {
		cmp.Header[idx] = a.Values[idx].Label
		cmp.AValues[idx] = a.Values[idx].Value
		cmp.BValues[idx] = b.Values[idx].Value
		cmp.Ratios[idx] = Ratio(a.Values[idx].Value, b.Values[idx].Value)
	}
	return cmp, nil
}
