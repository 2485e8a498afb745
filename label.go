package hikaku

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// Kind is the variant of a label independent of any value it carries. Two
// labels Len(16) and Len(32) share a kind; Alc and Arr do not.
type Kind uint8

// Label is used to aggregate, filter, and sort benchmark functions.
//
// Compare must be a total order consistent with ==. AppendKey appends a
// canonical encoding of the label, stable across processes, which is hashed
// into registration and selection identities. Unequal labels must have
// unequal keys. Value returns the payload of labels such as Len(16), and a
// *NoPayloadError for kinds without one.
type Label[L any] interface {
	comparable
	fmt.Stringer
	Compare(other L) int
	Kind() Kind
	Value() (uint32, error)
	AppendKey(dst []byte) []byte
}

// NoPayloadError is returned by Label.Value for labels that carry no value.
type NoPayloadError struct {
	Label string
}

func (e *NoPayloadError) Error() string {
	return fmt.Sprintf("label '%s' carries no value", e.Label)
}

// Normalize returns a sorted copy of labels with duplicates removed.
func Normalize[L Label[L]](labels []L) []L {
	ret := slices.Clone(labels)
	slices.SortFunc(ret, compareLabels[L])
	return slices.Compact(ret)
}

// compareLabels breaks ties of Compare with the canonical key so the sort
// order, and therefore the identity hash, never depends on input order.
func compareLabels[L Label[L]](a, b L) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	return bytes.Compare(a.AppendKey(nil), b.AppendKey(nil))
}

// Merge returns the normalized union of a and b.
func Merge[L Label[L]](a, b []L) []L {
	ret := make([]L, 0, len(a)+len(b))
	ret = append(ret, a...)
	ret = append(ret, b...)
	return Normalize(ret)
}

// Except returns a copy of labels without the first label sharing l's kind.
// Useful for payload labels, e.g. removing Len(n) whatever n is.
func Except[L Label[L]](labels []L, l L) []L {
	ret := slices.Clone(labels)
	for n := range ret {
		if ret[n].Kind() == l.Kind() {
			return slices.Delete(ret, n, n+1)
		}
	}
	return ret
}

// Find returns the first label sharing l's kind.
func Find[L Label[L]](labels []L, l L) (L, bool) {
	for _, cur := range labels {
		if cur.Kind() == l.Kind() {
			return cur, true
		}
	}
	var zero L
	return zero, false
}

// Join formats labels into one string with a separator.
func Join[L Label[L]](labels []L, sep string) string {
	var b strings.Builder
	for n, l := range labels {
		if n != 0 {
			b.WriteString(sep)
		}
		b.WriteString(l.String())
	}
	return b.String()
}

// sameKind reports whether every label shares the kind of the first.
func sameKind[L Label[L]](labels []L) bool {
	if len(labels) == 0 {
		return true
	}
	for _, l := range labels[1:] {
		if l.Kind() != labels[0].Kind() {
			return false
		}
	}
	return true
}
