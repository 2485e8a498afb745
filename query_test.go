package hikaku

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_SelectDeduplicates(t *testing.T) {
	q := NewQuery[lbl]()
	first := q.Select(A, B)
	second := q.Select(B, A, A)

	assert.Equal(t, first, second)
	assert.Equal(t, []ID{first}, q.Selections())
	assert.Equal(t, first, q.SelectStatistic(Median, A, B))
}

func TestQuery_StatisticsAreDistinct(t *testing.T) {
	q := NewQuery[lbl]()
	mdn := q.Select(A)
	avg := q.SelectStatistic(Average, A)

	assert.NotEqual(t, mdn, avg)
	assert.Equal(t, []ID{mdn, avg}, q.Selections())
	assert.Equal(t, q.sels[mdn].reg, q.sels[avg].reg)
}

func TestQuery_CompareKeepsDuplicates(t *testing.T) {
	q := NewQuery[lbl]()
	a, b := q.Select(A), q.Select(B)
	q.Compare(a, b)
	q.Compare(a, b)
	q.Compare(b, a)

	assert.Equal(t, []comparisonRequest{{a, b}, {a, b}, {b, a}}, q.cmps)
}

func TestQuery_CompareUnknownIDs(t *testing.T) {
	q := NewQuery[lbl]()
	q.Compare(ID(1), ID(2))

	assert.Len(t, q.cmps, 1)
	assert.Empty(t, q.Selections())
}
