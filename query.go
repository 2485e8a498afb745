package hikaku

import "slices"

// Query declares selections and comparisons. Building a query runs nothing;
// pass it to Harness.Run.
type Query[L Label[L]] struct {
	sels  map[ID]*selector[L]
	order []ID
	cmps  []comparisonRequest
}

type selector[L Label[L]] struct {
	id     ID
	reg    ID
	labels []L
	stat   Statistic
}

type comparisonRequest struct {
	a, b ID
}

// NewQuery returns an empty query.
func NewQuery[L Label[L]]() *Query[L] {
	return &Query[L]{sels: make(map[ID]*selector[L])}
}

// Select selects the registration with the given labels, reducing each
// benchmark to its median.
func (q *Query[L]) Select(labels ...L) ID {
	return q.SelectStatistic(Median, labels...)
}

// SelectStatistic selects the registration with the given labels, reducing
// each benchmark with stat. Selecting the same labels and statistic twice
// returns the same id and stores one selection.
func (q *Query[L]) SelectStatistic(stat Statistic, labels ...L) ID {
	normalized := Normalize(labels)
	id := selectionID(normalized, stat)
	if _, ok := q.sels[id]; !ok {
		q.sels[id] = &selector[L]{
			id:     id,
			reg:    registrationID(normalized),
			labels: normalized,
			stat:   stat,
		}
		q.order = append(q.order, id)
	}
	return id
}

// Compare requests a comparison of selections a and b. The ids are checked
// when the query runs.
func (q *Query[L]) Compare(a, b ID) {
	q.cmps = append(q.cmps, comparisonRequest{a: a, b: b})
}

// Selections returns the selection ids in the order they were first added.
func (q *Query[L]) Selections() []ID {
	return slices.Clone(q.order)
}
