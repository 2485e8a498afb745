package hikaku

// Result holds the reduced selections and comparisons of one run.
type Result[L Label[L]] struct {
	// Selections in the order they were added to the query.
	Selections []Selection[L]
	// Comparisons in the order they were requested.
	Comparisons []Comparison[L]
}

// Selection returns the selection with the given id.
func (r *Result[L]) Selection(id ID) (Selection[L], bool) {
	for _, s := range r.Selections {
		if s.ID == id {
			return s, true
		}
	}
	return Selection[L]{}, false
}

// Selection is a statistic of every benchmark in one registration, sorted
// by benchmark label.
type Selection[L Label[L]] struct {
	ID        ID
	Labels    []L
	Statistic Statistic
	Values    []StatValue[L]
}

// Comparison pairs two selections benchmark by benchmark.
type Comparison[L Label[L]] struct {
	// Header holds the benchmark labels shared by both selections.
	Header  []L
	ALabels []L
	BLabels []L
	AValues []uint64
	BValues []uint64
	// Ratios holds max/min of each value pair, rounded to one decimal.
	Ratios []float64
}
