package hikaku

import "github.com/pkg/errors"

// Configuration errors are returned by the call that introduced them.
var (
	ErrEmptyLabels    = errors.New("empty labels")
	ErrZeroIterations = errors.New("zero iterations")
)

// Resolution errors abort the current run.
var (
	ErrMissingRegistration = errors.New("missing registration")
	ErrMissingSelection    = errors.New("missing selection")
	ErrEmptyBenchmarks     = errors.New("empty benchmarks")
	ErrInconsistentLabels  = errors.New("inconsistent labels")
	ErrUnknownStatistic    = errors.New("unknown statistic")
	ErrPopulate            = errors.New("populate failed")
)

// Shape errors abort the comparison, and with it the run.
var (
	ErrUnevenSelections = errors.New("uneven selection lengths")
	ErrUnequalLabels    = errors.New("unequal labels")
)

// ErrIncompleteResults is returned when fewer benchmark results reach the
// coordinator than were scheduled.
var ErrIncompleteResults = errors.New("incomplete results")

// ErrWorkersBusy is returned when workers abandoned by an earlier run are
// still executing benchmarks and the context expires before they finish.
var ErrWorkersBusy = errors.New("workers of a previous run still busy")
