package hikaku

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alloc(n int) Thunk {
	return Bench(func() []uint32 { return make([]uint32, n) })
}

func registerLengths(t *testing.T, h *Harness[lbl], labels ...lbl) {
	t.Helper()
	require.NoError(t, h.Register(labels, func(r *Registration[lbl]) {
		// Inserted out of order to check sorting.
		r.Insert(Len(32), alloc(32))
		r.Insert(Len(16), alloc(16))
	}))
}

func TestRun_EndToEnd(t *testing.T) {
	h := newTestHarness()
	registerLengths(t, h, A)
	registerLengths(t, h, B)

	q := NewQuery[lbl]()
	a, b := q.Select(A), q.Select(B)
	q.Compare(a, b)

	for i := 0; i < 2; i++ {
		res, err := h.Run(context.Background(), q, 64)
		require.NoError(t, err)

		require.Len(t, res.Selections, 2)
		assert.Equal(t, a, res.Selections[0].ID)
		assert.Equal(t, []lbl{A}, res.Selections[0].Labels)
		assert.Equal(t, Median, res.Selections[0].Statistic)

		require.Len(t, res.Comparisons, 1)
		cmp := res.Comparisons[0]
		assert.Equal(t, []lbl{Len(16), Len(32)}, cmp.Header)
		assert.Equal(t, []lbl{A}, cmp.ALabels)
		assert.Equal(t, []lbl{B}, cmp.BLabels)
		require.Len(t, cmp.AValues, 2)
		require.Len(t, cmp.BValues, 2)
		require.Len(t, cmp.Ratios, 2)
		for n := range cmp.Ratios {
			assert.Equal(t, Ratio(cmp.AValues[n], cmp.BValues[n]), cmp.Ratios[n])
		}

		sel, ok := res.Selection(b)
		require.True(t, ok)
		assert.Equal(t, []lbl{B}, sel.Labels)
	}
}

func TestRun_SharedRegistrationRunsOnce(t *testing.T) {
	h := newTestHarness(WithWorkers(3))
	var invocations atomic.Int64
	counted := Bench(func() int64 { return invocations.Add(1) })
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), counted)
	}))

	q := NewQuery[lbl]()
	mdn := q.Select(A)
	for _, stat := range []Statistic{Minimum, Maximum, Average} {
		q.Compare(mdn, q.SelectStatistic(stat, A))
	}

	res, err := h.Run(context.Background(), q, 10)
	require.NoError(t, err)
	assert.Len(t, res.Selections, 4)
	assert.Len(t, res.Comparisons, 3)
	assert.Equal(t, int64(10), invocations.Load())
}

func TestRun_StatisticsFromSamples(t *testing.T) {
	h := newTestHarness(WithWorkers(1))
	next := uint64(0)
	// Overhead is subtracted from every sample, so the values are spaced
	// well above it.
	stepped := ThunkFunc(func() uint64 {
		next += 1_000_000
		return next
	})
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), stepped)
	}))

	q := NewQuery[lbl]()
	ids := map[Statistic]ID{}
	for _, stat := range []Statistic{Median, Minimum, Maximum, Average} {
		ids[stat] = q.SelectStatistic(stat, A)
	}
	res, err := h.Run(context.Background(), q, 4)
	require.NoError(t, err)

	value := func(stat Statistic) uint64 {
		sel, ok := res.Selection(ids[stat])
		require.True(t, ok)
		require.Len(t, sel.Values, 1)
		return sel.Values[0].Value
	}
	lo, hi := value(Minimum), value(Maximum)
	assert.Equal(t, uint64(3_000_000), hi-lo)
	assert.Equal(t, lo+2_000_000, value(Median))
	assert.Equal(t, lo+1_500_000, value(Average))
}

func TestRun_ZeroIterations(t *testing.T) {
	h := newTestHarness()
	registerLengths(t, h, A)
	q := NewQuery[lbl]()
	q.Select(A)

	_, err := h.Run(context.Background(), q, 0)
	assert.True(t, errors.Is(err, ErrZeroIterations))
}

func TestRun_MissingRegistration(t *testing.T) {
	h := newTestHarness()
	registerLengths(t, h, A)
	q := NewQuery[lbl]()
	q.Select(A)
	q.Select(C, B)

	res, err := h.Run(context.Background(), q, 4)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrMissingRegistration))
	assert.Contains(t, err.Error(), "'b,c'")
}

func TestRun_ResolutionErrors(t *testing.T) {
	h := newTestHarness()
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {}))
	require.NoError(t, h.Register([]lbl{B}, func(r *Registration[lbl]) {
		r.Insert(Len(1), constant(1))
		r.Insert(A, constant(1))
	}))
	require.NoError(t, h.Register([]lbl{C}, func(r *Registration[lbl]) {
		r.Insert(Len(1), constant(1))
		r.Insert(Len(1), constant(2))
	}))

	tests := map[string]struct {
		labels []lbl
		want   error
	}{
		"empty":        {labels: []lbl{A}, want: ErrEmptyBenchmarks},
		"inconsistent": {labels: []lbl{B}, want: ErrInconsistentLabels},
		"duplicate":    {labels: []lbl{C}, want: ErrInconsistentLabels},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			q := NewQuery[lbl]()
			q.Select(tc.labels...)
			_, err := h.Run(context.Background(), q, 4)
			assert.True(t, errors.Is(err, tc.want))
		})
	}
}

func TestRun_MissingSelection(t *testing.T) {
	h := newTestHarness()
	registerLengths(t, h, A)
	q := NewQuery[lbl]()
	a := q.Select(A)
	q.Compare(a, ID(42))

	_, err := h.Run(context.Background(), q, 4)
	assert.True(t, errors.Is(err, ErrMissingSelection))
	assert.Contains(t, err.Error(), ID(42).String())
}

func TestRun_ShapeErrors(t *testing.T) {
	h := newTestHarness()
	registerLengths(t, h, A)
	require.NoError(t, h.Register([]lbl{B}, func(r *Registration[lbl]) {
		r.Insert(Len(16), alloc(16))
	}))
	require.NoError(t, h.Register([]lbl{C}, func(r *Registration[lbl]) {
		r.Insert(Len(16), alloc(16))
		r.Insert(Len(64), alloc(64))
	}))

	q := NewQuery[lbl]()
	q.Compare(q.Select(A), q.Select(B))
	_, err := h.Run(context.Background(), q, 4)
	assert.True(t, errors.Is(err, ErrUnevenSelections))

	q = NewQuery[lbl]()
	q.Compare(q.Select(A), q.Select(C))
	_, err = h.Run(context.Background(), q, 4)
	assert.True(t, errors.Is(err, ErrUnequalLabels))
	assert.Contains(t, err.Error(), "idx:1")
}

func TestRun_PanickingBenchmark(t *testing.T) {
	h := newTestHarness(WithWorkers(1))
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), constant(1))
		r.Insert(Len(2), Bench(func() int { panic("boom") }))
	}))
	q := NewQuery[lbl]()
	q.Select(A)

	_, err := h.Run(context.Background(), q, 4)
	assert.True(t, errors.Is(err, ErrIncompleteResults))
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "received 1 of 2 results")
}

func TestRun_ContextDeadline(t *testing.T) {
	h := newTestHarness(WithWorkers(1), WithPinning(false))
	release := make(chan struct{})
	defer close(release)
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), Bench(func() bool { <-release; return true }))
	}))
	q := NewQuery[lbl]()
	q.Select(A)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Run(ctx, q, 1)
	assert.True(t, errors.Is(err, ErrIncompleteResults))
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
}

func TestRun_WaitsForAbandonedWorkers(t *testing.T) {
	h := newTestHarness(WithWorkers(1), WithPinning(false))
	release := make(chan struct{})
	var calls, active, peak atomic.Int64
	blocking := ThunkFunc(func() uint64 {
		if n := active.Add(1); n > peak.Load() {
			peak.Store(n)
		}
		defer active.Add(-1)
		if calls.Add(1) == 1 {
			<-release
		}
		return 0
	})
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), blocking)
	}))
	q := NewQuery[lbl]()
	q.Select(A)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Run(ctx, q, 1)
	require.True(t, errors.Is(err, ErrIncompleteResults))

	// The first worker is still inside the benchmark.
	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = h.Run(ctx, q, 1)
	assert.True(t, errors.Is(err, ErrWorkersBusy))
	assert.Equal(t, int64(1), calls.Load())

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	res, err := h.Run(context.Background(), q, 4)
	require.NoError(t, err)
	require.Len(t, res.Selections, 1)
	assert.Equal(t, int64(5), calls.Load())
	assert.Equal(t, int64(1), peak.Load())
}

func TestRun_PopulatePanics(t *testing.T) {
	h := newTestHarness()
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), constant(1))
		panic("bad setup")
	}))
	q := NewQuery[lbl]()
	q.Select(A)

	for i := 0; i < 2; i++ {
		_, err := h.Run(context.Background(), q, 4)
		assert.True(t, errors.Is(err, ErrPopulate))
		assert.Contains(t, err.Error(), "bad setup")
	}
}

func TestRun_UnknownStatistic(t *testing.T) {
	h := newTestHarness()
	var calls atomic.Int64
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), ThunkFunc(func() uint64 { calls.Add(1); return 1 }))
	}))
	q := NewQuery[lbl]()
	q.SelectStatistic(Statistic(42), A)

	_, err := h.Run(context.Background(), q, 4)
	assert.True(t, errors.Is(err, ErrUnknownStatistic))
	assert.Contains(t, err.Error(), "'a'")
	assert.Zero(t, calls.Load())
}

func TestRun_SamplesSaturateAtZero(t *testing.T) {
	h := newTestHarness(WithWorkers(1))
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), ThunkFunc(func() uint64 { return 0 }))
	}))
	q := NewQuery[lbl]()
	mdn, hi := q.Select(A), q.SelectStatistic(Maximum, A)

	res, err := h.Run(context.Background(), q, 16)
	require.NoError(t, err)
	for _, id := range []ID{mdn, hi} {
		sel, ok := res.Selection(id)
		require.True(t, ok)
		require.Len(t, sel.Values, 1)
		assert.Zero(t, sel.Values[0].Value)
	}
}

func TestRun_TimedBenchmarks(t *testing.T) {
	h := newTestHarness()
	require.NoError(t, h.Register([]lbl{A}, func(r *Registration[lbl]) {
		r.Insert(Len(1), Timed(func(tm *Timer) []uint32 {
			buf := make([]uint32, 4096)
			tm.Start()
			for i := range buf {
				buf[i] = uint32(i)
			}
			tm.Stop()
			return buf
		}))
		// Never started, so nothing is measured.
		r.Insert(Len(2), Timed(func(*Timer) int { return 1 }))
	}))
	q := NewQuery[lbl]()
	id := q.SelectStatistic(Maximum, A)

	res, err := h.Run(context.Background(), q, 8)
	require.NoError(t, err)
	sel, ok := res.Selection(id)
	require.True(t, ok)
	require.Len(t, sel.Values, 2)
	assert.Equal(t, Len(1), sel.Values[0].Label)
	assert.Positive(t, sel.Values[0].Value)
	assert.Zero(t, sel.Values[1].Value)
}

func TestRun_EmptyQuery(t *testing.T) {
	h := newTestHarness()
	res, err := h.Run(context.Background(), NewQuery[lbl](), 4)
	require.NoError(t, err)
	assert.Empty(t, res.Selections)
	assert.Empty(t, res.Comparisons)
}

func TestRun_ProgressAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	var progress []int
	h := newTestHarness(WithMetrics(m), WithProgress(func(done, total int) {
		assert.Equal(t, 4, total)
		progress = append(progress, done)
	}))
	registerLengths(t, h, A)
	registerLengths(t, h, B)
	q := NewQuery[lbl]()
	q.Compare(q.Select(A), q.Select(B))

	_, err := h.Run(context.Background(), q, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, progress)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.tasks))
	assert.Equal(t, 32.0, testutil.ToFloat64(m.samples))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("success")))

	_, err = h.Run(context.Background(), q, 0)
	require.Error(t, err)
	// Zero iterations is rejected before a run starts.
	assert.Equal(t, 0.0, testutil.ToFloat64(m.runs.WithLabelValues("failure")))
}

func TestRanges(t *testing.T) {
	tests := map[string]struct {
		workers, n int
		want       []span
	}{
		"even":          {workers: 2, n: 4, want: []span{{0, 2}, {2, 4}}},
		"remainder":     {workers: 3, n: 8, want: []span{{0, 3}, {3, 6}, {6, 8}}},
		"more workers":  {workers: 8, n: 3, want: []span{{0, 1}, {1, 2}, {2, 3}}},
		"single worker": {workers: 1, n: 5, want: []span{{0, 5}}},
		"no tasks":      {workers: 4, n: 0, want: nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ranges(tc.workers, tc.n))
		})
	}
}
