package hikaku

import (
	"context"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// task is one benchmark scheduled on a worker.
type task[L Label[L]] struct {
	reg   ID
	label L
	thunk Thunk
}

type resultKey[L Label[L]] struct {
	reg   ID
	label L
}

// sample is the raw result of running one task itr times.
type sample[L Label[L]] struct {
	key  resultKey[L]
	vals []uint64
}

// span is a half-open range of the task list.
type span struct {
	lo, hi int
}

// Run executes every benchmark referenced by the query itr times, reduces
// the samples with each selection's statistic and computes the requested
// comparisons. Any failure aborts the whole run.
//
// Benchmarks run in parallel, one worker per CPU. Each registration runs
// once even when several selections reference it. ctx bounds the wait for
// results; a benchmark already running is not interrupted, and the next Run
// waits for it before starting any worker.
func (h *Harness[L]) Run(ctx context.Context, q *Query[L], itr uint) (res *Result[L], err error) {
	if itr == 0 {
		return nil, errors.Wrap(ErrZeroIterations, "run")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	defer func() { h.opts.metrics.observeRun(start, err) }()
	log := h.opts.log.WithField("run", uuid.NewString())

	if err := h.drain(ctx, log); err != nil {
		return nil, err
	}
	entries, tasks, err := h.resolve(q)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"selections":    len(q.order),
		"registrations": len(entries),
		"benchmarks":    len(tasks),
		"itr":           itr,
	}).Debug("resolved query")

	raw, err := h.execute(ctx, log, tasks, itr)
	if err != nil {
		return nil, err
	}

	res = &Result[L]{
		Selections:  make([]Selection[L], 0, len(q.order)),
		Comparisons: make([]Comparison[L], 0, len(q.cmps)),
	}
	sels := make(map[ID]Selection[L], len(q.order))
	for _, id := range q.order {
		sel := reduce(q.sels[id], entries[q.sels[id].reg], raw)
		sels[id] = sel
		res.Selections = append(res.Selections, sel)
	}

	for n, c := range q.cmps {
		a, ok := sels[c.a]
		if !ok {
			return nil, errors.Wrapf(ErrMissingSelection, "comparison %d: a_sel_id %s", n, c.a)
		}
		b, ok := sels[c.b]
		if !ok {
			return nil, errors.Wrapf(ErrMissingSelection, "comparison %d: b_sel_id %s", n, c.b)
		}
		cmp, err := compare(a, b)
		if err != nil {
			return nil, errors.WithMessagef(err, "comparison %d", n)
		}
		res.Comparisons = append(res.Comparisons, cmp)
	}

	log.WithField("elapsed", time.Since(start)).Debug("run complete")
	return res, nil
}

// drain waits for the workers of the previous run. They outlive it when its
// context expired, and a benchmark must never run on two workers at once.
func (h *Harness[L]) drain(ctx context.Context, log *logrus.Entry) error {
	if h.busy == nil {
		return nil
	}
	select {
	case <-h.busy:
	default:
		log.Debug("waiting for workers of the previous run")
		select {
		case <-h.busy:
		case <-ctx.Done():
			return errors.WithMessage(errors.Wrap(ErrWorkersBusy, "run"), ctx.Err().Error())
		}
	}
	h.busy = nil
	return nil
}

// resolve populates every registration the query references and flattens
// their benchmarks into one task list. Registrations shared by several
// selections contribute their tasks once.
func (h *Harness[L]) resolve(q *Query[L]) (map[ID][]Entry[L], []task[L], error) {
	entries := make(map[ID][]Entry[L])
	var tasks []task[L]
	for _, id := range q.order {
		sel := q.sels[id]
		if !sel.stat.Valid() {
			return nil, nil, errors.Wrapf(ErrUnknownStatistic, "selection '%s' uses statistic %d", Join(sel.labels, ","), uint8(sel.stat))
		}
		if _, ok := entries[sel.reg]; ok {
			continue
		}
		reg, ok := h.regs[sel.reg]
		if !ok {
			return nil, nil, errors.Wrapf(ErrMissingRegistration, "no registration for selection '%s'", Join(sel.labels, ","))
		}
		es, err := reg.resolve()
		if err != nil {
			return nil, nil, err
		}
		seen := make(map[L]struct{}, len(es))
		for _, e := range es {
			if _, dup := seen[e.Label]; dup {
				return nil, nil, errors.Wrapf(ErrInconsistentLabels, "duplicate benchmark label '%s' in registration '%s'", e.Label, Join(reg.labels, ","))
			}
			seen[e.Label] = struct{}{}
			tasks = append(tasks, task[L]{reg: reg.id, label: e.Label, thunk: e.Thunk})
		}
		entries[sel.reg] = es
	}
	return entries, tasks, nil
}

// execute runs the tasks on a pool of workers and collects their samples.
func (h *Harness[L]) execute(ctx context.Context, log *logrus.Entry, tasks []task[L], itr uint) (map[resultKey[L]][]uint64, error) {
	raw := make(map[resultKey[L]][]uint64, len(tasks))
	if len(tasks) == 0 {
		return raw, nil
	}

	spans := ranges(h.opts.workers, len(tasks))
	cpus := h.cpus(log)
	log.WithFields(logrus.Fields{
		"workers": len(spans),
		"pinned":  len(cpus) > 0,
	}).Debug("starting workers")

	// Buffered so workers never block on a coordinator that gave up.
	results := make(chan sample[L], len(tasks))
	g := new(errgroup.Group)
	for w, s := range spans {
		w, part, cpu := w, tasks[s.lo:s.hi], -1
		if len(cpus) > 0 {
			cpu = cpus[w%len(cpus)]
		}
		g.Go(func() error {
			return h.work(log.WithField("worker", w), cpu, part, itr, results)
		})
	}
	var werr error
	done := make(chan struct{})
	h.busy = done
	go func() {
		werr = g.Wait()
		close(results)
		close(done)
	}()

	for len(raw) < len(tasks) {
		select {
		case s, ok := <-results:
			if !ok {
				// werr is written before the channel is closed.
				return nil, incomplete(len(raw), len(tasks), werr)
			}
			raw[s.key] = s.vals
			if h.opts.progress != nil {
				h.opts.progress(len(raw), len(tasks))
			}
		case <-ctx.Done():
			return nil, incomplete(len(raw), len(tasks), ctx.Err())
		}
	}
	log.WithField("results", len(raw)).Debug("collected results")
	return raw, nil
}

func incomplete(got, want int, cause error) error {
	err := errors.Wrapf(ErrIncompleteResults, "received %d of %d results", got, want)
	if cause != nil {
		err = errors.WithMessage(err, cause.Error())
	}
	return err
}

// work runs tasks on the calling goroutine, locked to one OS thread and
// optionally pinned to cpu. Every sample has the worker's timer overhead
// subtracted.
func (h *Harness[L]) work(log *logrus.Entry, cpu int, tasks []task[L], itr uint, results chan<- sample[L]) (err error) {
	runtime.LockOSThread()
	pinned := false
	defer func() {
		// A goroutine exiting while locked takes its thread with it, so a
		// pinned affinity never leaks back into the scheduler.
		if !pinned {
			runtime.UnlockOSThread()
		}
	}()
	if cpu >= 0 {
		if perr := pinThread(cpu); perr != nil {
			log.WithError(perr).WithField("cpu", cpu).Warn("failed to pin worker")
		} else {
			pinned = true
		}
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("benchmark panicked: %v", r)
			log.WithError(err).Error("worker stopped")
		}
	}()

	// Subtracting the overhead of the timestamp reads produces a more
	// accurate measurement.
	overhead := Overhead()
	h.opts.metrics.observeOverhead(overhead)
	log.WithFields(logrus.Fields{
		"overhead":   overhead,
		"benchmarks": len(tasks),
	}).Debug("worker calibrated")

	for _, t := range tasks {
		vals := make([]uint64, itr)
		// Times vary at each iteration.
		for i := range vals {
			vals[i] = sub(t.thunk.Invoke(), overhead)
		}
		results <- sample[L]{key: resultKey[L]{reg: t.reg, label: t.label}, vals: vals}
		h.opts.metrics.observeTask(len(vals))
	}
	return nil
}

// cpus returns the CPUs workers are pinned to, or nil when pinning is off
// or unsupported.
func (h *Harness[L]) cpus(log *logrus.Entry) []int {
	if !h.opts.pin {
		return nil
	}
	cpus, err := allowedCPUs()
	if err != nil {
		log.WithError(err).Warn("cannot read cpu affinity, workers are not pinned")
		return nil
	}
	return cpus
}

// ranges splits n tasks into contiguous spans of near equal size, one per
// worker. The first n%workers spans hold one extra task.
func ranges(workers, n int) []span {
	workers = min(workers, n)
	if workers < 1 {
		return nil
	}
	size, rem := n/workers, n%workers
	ret := make([]span, 0, workers)
	lo := 0
	for i := 0; i < workers; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		ret = append(ret, span{lo: lo, hi: hi})
		lo = hi
	}
	return ret
}

// reduce applies the selection's statistic to each benchmark of its
// registration and sorts the values by benchmark label.
func reduce[L Label[L]](sel *selector[L], entries []Entry[L], raw map[resultKey[L]][]uint64) Selection[L] {
	vals := make([]StatValue[L], 0, len(entries))
	for _, e := range entries {
		samples := raw[resultKey[L]{reg: e.Registration, label: e.Label}]
		vals = append(vals, StatValue[L]{Label: e.Label, Value: sel.stat.Apply(samples)})
	}
	slices.SortFunc(vals, func(a, b StatValue[L]) int {
		return compareLabels(a.Label, b.Label)
	})
	return Selection[L]{
		ID:        sel.id,
		Labels:    slices.Clone(sel.labels),
		Statistic: sel.stat,
		Values:    vals,
	}
}
