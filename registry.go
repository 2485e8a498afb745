package hikaku

import (
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Harness owns the registered benchmarks and runs queries against them.
// Registrations are expected to be made once at startup; runs are
// serialized.
type Harness[L Label[L]] struct {
	opts options

	mu    sync.Mutex
	regs  map[ID]*Registration[L]
	order []ID
	errs  *multierror.Error
	// busy is closed once every worker of the last run has returned.
	busy chan struct{}
}

// New returns an empty harness.
func New[L Label[L]](opts ...Option) *Harness[L] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Harness[L]{
		opts: o,
		regs: make(map[ID]*Registration[L]),
	}
}

// Register adds a group of benchmarks identified by labels. populate is
// called once, the first time a run resolves the group, and adds benchmarks
// with Registration.Insert. populate runs while Run holds the harness, so it
// must not call back into it.
//
// The first registration of a label set wins; later ones are ignored. An
// empty label set is rejected with ErrEmptyLabels, which is also kept in
// Err, and the harness stays usable.
func (h *Harness[L]) Register(labels []L, populate func(*Registration[L])) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(labels) == 0 {
		err := errors.Wrap(ErrEmptyLabels, "register")
		h.errs = multierror.Append(h.errs, err)
		h.opts.log.WithError(err).Warn("skipping registration")
		return err
	}

	reg := newRegistration(labels, populate)
	if _, ok := h.regs[reg.id]; ok {
		h.opts.log.WithFields(logrus.Fields{
			"labels": Join(reg.labels, ","),
			"id":     reg.id,
		}).Debug("registration already present")
		return nil
	}
	h.regs[reg.id] = reg
	h.order = append(h.order, reg.id)
	return nil
}

// Err returns the configuration errors collected by Register, or nil.
func (h *Harness[L]) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errs.ErrorOrNil()
}

// Registrations returns the registrations in the order they were added.
func (h *Harness[L]) Registrations() []*Registration[L] {
	h.mu.Lock()
	defer h.mu.Unlock()
	ret := make([]*Registration[L], 0, len(h.order))
	for _, id := range h.order {
		ret = append(ret, h.regs[id])
	}
	return ret
}

// Registration is a named group of benchmarks.
type Registration[L Label[L]] struct {
	id       ID
	labels   []L
	populate func(*Registration[L])

	once    sync.Once
	entries []Entry[L]
	err     error
}

func newRegistration[L Label[L]](labels []L, populate func(*Registration[L])) *Registration[L] {
	normalized := Normalize(labels)
	return &Registration[L]{
		id:       registrationID(normalized),
		labels:   normalized,
		populate: populate,
	}
}

func (r *Registration[L]) ID() ID { return r.id }

// Labels returns the normalized label set.
func (r *Registration[L]) Labels() []L { return slices.Clone(r.labels) }

// Insert adds a benchmark labeled with label. Use Bench or Timed to build
// the thunk.
func (r *Registration[L]) Insert(label L, t Thunk) *Registration[L] {
	r.entries = append(r.entries, Entry[L]{
		Registration: r.id,
		Label:        label,
		Thunk:        t,
	})
	return r
}

// resolve populates the registration on first use and validates its
// benchmarks.
func (r *Registration[L]) resolve() ([]Entry[L], error) {
	r.once.Do(r.fill)
	if r.err != nil {
		return nil, r.err
	}
	if len(r.entries) == 0 {
		return nil, errors.Wrapf(ErrEmptyBenchmarks, "no benchmarks inserted for registration '%s'", Join(r.labels, ","))
	}
	labels := make([]L, len(r.entries))
	for n, e := range r.entries {
		labels[n] = e.Label
	}
	if !sameKind(labels) {
		return nil, errors.Wrapf(ErrInconsistentLabels, "expected one label kind for registration '%s'", Join(r.labels, ","))
	}
	return r.entries, nil
}

// fill runs populate. A panic is kept as the registration's error and any
// benchmarks inserted before it are discarded.
func (r *Registration[L]) fill() {
	defer func() {
		if p := recover(); p != nil {
			r.entries = nil
			r.err = errors.Wrapf(ErrPopulate, "registration '%s' panicked: %v", Join(r.labels, ","), p)
		}
	}()
	if r.populate != nil {
		r.populate(r)
	}
}

// Entry is one labeled benchmark function.
type Entry[L Label[L]] struct {
	Registration ID
	Label        L
	Thunk        Thunk
}
