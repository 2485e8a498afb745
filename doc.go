// Package hikaku benchmarks labeled functions with processor cycle timing and
// compares the results.
//
// Benchmarks are grouped into registrations keyed by a set of labels. A query
// selects registrations by label set, reduces each benchmark's samples to a
// single statistic and compares selections pairwise:
//
//	h := hikaku.New[Lbl]()
//	h.Register([]Lbl{Alc, Arr}, func(r *hikaku.Registration[Lbl]) {
//		r.Insert(Len(16), hikaku.Bench(func() [16]uint32 { return [16]uint32{} }))
//		r.Insert(Len(32), hikaku.Bench(func() [32]uint32 { return [32]uint32{} }))
//	})
//	h.Register([]Lbl{Alc, Vct}, func(r *hikaku.Registration[Lbl]) { ... })
//
//	q := hikaku.NewQuery[Lbl]()
//	q.Compare(q.Select(Alc, Arr), q.Select(Alc, Vct))
//	res, err := h.Run(ctx, q, 64)
//
// On amd64 samples are read from the timestamp counter with serializing
// fences around the measured region. Other architectures fall back to the
// monotonic clock in nanoseconds.
package hikaku
