package main

import "github.com/violenttestpen/hikaku"

var lengths = []uint32{16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768, 65536, 131072}

// registerStudy registers allocation benchmarks: fixed size arrays, slices
// made at full length, and slices grown by append.
func registerStudy(h *hikaku.Harness[Lbl]) {
	h.Register([]Lbl{Alc, Arr}, func(r *hikaku.Registration[Lbl]) {
		r.Insert(Len(16), hikaku.Bench(func() [16]uint32 { return [16]uint32{} }))
		r.Insert(Len(32), hikaku.Bench(func() [32]uint32 { return [32]uint32{} }))
		r.Insert(Len(64), hikaku.Bench(func() [64]uint32 { return [64]uint32{} }))
		r.Insert(Len(128), hikaku.Bench(func() [128]uint32 { return [128]uint32{} }))
		r.Insert(Len(256), hikaku.Bench(func() [256]uint32 { return [256]uint32{} }))
		r.Insert(Len(512), hikaku.Bench(func() [512]uint32 { return [512]uint32{} }))
		r.Insert(Len(1024), hikaku.Bench(func() [1024]uint32 { return [1024]uint32{} }))
		r.Insert(Len(2048), hikaku.Bench(func() [2048]uint32 { return [2048]uint32{} }))
		r.Insert(Len(4096), hikaku.Bench(func() [4096]uint32 { return [4096]uint32{} }))
		r.Insert(Len(8192), hikaku.Bench(func() [8192]uint32 { return [8192]uint32{} }))
		r.Insert(Len(16384), hikaku.Bench(func() [16384]uint32 { return [16384]uint32{} }))
		r.Insert(Len(32768), hikaku.Bench(func() [32768]uint32 { return [32768]uint32{} }))
		r.Insert(Len(65536), hikaku.Bench(func() [65536]uint32 { return [65536]uint32{} }))
		r.Insert(Len(131072), hikaku.Bench(func() [131072]uint32 { return [131072]uint32{} }))
	})
	h.Register([]Lbl{Alc, Vct, Mcr}, func(r *hikaku.Registration[Lbl]) {
		for _, n := range lengths {
			n := n
			r.Insert(Len(n), hikaku.Bench(func() []uint32 { return make([]uint32, n) }))
		}
	})
	h.Register([]Lbl{Alc, Vct, Rsz}, func(r *hikaku.Registration[Lbl]) {
		for _, n := range lengths {
			n := n
			r.Insert(Len(n), hikaku.Bench(func() []uint32 {
				var s []uint32
				for i := uint32(0); i < n; i++ {
					s = append(s, i)
				}
				return s
			}))
		}
	})
}

// studyQuery compares arrays with slices, and slices made at full length
// with slices grown by append.
func studyQuery(stat hikaku.Statistic) *hikaku.Query[Lbl] {
	q := hikaku.NewQuery[Lbl]()
	arr := q.SelectStatistic(stat, Alc, Arr)
	mcr := q.SelectStatistic(stat, Alc, Vct, Mcr)
	rsz := q.SelectStatistic(stat, Alc, Vct, Rsz)
	q.Compare(arr, mcr)
	q.Compare(mcr, rsz)
	return q
}
