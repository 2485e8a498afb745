package main

import (
	"cmp"
	"encoding/binary"
	"fmt"

	"github.com/violenttestpen/hikaku"
)

const (
	kindAlc hikaku.Kind = iota
	kindArr
	kindVct
	kindMcr
	kindRsz
	kindLen
)

// Lbl labels the benchmarks of the bundled study.
type Lbl struct {
	kind hikaku.Kind
	n    uint32
}

var (
	Alc = Lbl{kind: kindAlc}
	Arr = Lbl{kind: kindArr}
	Vct = Lbl{kind: kindVct}
	Mcr = Lbl{kind: kindMcr}
	Rsz = Lbl{kind: kindRsz}
)

// Len labels a benchmark by the number of elements it allocates.
func Len(n uint32) Lbl { return Lbl{kind: kindLen, n: n} }

func (l Lbl) Compare(o Lbl) int {
	if c := cmp.Compare(l.kind, o.kind); c != 0 {
		return c
	}
	return cmp.Compare(l.n, o.n)
}

func (l Lbl) Kind() hikaku.Kind { return l.kind }

func (l Lbl) Value() (uint32, error) {
	if l.kind != kindLen {
		return 0, &hikaku.NoPayloadError{Label: l.String()}
	}
	return l.n, nil
}

func (l Lbl) AppendKey(dst []byte) []byte {
	dst = append(dst, byte(l.kind))
	return binary.BigEndian.AppendUint32(dst, l.n)
}

func (l Lbl) KindName() string {
	if l.kind == kindLen {
		return "len"
	}
	return l.String()
}

func (l Lbl) String() string {
	switch l.kind {
	case kindAlc:
		return "alc"
	case kindArr:
		return "arr"
	case kindVct:
		return "vct"
	case kindMcr:
		return "mcr"
	case kindRsz:
		return "rsz"
	default:
		return fmt.Sprintf("len(%d)", l.n)
	}
}
