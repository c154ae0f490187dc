package emit

import (
	"unicode/utf8"

	"fortio.org/safecast"

	"vine/internal/ivy"
	"vine/internal/vir"
)

// Combinator labels shared with the runtime.
const (
	labelTuple = "tup"
	labelEnum  = "enum"
	labelFn    = "fn"
	labelRef   = "ref"
	labelIface = "x"
)

// dupFragment builds a duplication fragment over ports with a fresh label.
func (u *unitEmitter) dupFragment(ports []*ivy.Tree) *ivy.Tree {
	n := u.labels.take()
	t := ivy.NAry(DupLabel(n), ports...)
	for _, node := range ivy.Spine(t, len(ports)) {
		u.dups = append(u.dups, dupNode{node: node, n: n})
	}
	return t
}

// dup builds a single duplicator node.
func (u *unitEmitter) dup(a, b *ivy.Tree) *ivy.Tree {
	n := u.labels.take()
	node := ivy.Comb(DupLabel(n), a, b)
	u.dups = append(u.dups, dupNode{node: node, n: n})
	return node
}

func (u *unitEmitter) n32(n int, what string) *ivy.Tree {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		u.invariantf("%s does not fit in 32 bits: %v", what, err)
	}
	return ivy.N32(v)
}

// makeEnum builds variant `variant` of an enum with `count` variants. The
// chosen slot holds the fields followed by a wire whose other end closes the
// outer fragment; every other slot is an eraser.
func (u *unitEmitter) makeEnum(variant vir.VariantID, count int, fields []*ivy.Tree) *ivy.Tree {
	if variant < 0 || int(variant) >= count {
		u.invariantf("variant %d out of range for enum with %d variants", variant, count)
	}
	w0, w1 := u.newWire()
	slot := ivy.NAry(labelEnum, append(fields, w0)...)
	children := make([]*ivy.Tree, 0, count+1)
	for i := 0; i < count; i++ {
		if i == int(variant) {
			children = append(children, slot)
		} else {
			children = append(children, ivy.Erase())
		}
	}
	children = append(children, w1)
	return ivy.NAry(labelEnum, children...)
}

// emitList encodes a list as (length, buffer, end) where the buffer's tail
// is the open end wire.
func (u *unitEmitter) emitList(elems []*ivy.Tree) *ivy.Tree {
	end0, end1 := u.newWire()
	length := u.n32(len(elems), "list length")
	buf := ivy.NAry(labelTuple, append(elems, end0)...)
	return ivy.NAry(labelTuple, length, buf, end1)
}

// chars encodes text one code point per element, followed by tail.
func chars(text string, tail *ivy.Tree) []*ivy.Tree {
	out := make([]*ivy.Tree, 0, utf8.RuneCountInString(text)+1)
	for _, r := range text {
		out = append(out, ivy.N32(uint32(r)))
	}
	return append(out, tail)
}

// emitString encodes a string as a list whose length and end are settled by
// pairs: every interpolated segment adds its length at reduction time and
// forwards the running buffer end.
func (u *unitEmitter) emitString(port *ivy.Tree, s *vir.StringStep) {
	constLen := utf8.RuneCountInString(s.Init)
	for _, seg := range s.Segments {
		constLen += utf8.RuneCountInString(seg.Text)
	}
	len0, len1 := u.newWire()
	start0, start1 := u.newWire()
	end0, end1 := u.newWire()
	u.pair(port, ivy.NAry(labelTuple, len0, ivy.NAry(labelTuple, chars(s.Init, start0)...), end0))

	curLen := u.n32(constLen, "string length")
	curBuf := start1
	for _, seg := range s.Segments {
		nextLen0, nextLen1 := u.newWire()
		nextBuf0, nextBuf1 := u.newWire()
		u.pair(u.emitPort(seg.Value), ivy.NAry(labelTuple,
			ivy.ExtFn("n32_add", false, curLen, nextLen0),
			curBuf,
			ivy.NAry(labelTuple, chars(seg.Text, nextBuf0)...),
		))
		curLen = nextLen1
		curBuf = nextBuf1
	}
	u.pair(curLen, len1)
	u.pair(curBuf, end1)
}
