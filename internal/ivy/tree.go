package ivy

// TreeKind enumerates the node kinds of an interaction network.
type TreeKind uint8

const (
	// TreeErase is the eraser leaf.
	TreeErase TreeKind = iota
	// TreeComb is a binary combinator carrying a label.
	TreeComb
	// TreeExtFn is an external binary operator; the principal port is the lhs.
	TreeExtFn
	// TreeBranch is a ternary branch node (zero, non-zero, out).
	TreeBranch
	// TreeGlobal references another network by name.
	TreeGlobal
	// TreeVar is a wire leaf scoped to one network.
	TreeVar
	// TreeN32 is a 32-bit integer literal.
	TreeN32
	// TreeF32 is a 32-bit float literal.
	TreeF32
)

func (k TreeKind) String() string {
	switch k {
	case TreeErase:
		return "erase"
	case TreeComb:
		return "comb"
	case TreeExtFn:
		return "extfn"
	case TreeBranch:
		return "branch"
	case TreeGlobal:
		return "global"
	case TreeVar:
		return "var"
	case TreeN32:
		return "n32"
	case TreeF32:
		return "f32"
	default:
		return "unknown"
	}
}

// Tree is one node of a network.
//
// Label holds the combinator label, the external operator name, the global
// name or the wire name depending on Kind. Comb and ExtFn use A and B;
// Branch uses A, B and C.
type Tree struct {
	Kind  TreeKind
	Label string
	Swap  bool
	N32   uint32
	F32   float32
	A     *Tree
	B     *Tree
	C     *Tree
}

// Erase returns a fresh eraser leaf.
func Erase() *Tree { return &Tree{Kind: TreeErase} }

// Var returns a wire leaf.
func Var(name string) *Tree { return &Tree{Kind: TreeVar, Label: name} }

// Global returns a reference to the named network.
func Global(name string) *Tree { return &Tree{Kind: TreeGlobal, Label: name} }

// N32 returns an integer literal.
func N32(n uint32) *Tree { return &Tree{Kind: TreeN32, N32: n} }

// F32 returns a float literal.
func F32(f float32) *Tree { return &Tree{Kind: TreeF32, F32: f} }

// Comb returns a labeled binary combinator.
func Comb(label string, a, b *Tree) *Tree {
	return &Tree{Kind: TreeComb, Label: label, A: a, B: b}
}

// ExtFn returns an external operator node. The node's principal port is
// paired with the lhs operand; rhs and out are its auxiliary ports.
func ExtFn(name string, swap bool, rhs, out *Tree) *Tree {
	return &Tree{Kind: TreeExtFn, Label: name, Swap: swap, A: rhs, B: out}
}

// Branch returns a ternary branch node.
func Branch(zero, nonZero, out *Tree) *Tree {
	return &Tree{Kind: TreeBranch, A: zero, B: nonZero, C: out}
}

// NAry folds children into a right-nested chain of combinators labeled
// label: (a, (b, c)). No children yield an eraser; a single child is
// returned as is.
func NAry(label string, children ...*Tree) *Tree {
	if len(children) == 0 {
		return Erase()
	}
	out := children[len(children)-1]
	for i := len(children) - 2; i >= 0; i-- {
		out = Comb(label, children[i], out)
	}
	return out
}

// Spine returns the combinator nodes on the right spine of an NAry tree
// built from n children, outermost first.
func Spine(t *Tree, n int) []*Tree {
	if n < 2 {
		return nil
	}
	out := make([]*Tree, 0, n-1)
	for i := 0; i < n-1 && t != nil && t.Kind == TreeComb; i++ {
		out = append(out, t)
		t = t.B
	}
	return out
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	c := *t
	c.A = t.A.Clone()
	c.B = t.B.Clone()
	c.C = t.C.Clone()
	return &c
}

// Equal reports whether two trees are structurally identical.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Label != o.Label || t.Swap != o.Swap || t.N32 != o.N32 || t.F32 != o.F32 {
		return false
	}
	return t.A.Equal(o.A) && t.B.Equal(o.B) && t.C.Equal(o.C)
}

// Walk calls fn for t and every node below it in pre-order.
func (t *Tree) Walk(fn func(*Tree)) {
	if t == nil {
		return
	}
	fn(t)
	t.A.Walk(fn)
	t.B.Walk(fn)
	t.C.Walk(fn)
}
