package ivy

import (
	"io"
	"strconv"
	"strings"
)

// FormatTree renders a tree in the textual network syntax:
// `_` for erase, `label(a b)` for combinators, `@op(a b)` / `@op$(a b)` for
// external operators, `?(z n o)` for branches, bare names for globals and
// wires, and literals as numbers (floats always carry a fraction or exponent).
func FormatTree(t *Tree) string {
	var sb strings.Builder
	writeTree(&sb, t)
	return sb.String()
}

func writeTree(sb *strings.Builder, t *Tree) {
	if t == nil {
		sb.WriteString("_")
		return
	}
	switch t.Kind {
	case TreeErase:
		sb.WriteString("_")
	case TreeComb:
		sb.WriteString(t.Label)
		writeChildren(sb, t.A, t.B)
	case TreeExtFn:
		sb.WriteByte('@')
		sb.WriteString(t.Label)
		if t.Swap {
			sb.WriteByte('$')
		}
		writeChildren(sb, t.A, t.B)
	case TreeBranch:
		sb.WriteByte('?')
		writeChildren(sb, t.A, t.B, t.C)
	case TreeGlobal, TreeVar:
		sb.WriteString(t.Label)
	case TreeN32:
		sb.WriteString(strconv.FormatUint(uint64(t.N32), 10))
	case TreeF32:
		sb.WriteString(formatF32(t.F32))
	}
}

func writeChildren(sb *strings.Builder, children ...*Tree) {
	sb.WriteByte('(')
	for i, c := range children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		writeTree(sb, c)
	}
	sb.WriteByte(')')
}

func formatF32(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// FormatNet renders one named network.
func FormatNet(name string, n *Net) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(" {\n  ")
	writeTree(&sb, n.Root)
	sb.WriteByte('\n')
	for _, p := range n.Pairs {
		sb.WriteString("  ")
		writeTree(&sb, p.A)
		sb.WriteString(" = ")
		writeTree(&sb, p.B)
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	return sb.String()
}

// WriteNets writes every network in name order, separated by blank lines.
func WriteNets(w io.Writer, ns *Nets) error {
	for i, name := range ns.Names() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		n, _ := ns.Get(name)
		if _, err := io.WriteString(w, FormatNet(name, n)); err != nil {
			return err
		}
	}
	return nil
}
