package emit

import "strconv"

// DupLabels is the compilation-wide sequence of duplication labels. It is a
// plain value: each unit's emission takes the counter in and hands the
// advanced counter back, so no two duplications ever share a label.
type DupLabels struct {
	next uint64
}

// DupLabelsFrom returns a counter whose next label is dup<n>.
func DupLabelsFrom(n uint64) DupLabels {
	return DupLabels{next: n}
}

// Next returns the number of the next label to be handed out.
func (l DupLabels) Next() uint64 {
	return l.next
}

func (l *DupLabels) take() uint64 {
	n := l.next
	l.next++
	return n
}

// DupLabel formats label number n.
func DupLabel(n uint64) string {
	return "dup" + strconv.FormatUint(n, 10)
}
