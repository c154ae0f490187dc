package emit

import "vine/internal/ivy"

// epoch is one closed span of a local's history: the consumers waiting for
// a value (spaces) and the producers supplying one (values).
type epoch struct {
	spaces []*ivy.Tree
	values []*ivy.Tree
}

// localState accumulates the reads and writes of one local within the
// network being built.
type localState struct {
	past   []epoch
	spaces []*ivy.Tree
	values []*ivy.Tree
}

func (l *localState) get(port *ivy.Tree) {
	l.spaces = append(l.spaces, port)
}

func (l *localState) hedge(port *ivy.Tree) {
	l.values = append(l.values, port)
}

func (l *localState) take(port *ivy.Tree) {
	l.get(port)
	l.erase()
}

func (l *localState) set(port *ivy.Tree) {
	l.erase()
	l.hedge(port)
}

func (l *localState) mutate(old, next *ivy.Tree) {
	l.get(old)
	l.erase()
	l.hedge(next)
}

// erase closes the open epoch. The first call always closes one, even an
// empty one, so a local that is only ever discarded still records it.
func (l *localState) erase() {
	if len(l.past) == 0 || len(l.spaces) != 0 || len(l.values) != 0 {
		l.past = append(l.past, epoch{spaces: l.spaces, values: l.values})
		l.spaces = nil
		l.values = nil
	}
}

// epochs returns the closed epochs as they stand after the local's
// lifetime ends: the still-open epoch is merged into the first closed one,
// letting a value produced late satisfy a consumer registered early.
func (l *localState) epochs() []epoch {
	past := l.past
	if len(past) == 0 {
		past = []epoch{{}}
	}
	first := &past[0]
	first.spaces = append(first.spaces, l.spaces...)
	first.values = append(first.values, l.values...)
	l.spaces = nil
	l.values = nil
	l.past = nil
	return past
}

// finishLocal resolves every epoch of a finished local into pairs.
func (u *unitEmitter) finishLocal(l *localState) {
	for _, ep := range l.epochs() {
		switch {
		case len(ep.spaces) == 0:
			for _, v := range ep.values {
				u.pair(ivy.Erase(), v)
			}
		case len(ep.values) == 0:
			for _, s := range ep.spaces {
				u.pair(s, ivy.Erase())
			}
		case len(ep.values) == 1:
			u.pair(u.dupFragment(ep.spaces), ep.values[0])
		case len(ep.spaces) == 1:
			u.pair(ep.spaces[0], u.dupFragment(ep.values))
		default:
			u.invariantf("local has %d consumers and %d producers in one epoch", len(ep.spaces), len(ep.values))
		}
	}
}
