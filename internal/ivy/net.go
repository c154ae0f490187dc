package ivy

import (
	"fmt"
	"slices"
)

// Pair is one equation between two trees.
type Pair struct {
	A *Tree
	B *Tree
}

// Net is a named network's body: a root plus unordered pairs.
type Net struct {
	Root  *Tree
	Pairs []Pair
}

// Clone returns a deep copy of the network.
func (n *Net) Clone() *Net {
	if n == nil {
		return nil
	}
	out := &Net{Root: n.Root.Clone(), Pairs: make([]Pair, len(n.Pairs))}
	for i, p := range n.Pairs {
		out.Pairs[i] = Pair{A: p.A.Clone(), B: p.B.Clone()}
	}
	return out
}

// Walk visits the root and every pair side.
func (n *Net) Walk(fn func(*Tree)) {
	if n == nil {
		return
	}
	n.Root.Walk(fn)
	for _, p := range n.Pairs {
		p.A.Walk(fn)
		p.B.Walk(fn)
	}
}

// CollisionError reports two networks emitted under the same name.
type CollisionError struct {
	Name string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("ivy: network %q emitted twice", e.Name)
}

// Nets is a collection of named networks.
type Nets struct {
	byName map[string]*Net
}

// NewNets returns an empty collection.
func NewNets() *Nets {
	return &Nets{byName: make(map[string]*Net)}
}

// Insert adds a network. A name that is already present is reported as a
// *CollisionError and leaves the collection unchanged.
func (ns *Nets) Insert(name string, net *Net) error {
	if ns.byName == nil {
		ns.byName = make(map[string]*Net)
	}
	if _, ok := ns.byName[name]; ok {
		return &CollisionError{Name: name}
	}
	ns.byName[name] = net
	return nil
}

// Get returns the network with the given name.
func (ns *Nets) Get(name string) (*Net, bool) {
	if ns == nil {
		return nil, false
	}
	n, ok := ns.byName[name]
	return n, ok
}

// Len returns the number of networks.
func (ns *Nets) Len() int {
	if ns == nil {
		return 0
	}
	return len(ns.byName)
}

// Names returns all network names in ascending order.
func (ns *Nets) Names() []string {
	if ns == nil {
		return nil
	}
	names := make([]string, 0, len(ns.byName))
	for name := range ns.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
