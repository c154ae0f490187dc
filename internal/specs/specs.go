// Package specs describes the concrete instantiations of generic
// definitions and how each resolves the references its unit makes.
package specs

import (
	"fmt"

	"fortio.org/safecast"

	"vine/internal/chart"
	"vine/internal/vir"
)

type SpecID int32

const NoSpecID SpecID = -1

// ConstRel resolves a constant reference. Unresolved marks a reference whose
// failure was already reported upstream.
type ConstRel struct {
	Spec       SpecID
	Unresolved bool
}

// FnRel resolves a function reference to a spec and the stage to enter.
type FnRel struct {
	Spec       SpecID
	Stage      vir.StageID
	Unresolved bool
}

// Rels is a spec's resolution table, indexed by the unit's relative ids.
type Rels struct {
	Consts []ConstRel
	Fns    []FnRel
}

// Const returns the resolution of rel. Out-of-range ids are unresolved.
func (r *Rels) Const(rel vir.ConstRelID) ConstRel {
	if rel < 0 || int(rel) >= len(r.Consts) {
		return ConstRel{Spec: NoSpecID, Unresolved: true}
	}
	return r.Consts[rel]
}

// Fn returns the resolution of rel. Out-of-range ids are unresolved.
func (r *Rels) Fn(rel vir.FnRelID) FnRel {
	if rel < 0 || int(rel) >= len(r.Fns) {
		return FnRel{Spec: NoSpecID, Stage: vir.NoStageID, Unresolved: true}
	}
	return r.Fns[rel]
}

// Spec is one instantiation of a fragment. Index numbers it among its
// siblings; Singular is set when it is the fragment's only instantiation.
type Spec struct {
	Fragment chart.FragmentID
	Index    int
	Singular bool
	Rels     Rels
}

// Specializations is the table of all specs; nil entries are ids that were
// reserved but never instantiated.
type Specializations struct {
	Specs []*Spec
}

// Get returns the spec with the given id, or nil.
func (s *Specializations) Get(id SpecID) *Spec {
	if s == nil || id < 0 || int(id) >= len(s.Specs) {
		return nil
	}
	return s.Specs[id]
}

// IDs returns the ids of all instantiated specs in ascending order.
func (s *Specializations) IDs() []SpecID {
	if s == nil {
		return nil
	}
	out := make([]SpecID, 0, len(s.Specs))
	for i, sp := range s.Specs {
		if sp == nil {
			continue
		}
		id, err := safecast.Conv[int32](i)
		if err != nil {
			panic(fmt.Errorf("specs: spec id overflow: %w", err))
		}
		out = append(out, SpecID(id))
	}
	return out
}
