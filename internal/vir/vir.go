package vir

import (
	"maps"
	"slices"
)

// Vir is one compiled unit (a function, closure or constant) as a set of
// stages connected through interfaces. Interface 0 is the entry.
type Vir struct {
	Locals     Local
	Layers     []Layer
	Interfaces []Interface
	Stages     []Stage
	Closures   []InterfaceID
}

// Layer groups stages sharing a dynamic extent.
type Layer struct {
	ID     LayerID
	Parent LayerID
	Stages []StageID
}

// InterfaceKind distinguishes control-transfer targets.
type InterfaceKind uint8

const (
	InterfaceUnconditional InterfaceKind = iota
	InterfaceBranch
	InterfaceMatch
	InterfaceFn
)

func (k InterfaceKind) String() string {
	switch k {
	case InterfaceUnconditional:
		return "unconditional"
	case InterfaceBranch:
		return "branch"
	case InterfaceMatch:
		return "match"
	case InterfaceFn:
		return "fn"
	default:
		return "unknown"
	}
}

type BranchTargets struct {
	Zero    StageID
	NonZero StageID
}

type MatchTargets struct {
	Enum   EnumID
	Stages []StageID
}

// FnTargets are the stages of a closure. Fork and Drop are NoStageID when
// the closure is never duplicated or dropped.
type FnTargets struct {
	Call StageID
	Fork StageID
	Drop StageID
}

// Interface is a control-transfer target.
type Interface struct {
	ID    InterfaceID
	Layer LayerID
	Kind  InterfaceKind

	Unconditional StageID
	Branch        BranchTargets
	Match         MatchTargets
	Fn            FnTargets

	// Incoming counts the transfers targeting this interface.
	Incoming int
	Wires    map[Local]UsagePair
}

// Inline reports whether the interface's single stage is spliced into its
// only caller instead of being emitted as its own network.
func (i *Interface) Inline() bool {
	return i.ID != EntryInterface && i.Incoming == 1 && i.Kind == InterfaceUnconditional
}

// Stages returns the stages reachable through the interface.
func (i *Interface) Stages() []StageID {
	switch i.Kind {
	case InterfaceUnconditional:
		return []StageID{i.Unconditional}
	case InterfaceBranch:
		return []StageID{i.Branch.Zero, i.Branch.NonZero}
	case InterfaceMatch:
		return slices.Clone(i.Match.Stages)
	case InterfaceFn:
		out := []StageID{i.Fn.Call}
		if i.Fn.Fork != NoStageID {
			out = append(out, i.Fn.Fork)
		}
		if i.Fn.Drop != NoStageID {
			out = append(out, i.Fn.Drop)
		}
		return out
	}
	return nil
}

// WireLocals returns the locals crossing the interface in ascending order.
func (i *Interface) WireLocals() []Local {
	return slices.Sorted(maps.Keys(i.Wires))
}

// Interface returns the interface with the given id, or nil.
func (v *Vir) Interface(id InterfaceID) *Interface {
	if v == nil || id < 0 || int(id) >= len(v.Interfaces) {
		return nil
	}
	return &v.Interfaces[id]
}

// Stage returns the stage with the given id, or nil.
func (v *Vir) Stage(id StageID) *Stage {
	if v == nil || id < 0 || int(id) >= len(v.Stages) {
		return nil
	}
	return &v.Stages[id]
}
