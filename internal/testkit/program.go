package testkit

import (
	"vine/internal/chart"
	"vine/internal/driver"
	"vine/internal/specs"
	"vine/internal/vir"
)

func fnEntry() vir.Interface {
	return vir.Interface{
		ID:       vir.EntryInterface,
		Kind:     vir.InterfaceFn,
		Fn:       vir.FnTargets{Call: 0, Fork: vir.NoStageID, Drop: vir.NoStageID},
		Incoming: 1,
	}
}

// twiceUnit is `fn twice(x) = x + x`: the parameter is read twice, so its
// emission takes one duplication label.
func twiceUnit() *vir.Vir {
	s := vir.Stage{ID: 0, Interface: 0}
	p, _ := s.NewWire()
	r, _ := s.NewWire()
	s.Header = vir.Header{Kind: vir.HeaderFn, Fn: vir.FnHeader{Params: []vir.Port{p}, Result: r}}
	s.SetLocalTo(0, p)
	a := s.GetLocal(0)
	b := s.GetLocal(0)
	s.Link(r, s.ExtFn("n32_add", false, a, b))
	return &vir.Vir{Locals: 1, Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{s}}
}

// mainUnit is `fn main() = twice(20)` calling through fn rel 0.
func mainUnit() *vir.Vir {
	s := vir.Stage{ID: 0, Interface: 0}
	r, _ := s.NewWire()
	s.Header = vir.Header{Kind: vir.HeaderFn, Fn: vir.FnHeader{Result: r}}
	s.Steps = append(s.Steps, vir.Step{Kind: vir.StepCall, Call: vir.CallStep{
		Fn: 0, Recv: vir.ErasePort(), Args: []vir.Port{vir.N32Port(20)}, Ret: r,
	}})
	return &vir.Vir{
		Interfaces: []vir.Interface{fnEntry()},
		Stages:     []vir.Stage{s},
		Closures:   []vir.InterfaceID{0},
	}
}

// Program returns a small valid program: spec 0 is app::main, which calls
// the last of `copies` specializations of lib::twice (specs 1..copies).
func Program(copies int) *driver.Program {
	if copies < 1 {
		copies = 1
	}
	sp := []*specs.Spec{{
		Fragment: 0,
		Singular: true,
		Rels:     specs.Rels{Fns: []specs.FnRel{{Spec: specs.SpecID(copies), Stage: 0}}},
	}}
	for i := 0; i < copies; i++ {
		sp = append(sp, &specs.Spec{Fragment: 1, Index: i, Singular: copies == 1})
	}
	return &driver.Program{
		Schema:    driver.SchemaVersion,
		Chart:     &chart.Chart{},
		Fragments: []chart.Fragment{{Path: "app::main"}, {Path: "lib::twice"}},
		Units:     []*vir.Vir{mainUnit(), twiceUnit()},
		Specs:     &specs.Specializations{Specs: sp},
		Main:      0,
	}
}
