package emit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"vine/internal/chart"
	"vine/internal/emit"
	"vine/internal/ivy"
	"vine/internal/specs"
	"vine/internal/testkit"
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

func newInput(paths []string, sp []*specs.Spec, units []*vir.Vir, enums ...chart.EnumDef) *emit.Input {
	frags := make([]chart.Fragment, len(paths))
	for i, p := range paths {
		frags[i] = chart.Fragment{Path: p}
	}
	return &emit.Input{
		Chart:     &chart.Chart{Enums: enums},
		Specs:     &specs.Specializations{Specs: sp},
		Fragments: frags,
		Units:     units,
	}
}

func singleInput(v *vir.Vir, enums ...chart.EnumDef) *emit.Input {
	return newInput([]string{"app::main"}, []*specs.Spec{{Fragment: 0, Singular: true}}, []*vir.Vir{v}, enums...)
}

func emitAll(t *testing.T, in *emit.Input) *ivy.Nets {
	t.Helper()
	e := emit.New(in, emit.DupLabels{})
	for _, id := range in.Specs.IDs() {
		require.NoError(t, e.EmitSpec(id))
	}
	return e.Nets()
}

func netText(t *testing.T, ns *ivy.Nets, name string) string {
	t.Helper()
	n, ok := ns.Get(name)
	require.True(t, ok, "missing network %s", name)
	return ivy.FormatNet(name, n)
}

func TestEmit_Identity(t *testing.T) {
	s := vir.Stage{ID: 0, Interface: 0}
	p0, p1 := s.NewWire()
	r0, r1 := s.NewWire()
	s.Header = vir.Header{Kind: vir.HeaderFn, Fn: vir.FnHeader{Params: []vir.Port{p0}, Result: r0}}
	s.SetLocalTo(0, p1)
	s.GetLocalTo(0, r1)

	v := &vir.Vir{Locals: 1, Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{s}}
	ns := emitAll(t, singleInput(v))

	require.Equal(t, 1, ns.Len())
	require.Equal(t, "app::main {\n  fn(_ fn(w0 w1))\n  w1 = w0\n}\n", netText(t, ns, "app::main"))
	require.NoError(t, testkit.CheckNetsLinear(ns))
}

func TestEmit_BranchTransfer(t *testing.T) {
	s0 := vir.Stage{ID: 0, Interface: 0}
	p, _ := s0.NewWire()
	c, _ := s0.NewWire()
	r, _ := s0.NewWire()
	s0.Header = vir.Header{Kind: vir.HeaderFn, Fn: vir.FnHeader{Params: []vir.Port{p, c}, Result: r}}
	s0.SetLocalTo(0, p)
	s0.Link(r, vir.N32Port(0))
	s0.Transfer(vir.TransferWith(1, c))

	s1 := vir.Stage{ID: 1, Interface: 1}
	s1.Erase(s1.GetLocal(0))
	s2 := vir.Stage{ID: 2, Interface: 1}

	v := &vir.Vir{
		Locals: 1,
		Interfaces: []vir.Interface{
			fnEntry(),
			{
				ID:       1,
				Kind:     vir.InterfaceBranch,
				Branch:   vir.BranchTargets{Zero: 1, NonZero: 2},
				Incoming: 1,
				Wires:    map[vir.Local]vir.UsagePair{0: {Interior: vir.UsageTake, Exterior: vir.UsageSet}},
			},
		},
		Stages: []vir.Stage{s0, s1, s2},
	}
	in := singleInput(v)
	e := emit.New(in, emit.DupLabels{})
	require.NoError(t, e.EmitSpec(0))
	ns := e.Nets()

	require.Equal(t, []string{"app::main", "app::main::1", "app::main::2"}, ns.Names())
	require.Equal(t,
		"app::main {\n  fn(_ fn(w0 fn(w1 w2)))\n  w2 = 0\n  w1 = ?(app::main::1 app::main::2 w3)\n  w3 = w0\n}\n",
		netText(t, ns, "app::main"))
	require.Equal(t, "app::main::1 {\n  w1\n  w0 = _\n  w0 = w1\n}\n", netText(t, ns, "app::main::1"))
	require.Equal(t, "app::main::2 {\n  w0\n  _ = w0\n}\n", netText(t, ns, "app::main::2"))
	require.Equal(t, uint64(2), e.Labels().Next())
	require.NoError(t, testkit.CheckNetsLinear(ns))
}

func TestEmit_InlineStageWires(t *testing.T) {
	s0 := vir.Stage{ID: 0, Interface: 0}
	p, _ := s0.NewWire()
	r, _ := s0.NewWire()
	s0.Header = vir.Header{Kind: vir.HeaderFn, Fn: vir.FnHeader{Params: []vir.Port{p}, Result: r}}
	s0.SetLocalTo(0, p)
	s0.GetLocalTo(1, r)
	s0.Transfer(vir.Unconditional(1))

	s1 := vir.Stage{ID: 1, Interface: 1}
	sum := s1.ExtFn("n32_add", false, s1.GetLocal(0), vir.N32Port(1))
	s1.SetLocalTo(1, sum)

	v := &vir.Vir{
		Locals: 2,
		Interfaces: []vir.Interface{
			fnEntry(),
			{ID: 1, Kind: vir.InterfaceUnconditional, Unconditional: 1, Incoming: 1},
		},
		Stages: []vir.Stage{s0, s1},
	}
	ns := emitAll(t, singleInput(v))

	require.Equal(t, []string{"app::main"}, ns.Names())
	require.Equal(t,
		"app::main {\n  fn(_ fn(w0 w1))\n  w2 = @n32_add(1 w3)\n  w2 = w0\n  w1 = w3\n}\n",
		netText(t, ns, "app::main"))
	require.NoError(t, testkit.CheckNetsLinear(ns))
}

func TestEmit_MutInterfaceSides(t *testing.T) {
	mut := map[vir.Local]vir.UsagePair{0: {Interior: vir.UsageMut, Exterior: vir.UsageMut}}
	entry := vir.Interface{ID: 0, Kind: vir.InterfaceUnconditional, Unconditional: 0, Incoming: 1, Wires: mut}

	s0 := vir.Stage{ID: 0, Interface: 0}
	s0.Transfer(vir.Unconditional(1))
	s1 := vir.Stage{ID: 1, Interface: 1}

	v := &vir.Vir{
		Locals: 1,
		Interfaces: []vir.Interface{
			entry,
			{ID: 1, Kind: vir.InterfaceUnconditional, Unconditional: 1, Incoming: 2, Wires: mut},
		},
		Stages: []vir.Stage{s0, s1},
	}
	ns := emitAll(t, singleInput(v))

	require.Equal(t,
		"app::main {\n  x(w1 w0)\n  app::main::1 = x(w2 w3)\n  w0 = w3\n  w2 = w1\n}\n",
		netText(t, ns, "app::main"))
	require.Equal(t, "app::main::1 {\n  x(w1 w0)\n  w0 = w1\n}\n", netText(t, ns, "app::main::1"))
	require.NoError(t, testkit.CheckNetsLinear(ns))
}

// annihilate reduces a = b while both sides are combinators of the same
// label and returns the remaining equations.
func annihilate(a, b *ivy.Tree, out []string) []string {
	if a.Kind == ivy.TreeComb && b.Kind == ivy.TreeComb && a.Label == b.Label {
		out = annihilate(a.A, b.A, out)
		return annihilate(a.B, b.B, out)
	}
	return append(out, ivy.FormatTree(a)+" = "+ivy.FormatTree(b))
}

func TestEmit_EnumMeetsMatch(t *testing.T) {
	s0 := vir.Stage{ID: 0, Interface: 0}
	val, _ := s0.NewWire()
	r, _ := s0.NewWire()
	s0.Header = vir.Header{Kind: vir.HeaderFn, Fn: vir.FnHeader{Result: r}}
	s0.Steps = append(s0.Steps, vir.Step{Kind: vir.StepEnum, Enum: vir.EnumStep{
		Enum: 0, Variant: 1, Port: val, HasFields: true, Fields: vir.N32Port(7),
	}})
	s0.Link(r, vir.N32Port(0))
	s0.Transfer(vir.TransferWith(1, val))

	stages := []vir.Stage{s0}
	for id := vir.StageID(1); id <= 3; id++ {
		s := vir.Stage{ID: id, Interface: 1}
		d, _ := s.NewWire()
		s.Header = vir.Header{Kind: vir.HeaderMatch, Match: vir.MatchHeader{HasData: true, Data: d}}
		s.Erase(d)
		stages = append(stages, s)
	}

	v := &vir.Vir{
		Interfaces: []vir.Interface{
			fnEntry(),
			{ID: 1, Kind: vir.InterfaceMatch, Match: vir.MatchTargets{Enum: 0, Stages: []vir.StageID{1, 2, 3}}, Incoming: 1},
		},
		Stages: stages,
	}
	ns := emitAll(t, singleInput(v, chart.EnumDef{Name: "E", Variants: []string{"A", "B", "C"}}))
	require.NoError(t, testkit.CheckNetsLinear(ns))
	require.Equal(t, "app::main::2 {\n  enum(w0 _)\n  w0 = _\n}\n", netText(t, ns, "app::main::2"))

	main, _ := ns.Get("app::main")
	var sides []*ivy.Tree
	for _, p := range main.Pairs {
		if p.A.Kind == ivy.TreeVar && p.A.Label == "w0" {
			sides = append(sides, p.B)
		}
	}
	require.Len(t, sides, 2)
	require.Equal(t, []string{
		"_ = app::main::1",
		"enum(7 w2) = app::main::2",
		"_ = app::main::3",
		"w2 = _",
	}, annihilate(sides[0], sides[1], nil))
}

func TestEmit_ListAndString(t *testing.T) {
	s := vir.Stage{ID: 0, Interface: 0}
	list, _ := s.NewWire()
	str, _ := s.NewWire()
	seg, _ := s.NewWire()
	s.Steps = append(s.Steps,
		vir.Step{Kind: vir.StepList, List: vir.ListStep{Port: list, Elems: []vir.Port{vir.N32Port(10), vir.N32Port(20)}}},
		vir.Step{Kind: vir.StepString, String: vir.StringStep{
			Port:     str,
			Init:     "ab",
			Segments: []vir.StringSegment{{Value: seg, Text: "c"}},
		}},
	)

	v := &vir.Vir{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{s}}
	ns := emitAll(t, singleInput(v))

	require.Equal(t, "app::main {\n  _\n"+
		"  w0 = tup(2 tup(tup(10 tup(20 w3)) w3))\n"+
		"  w1 = tup(w4 tup(tup(97 tup(98 w5)) w6))\n"+
		"  w2 = tup(@n32_add(3 w7) tup(w5 tup(99 w8)))\n"+
		"  w7 = w4\n"+
		"  w8 = w6\n"+
		"}\n", netText(t, ns, "app::main"))
}

func TestEmit_StringWithoutSegments(t *testing.T) {
	s := vir.Stage{ID: 0, Interface: 0}
	str, _ := s.NewWire()
	s.Steps = append(s.Steps, vir.Step{Kind: vir.StepString, String: vir.StringStep{Port: str, Init: "hé"}})

	v := &vir.Vir{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{s}}
	ns := emitAll(t, singleInput(v))

	require.Equal(t, "app::main {\n  _\n"+
		"  w0 = tup(w1 tup(tup(104 tup(233 w2)) w3))\n"+
		"  2 = w1\n"+
		"  w2 = w3\n"+
		"}\n", netText(t, ns, "app::main"))
}

func TestEmit_ForkAndDropHeaders(t *testing.T) {
	s0 := vir.Stage{ID: 0, Interface: 0}
	r, _ := s0.NewWire()
	s0.Header = vir.Header{Kind: vir.HeaderFn, Fn: vir.FnHeader{Result: r}}
	s0.Link(r, vir.N32Port(5))

	s1 := vir.Stage{ID: 1, Interface: 0}
	former, _ := s1.NewWire()
	latter, _ := s1.NewWire()
	s1.Header = vir.Header{Kind: vir.HeaderFork, Fork: vir.ForkHeader{Former: former, Latter: latter}}
	s1.Link(former, latter)

	s2 := vir.Stage{ID: 2, Interface: 0, Header: vir.Header{Kind: vir.HeaderDrop}}

	entry := fnEntry()
	entry.Fn.Fork = 1
	entry.Fn.Drop = 2
	v := &vir.Vir{Interfaces: []vir.Interface{entry}, Stages: []vir.Stage{s0, s1, s2}}
	ns := emitAll(t, singleInput(v))

	require.Equal(t, "app::main {\n  fn(_ w0)\n  w0 = 5\n}\n", netText(t, ns, "app::main"))
	require.Equal(t, "app::main::1 {\n  fn(_ fn(ref(_ w1) w0))\n  w0 = w1\n}\n", netText(t, ns, "app::main::1"))
	require.Equal(t, "app::main::2 {\n  fn(_ fn(_ _))\n}\n", netText(t, ns, "app::main::2"))
	require.NoError(t, testkit.CheckNetsLinear(ns))
}

func TestEmit_Primitives(t *testing.T) {
	s := vir.Stage{ID: 0, Interface: 0}
	tup, _ := s.NewWire()
	s.Steps = append(s.Steps, vir.Step{Kind: vir.StepComposite, Composite: vir.CompositeStep{
		Port: tup, Fields: []vir.Port{vir.N32Port(1), vir.F32Port(2.5)},
	}})
	ref := s.RefPlace(vir.N32Port(1), vir.ErasePort())
	out := s.ExtFn("f32_mul", true, vir.F32Port(2), vir.N32Port(3))
	s.Link(out, ref)

	v := &vir.Vir{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{s}}
	ns := emitAll(t, singleInput(v))

	require.Equal(t, "app::main {\n  _\n"+
		"  w0 = tup(1 2.5)\n"+
		"  w1 = ref(1 _)\n"+
		"  2.0 = @f32_mul$(3 w2)\n"+
		"  w2 = w1\n"+
		"}\n", netText(t, ns, "app::main"))
}

func TestEmit_InlineIvyIsCopied(t *testing.T) {
	body := &ivy.Net{
		Root:  ivy.Comb("tup", ivy.Var("a"), ivy.Var("b")),
		Pairs: []ivy.Pair{{A: ivy.Var("b"), B: ivy.N32(2)}},
	}
	s := vir.Stage{ID: 0, Interface: 0}
	out, _ := s.NewWire()
	s.Steps = append(s.Steps, vir.Step{Kind: vir.StepInlineIvy, InlineIvy: vir.InlineIvyStep{
		Binds: []vir.IvyBind{{Var: "a", Port: vir.N32Port(1)}},
		Out:   out,
		Net:   body,
	}})
	s.Erase(out)

	v := &vir.Vir{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{s}}
	ns := emitAll(t, singleInput(v))

	require.Equal(t, "app::main {\n  _\n  a = 1\n  w0 = tup(a b)\n  b = 2\n  w0 = _\n}\n", netText(t, ns, "app::main"))
	net, _ := ns.Get("app::main")
	require.NotSame(t, body.Root, net.Pairs[1].B)
	require.Equal(t, "tup(a b)", ivy.FormatTree(body.Root))
}

func TestEmit_References(t *testing.T) {
	s := vir.Stage{ID: 0, Interface: 0}
	r, _ := s.NewWire()
	s.Header = vir.Header{Kind: vir.HeaderFn, Fn: vir.FnHeader{Result: r}}
	s.Link(r, vir.ConstRelPort(0))
	s.Link(vir.ConstRelPort(1), vir.ErrorPort())
	s.Steps = append(s.Steps,
		vir.Step{Kind: vir.StepCall, Call: vir.CallStep{Fn: 0, Recv: vir.ErasePort(), Args: []vir.Port{vir.N32Port(1)}, Ret: vir.N32Port(2)}},
		vir.Step{Kind: vir.StepCall, Call: vir.CallStep{Fn: 1, Recv: vir.N32Port(5), Ret: vir.ErasePort()}},
		vir.Step{Kind: vir.StepCall, Call: vir.CallStep{Fn: 7, Recv: vir.ErasePort(), Ret: vir.ErasePort()}},
	)
	main := &vir.Vir{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{s}}

	in := newInput(
		[]string{"app::main", "lib::K", "lib::f"},
		[]*specs.Spec{
			{Fragment: 0, Singular: true, Rels: specs.Rels{
				Consts: []specs.ConstRel{{Spec: 1}, {Spec: specs.NoSpecID, Unresolved: true}},
				Fns:    []specs.FnRel{{Spec: 2, Stage: 2}, {Spec: specs.NoSpecID, Stage: vir.NoStageID, Unresolved: true}},
			}},
			{Fragment: 1, Singular: true},
			{Fragment: 2, Index: 3},
		},
		[]*vir.Vir{main, nil, nil},
	)
	e := emit.New(in, emit.DupLabels{})
	require.NoError(t, e.EmitSpec(0))

	require.Equal(t, "app::main {\n  fn(_ w0)\n"+
		"  w0 = lib::K\n"+
		"  _ = _\n"+
		"  lib::f::3::2 = fn(_ fn(1 2))\n"+
		"  _ = fn(5 _)\n"+
		"  _ = fn(_ _)\n"+
		"}\n", netText(t, e.Nets(), "app::main"))
}

func TestStageName(t *testing.T) {
	in := newInput(
		[]string{"app::main", "lib::f"},
		[]*specs.Spec{{Fragment: 0, Singular: true}, {Fragment: 1, Index: 1}, {Fragment: 7}},
		nil,
	)
	tests := []struct {
		spec  specs.SpecID
		stage vir.StageID
		want  string
	}{
		{0, 0, "app::main"},
		{0, 4, "app::main::4"},
		{1, 0, "lib::f::1"},
		{1, 2, "lib::f::1::2"},
	}
	for _, tt := range tests {
		got, err := in.StageName(tt.spec, tt.stage)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
		again, err := in.StageName(tt.spec, tt.stage)
		require.NoError(t, err)
		require.Equal(t, got, again)
	}

	_, err := in.StageName(2, 0)
	require.Error(t, err)
	_, err = in.StageName(9, 0)
	require.Error(t, err)
}

func TestEmit_CallNamesMatchEmittedNets(t *testing.T) {
	caller := vir.Stage{ID: 0, Interface: 0}
	caller.Steps = append(caller.Steps, vir.Step{Kind: vir.StepCall, Call: vir.CallStep{
		Fn: 0, Recv: vir.ErasePort(), Ret: vir.ErasePort(),
	}})
	callee := vir.Stage{ID: 0, Interface: 0, Header: vir.Header{Kind: vir.HeaderDrop}}

	in := newInput(
		[]string{"app::main", "lib::f"},
		[]*specs.Spec{
			{Fragment: 0, Singular: true, Rels: specs.Rels{Fns: []specs.FnRel{{Spec: 1, Stage: 0}}}},
			{Fragment: 1, Index: 1},
		},
		[]*vir.Vir{
			{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{caller}},
			{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{callee}},
		},
	)
	ns := emitAll(t, in)

	main, ok := ns.Get("app::main")
	require.True(t, ok)
	require.Equal(t, ivy.TreeGlobal, main.Pairs[0].A.Kind)
	_, ok = ns.Get(main.Pairs[0].A.Label)
	require.True(t, ok, "call target %s was not emitted", main.Pairs[0].A.Label)
}

func TestEmit_Invariants(t *testing.T) {
	branch := vir.Interface{ID: 1, Kind: vir.InterfaceBranch, Branch: vir.BranchTargets{Zero: 0, NonZero: 0}, Incoming: 1}
	tests := []struct {
		name  string
		build func(s *vir.Stage, v *vir.Vir)
	}{
		{"many_to_many", func(s *vir.Stage, _ *vir.Vir) {
			s.HedgeLocalTo(0, vir.N32Port(1))
			s.HedgeLocalTo(0, vir.N32Port(2))
			s.GetLocalTo(0, vir.ErasePort())
			s.GetLocalTo(0, vir.ErasePort())
		}},
		{"diverge", func(s *vir.Stage, _ *vir.Vir) {
			s.Steps = append(s.Steps, vir.Step{Kind: vir.StepDiverge, Diverge: vir.DivergeStep{Layer: 0}})
		}},
		{"wire_escape", func(s *vir.Stage, _ *vir.Vir) {
			s.NewWire()
			s.Link(vir.WirePort(3), vir.ErasePort())
		}},
		{"branch_without_data", func(s *vir.Stage, v *vir.Vir) {
			v.Interfaces = append(v.Interfaces, branch)
			s.Transfer(vir.Unconditional(1))
		}},
		{"unknown_enum", func(s *vir.Stage, _ *vir.Vir) {
			s.Steps = append(s.Steps, vir.Step{Kind: vir.StepEnum, Enum: vir.EnumStep{Enum: 9, Port: vir.ErasePort()}})
		}},
		{"usage_none", func(_ *vir.Stage, v *vir.Vir) {
			v.Interfaces[0].Wires = map[vir.Local]vir.UsagePair{0: {}}
		}},
		{"nil_inline_net", func(s *vir.Stage, _ *vir.Vir) {
			s.Steps = append(s.Steps, vir.Step{Kind: vir.StepInlineIvy, InlineIvy: vir.InlineIvyStep{Out: vir.ErasePort()}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := vir.Stage{ID: 0, Interface: 0}
			v := &vir.Vir{Locals: 1, Interfaces: []vir.Interface{fnEntry()}}
			tt.build(&s, v)
			v.Stages = []vir.Stage{s}

			start := emit.DupLabelsFrom(4)
			unit, next, err := emit.EmitSpec(singleInput(v), 0, start)
			require.Nil(t, unit)
			require.Equal(t, start, next)
			require.ErrorIs(t, err, emit.ErrInvariant)

			var ie *emit.InvariantError
			require.True(t, errors.As(err, &ie))
			require.Equal(t, specs.SpecID(0), ie.Spec)
			require.Equal(t, vir.StageID(0), ie.Stage)
		})
	}
}

func TestEmit_NameCollision(t *testing.T) {
	v := &vir.Vir{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{{ID: 0, Interface: 0}}}
	in := newInput(
		[]string{"app::main"},
		[]*specs.Spec{{Fragment: 0, Singular: true}, {Fragment: 0, Singular: true}},
		[]*vir.Vir{v},
	)
	e := emit.New(in, emit.DupLabels{})
	require.NoError(t, e.EmitSpec(0))
	err := e.EmitSpec(1)
	require.ErrorIs(t, err, emit.ErrInvariant)

	var ce *ivy.CollisionError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "app::main", ce.Name)
}

func TestEmitter_MergeCollisionLeavesEmitterUnchanged(t *testing.T) {
	leaf := &vir.Vir{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{{ID: 0, Interface: 0}}}

	s0 := vir.Stage{ID: 0, Interface: 0}
	a, b := s0.Dup(vir.N32Port(3))
	s0.Link(a, b)
	s0.Transfer(vir.Unconditional(1))
	twoNets := &vir.Vir{
		Interfaces: []vir.Interface{
			fnEntry(),
			{ID: 1, Kind: vir.InterfaceUnconditional, Unconditional: 1, Incoming: 2},
		},
		Stages: []vir.Stage{s0, {ID: 1, Interface: 1}},
	}
	in := newInput(
		[]string{"a::1", "a"},
		[]*specs.Spec{{Fragment: 0, Singular: true}, {Fragment: 1, Singular: true}},
		[]*vir.Vir{leaf, twoNets},
	)

	e := emit.New(in, emit.DupLabelsFrom(5))
	require.NoError(t, e.EmitSpec(0))

	unit, _, err := emit.EmitSpec(in, 1, emit.DupLabels{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "a::1"}, unit.Names)

	err = e.Merge(unit)
	require.ErrorIs(t, err, emit.ErrInvariant)
	var ce *ivy.CollisionError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "a::1", ce.Name)

	require.Equal(t, []string{"a::1"}, e.Nets().Names())
	require.Equal(t, uint64(5), e.Labels().Next())

	// The rejected unit keeps its own labels.
	fresh := emit.New(in, emit.DupLabels{})
	require.NoError(t, fresh.Merge(unit))
	require.Contains(t, netText(t, fresh.Nets(), "a"), "dup0(")
}

func TestEmitter_MergeShiftsLabels(t *testing.T) {
	s := vir.Stage{ID: 0, Interface: 0}
	a, b := s.Dup(vir.N32Port(3))
	s.Link(a, b)
	v := &vir.Vir{Interfaces: []vir.Interface{fnEntry()}, Stages: []vir.Stage{s}}
	in := singleInput(v)

	unit, next, err := emit.EmitSpec(in, 0, emit.DupLabels{})
	require.NoError(t, err)
	require.Equal(t, uint64(1), unit.LabelsUsed())
	require.Equal(t, uint64(1), next.Next())

	merged := emit.New(in, emit.DupLabelsFrom(5))
	require.NoError(t, merged.Merge(unit))
	require.Equal(t, uint64(6), merged.Labels().Next())

	direct := emit.New(in, emit.DupLabelsFrom(5))
	require.NoError(t, direct.EmitSpec(0))

	want := "app::main {\n  _\n  3 = dup5(w0 w1)\n  w0 = w1\n}\n"
	require.Equal(t, want, netText(t, merged.Nets(), "app::main"))
	require.Equal(t, want, netText(t, direct.Nets(), "app::main"))
}

func TestEmitter_EmitMain(t *testing.T) {
	v := &vir.Vir{
		Interfaces: []vir.Interface{fnEntry()},
		Stages:     []vir.Stage{{ID: 0, Interface: 0}},
		Closures:   []vir.InterfaceID{0},
	}
	in := newInput([]string{"app::main"}, []*specs.Spec{{Fragment: 0, Index: 2}}, []*vir.Vir{v})
	e := emit.New(in, emit.DupLabels{})
	require.NoError(t, e.EmitSpec(0))
	require.NoError(t, e.EmitMain(0))
	require.Equal(t, ":: {\n  app::main::2\n}\n", netText(t, e.Nets(), emit.MainNet))

	v.Closures = nil
	err := emit.New(in, emit.DupLabels{}).EmitMain(0)
	require.ErrorIs(t, err, emit.ErrInvariant)
}

func TestInvariantError_Message(t *testing.T) {
	err := &emit.InvariantError{Spec: 2, Stage: vir.NoStageID, Msg: "boom"}
	require.Equal(t, "emit: spec 2: internal invariant violated: boom", err.Error())
	err.Stage = 3
	require.Equal(t, "emit: spec 2, stage s3: internal invariant violated: boom", err.Error())
}
