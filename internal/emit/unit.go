package emit

import (
	"maps"
	"slices"
	"strconv"

	"vine/internal/ivy"
	"vine/internal/specs"
	"vine/internal/vir"
)

// dupNode remembers a duplicator created by this unit so its label can be
// shifted when units are emitted out of order.
type dupNode struct {
	node *ivy.Tree
	n    uint64
}

// unitEmitter emits the networks of one spec. Its state is per network
// except for labels and dups, which span the whole unit.
type unitEmitter struct {
	in     *Input
	specID specs.SpecID
	spec   *specs.Spec
	vir    *vir.Vir

	locals map[vir.Local]*localState
	pairs  []ivy.Pair

	// stage is the stage whose ports are being emitted; its wire ids are
	// shifted by wireOffset and must stay below wireLimit.
	stage      vir.StageID
	wireOffset int
	wireLimit  int
	wires      int

	labels DupLabels
	dups   []dupNode
}

func (u *unitEmitter) pair(a, b *ivy.Tree) {
	u.pairs = append(u.pairs, ivy.Pair{A: a, B: b})
}

func (u *unitEmitter) newWire() (*ivy.Tree, *ivy.Tree) {
	name := "w" + strconv.Itoa(u.wires)
	u.wires++
	return ivy.Var(name), ivy.Var(name)
}

func (u *unitEmitter) local(l vir.Local) *localState {
	st, ok := u.locals[l]
	if !ok {
		st = &localState{}
		u.locals[l] = st
	}
	return st
}

// finishLocals resolves the given locals, if open, in the order given.
func (u *unitEmitter) finishLocals(locals []vir.Local) {
	for _, l := range locals {
		if st, ok := u.locals[l]; ok {
			delete(u.locals, l)
			u.finishLocal(st)
		}
	}
}

// finishAll resolves every open local in ascending order.
func (u *unitEmitter) finishAll() {
	u.finishLocals(slices.Sorted(maps.Keys(u.locals)))
}

// emitNet emits the network rooted at stage.
func (u *unitEmitter) emitNet(stage *vir.Stage, iface *vir.Interface) *ivy.Net {
	u.stage = stage.ID
	u.wireOffset = 0
	u.wireLimit = int(stage.Wires)
	u.wires = int(stage.Wires)

	root := u.emitInterface(iface, true)
	root = u.emitHeader(&stage.Header, root)
	u.emitStage(stage)
	u.finishAll()

	net := &ivy.Net{Root: root, Pairs: u.pairs}
	u.pairs = nil
	return net
}

func (u *unitEmitter) emitStage(stage *vir.Stage) {
	u.finishLocals(stage.Declarations)
	for i := range stage.Steps {
		u.emitStep(&stage.Steps[i])
	}
}

// inlineStage splices stage into the current network, renumbering its wires
// past every wire allocated so far.
func (u *unitEmitter) inlineStage(stage *vir.Stage) {
	prevStage, prevOffset, prevLimit := u.stage, u.wireOffset, u.wireLimit
	u.stage = stage.ID
	u.wireOffset = u.wires
	u.wireLimit = int(stage.Wires)
	u.wires += int(stage.Wires)

	u.emitStage(stage)

	u.stage, u.wireOffset, u.wireLimit = prevStage, prevOffset, prevLimit
}

func (u *unitEmitter) emitTransfer(t *vir.Transfer) {
	iface := u.vir.Interface(t.Interface)
	if iface == nil {
		u.invariantf("transfer to missing interface i%d", t.Interface)
	}
	if iface.Inline() {
		u.inlineStage(u.mustStage(iface.Unconditional))
		return
	}

	target := u.emitInterface(iface, false)

	switch iface.Kind {
	case vir.InterfaceUnconditional:
		u.pair(u.emitStageNode(iface.Unconditional), target)
	case vir.InterfaceBranch:
		u.pair(u.transferData(t, iface), ivy.Branch(
			u.emitStageNode(iface.Branch.Zero),
			u.emitStageNode(iface.Branch.NonZero),
			target,
		))
	case vir.InterfaceMatch:
		arms := make([]*ivy.Tree, 0, len(iface.Match.Stages)+1)
		for _, s := range iface.Match.Stages {
			arms = append(arms, u.emitStageNode(s))
		}
		u.pair(u.transferData(t, iface), ivy.NAry(labelEnum, append(arms, target)...))
	case vir.InterfaceFn:
		u.pair(u.transferData(t, iface), target)
	default:
		u.invariantf("interface i%d has unknown kind %d", iface.ID, iface.Kind)
	}
}

func (u *unitEmitter) transferData(t *vir.Transfer, iface *vir.Interface) *ivy.Tree {
	if !t.HasData {
		u.invariantf("transfer to %s interface i%d carries no data", iface.Kind, iface.ID)
	}
	return u.emitPort(t.Data)
}

// emitInterface wires the locals crossing iface. inside selects the side
// realized by the interface's own network root; transfers use the other.
func (u *unitEmitter) emitInterface(iface *vir.Interface, inside bool) *ivy.Tree {
	var ports []*ivy.Tree
	for _, l := range iface.WireLocals() {
		up := iface.Wires[l]
		usage := up.Interior
		if inside {
			usage = up.Exterior
		}
		switch usage {
		case vir.UsageErase:
			u.local(l).erase()
		case vir.UsageMut:
			a0, a1 := u.newWire()
			b0, b1 := u.newWire()
			u.local(l).mutate(a0, b0)
			if inside {
				ports = append(ports, ivy.Comb(labelIface, b1, a1))
			} else {
				ports = append(ports, ivy.Comb(labelIface, a1, b1))
			}
		case vir.UsageSet, vir.UsageTake, vir.UsageGet, vir.UsageHedge:
			w0, w1 := u.newWire()
			st := u.local(l)
			switch usage {
			case vir.UsageSet:
				st.set(w0)
			case vir.UsageTake:
				st.take(w0)
			case vir.UsageGet:
				st.get(w0)
			default:
				st.hedge(w0)
			}
			ports = append(ports, w1)
		default:
			u.invariantf("interface i%d: local l%d has usage %s", iface.ID, l, usage)
		}
	}
	return ivy.NAry(labelIface, ports...)
}

func (u *unitEmitter) emitStageNode(stage vir.StageID) *ivy.Tree {
	return ivy.Global(u.stageName(u.specID, stage))
}

func (u *unitEmitter) mustStage(id vir.StageID) *vir.Stage {
	st := u.vir.Stage(id)
	if st == nil {
		u.invariantf("stage s%d does not exist", id)
	}
	return st
}

func (u *unitEmitter) stageName(spec specs.SpecID, stage vir.StageID) string {
	name, err := u.in.StageName(spec, stage)
	if err != nil {
		u.invariantf("%v", err)
	}
	return name
}

func (u *unitEmitter) emitPort(p vir.Port) *ivy.Tree {
	switch p.Kind {
	case vir.PortErase, vir.PortError:
		return ivy.Erase()
	case vir.PortN32:
		return ivy.N32(p.N32)
	case vir.PortF32:
		return ivy.F32(p.F32)
	case vir.PortWire:
		if p.Wire < 0 || int(p.Wire) >= u.wireLimit {
			u.invariantf("wire w%d escapes its stage (%d wires)", p.Wire, u.wireLimit)
		}
		return ivy.Var("w" + strconv.Itoa(u.wireOffset+int(p.Wire)))
	case vir.PortConstRel:
		rel := u.spec.Rels.Const(p.ConstRel)
		if rel.Unresolved {
			return ivy.Erase()
		}
		return ivy.Global(u.stageName(rel.Spec, 0))
	}
	u.invariantf("port has unknown kind %d", p.Kind)
	return nil
}

func (u *unitEmitter) emitPorts(ps []vir.Port) []*ivy.Tree {
	out := make([]*ivy.Tree, len(ps))
	for i, p := range ps {
		out[i] = u.emitPort(p)
	}
	return out
}

func (u *unitEmitter) emitHeader(h *vir.Header, root *ivy.Tree) *ivy.Tree {
	switch h.Kind {
	case vir.HeaderNone:
		return root
	case vir.HeaderMatch:
		if !h.Match.HasData {
			return root
		}
		return ivy.Comb(labelEnum, u.emitPort(h.Match.Data), root)
	case vir.HeaderFn:
		children := append([]*ivy.Tree{root}, u.emitPorts(h.Fn.Params)...)
		return ivy.NAry(labelFn, append(children, u.emitPort(h.Fn.Result))...)
	case vir.HeaderFork:
		return ivy.NAry(labelFn,
			ivy.Erase(),
			ivy.Comb(labelRef, root, u.emitPort(h.Fork.Latter)),
			u.emitPort(h.Fork.Former),
		)
	case vir.HeaderDrop:
		return ivy.NAry(labelFn, ivy.Erase(), root, ivy.Erase())
	}
	u.invariantf("header has unknown kind %d", h.Kind)
	return nil
}

func (u *unitEmitter) emitStep(step *vir.Step) {
	switch step.Kind {
	case vir.StepInvoke:
		u.emitInvoke(step.Invoke.Local, &step.Invoke.Invocation)
	case vir.StepTransfer:
		u.emitTransfer(&step.Transfer)
	case vir.StepDiverge:
		u.invariantf("divergence to L%d reached emission", step.Diverge.Layer)
	case vir.StepLink:
		u.pair(u.emitPort(step.Link.A), u.emitPort(step.Link.B))
	case vir.StepCall:
		c := &step.Call
		fn := ivy.Erase()
		if rel := u.spec.Rels.Fn(c.Fn); !rel.Unresolved {
			fn = ivy.Global(u.stageName(rel.Spec, rel.Stage))
		}
		args := append([]*ivy.Tree{u.emitPort(c.Recv)}, u.emitPorts(c.Args)...)
		u.pair(fn, ivy.NAry(labelFn, append(args, u.emitPort(c.Ret))...))
	case vir.StepComposite:
		u.pair(u.emitPort(step.Composite.Port), ivy.NAry(labelTuple, u.emitPorts(step.Composite.Fields)...))
	case vir.StepEnum:
		e := &step.Enum
		def := u.in.Chart.Enum(e.Enum)
		if def == nil {
			u.invariantf("enum E%d is not in the chart", e.Enum)
		}
		var fields []*ivy.Tree
		if e.HasFields {
			fields = append(fields, u.emitPort(e.Fields))
		}
		u.pair(u.emitPort(e.Port), u.makeEnum(e.Variant, len(def.Variants), fields))
	case vir.StepRef:
		r := &step.Ref
		u.pair(u.emitPort(r.Ref), ivy.Comb(labelRef, u.emitPort(r.Value), u.emitPort(r.Space)))
	case vir.StepExtFn:
		f := &step.ExtFn
		u.pair(u.emitPort(f.Lhs), ivy.ExtFn(f.Name, f.Swap, u.emitPort(f.Rhs), u.emitPort(f.Out)))
	case vir.StepDup:
		d := &step.Dup
		u.pair(u.emitPort(d.Value), u.dup(u.emitPort(d.A), u.emitPort(d.B)))
	case vir.StepList:
		u.pair(u.emitPort(step.List.Port), u.emitList(u.emitPorts(step.List.Elems)))
	case vir.StepString:
		u.emitString(u.emitPort(step.String.Port), &step.String)
	case vir.StepInlineIvy:
		s := &step.InlineIvy
		if s.Net == nil {
			u.invariantf("inline network is nil")
		}
		for _, b := range s.Binds {
			u.pair(ivy.Var(b.Var), u.emitPort(b.Port))
		}
		net := s.Net.Clone()
		u.pair(u.emitPort(s.Out), net.Root)
		u.pairs = append(u.pairs, net.Pairs...)
	default:
		u.invariantf("step has unknown kind %d", step.Kind)
	}
}

func (u *unitEmitter) emitInvoke(l vir.Local, inv *vir.Invocation) {
	switch inv.Kind {
	case vir.InvokeErase:
		u.local(l).erase()
	case vir.InvokeGet:
		u.local(l).get(u.emitPort(inv.Port))
	case vir.InvokeHedge:
		u.local(l).hedge(u.emitPort(inv.Port))
	case vir.InvokeTake:
		u.local(l).take(u.emitPort(inv.Port))
	case vir.InvokeSet:
		u.local(l).set(u.emitPort(inv.Port))
	case vir.InvokeMut:
		u.local(l).mutate(u.emitPort(inv.Port), u.emitPort(inv.New))
	default:
		u.invariantf("invocation of l%d has unknown kind %d", l, inv.Kind)
	}
}
