// Package emit lowers compiled units into named interaction networks.
//
// Each reachable, non-inlined stage of a spec becomes one network. Locals
// are linearized per network: every read and write of a local is gathered
// into epochs which are then resolved into pairs, inserting duplicators or
// erasers so that every wire is used exactly twice.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"vine/internal/chart"
	"vine/internal/ivy"
	"vine/internal/specs"
	"vine/internal/vir"
)

// MainNet is the name of the program's entry network.
const MainNet = "::"

// Input holds the read-only tables emission consults.
type Input struct {
	Chart     *chart.Chart
	Specs     *specs.Specializations
	Fragments []chart.Fragment
	// Units is indexed by fragment id.
	Units []*vir.Vir
}

func (in *Input) unit(frag chart.FragmentID) *vir.Vir {
	if frag < 0 || int(frag) >= len(in.Units) {
		return nil
	}
	return in.Units[frag]
}

// StageName returns the network name of a spec's stage: the fragment path,
// then the spec index unless the spec is singular, then the stage id unless
// it is the entry stage.
func (in *Input) StageName(id specs.SpecID, stage vir.StageID) (string, error) {
	spec := in.Specs.Get(id)
	if spec == nil {
		return "", fmt.Errorf("spec %d does not exist", id)
	}
	if spec.Fragment < 0 || int(spec.Fragment) >= len(in.Fragments) {
		return "", fmt.Errorf("spec %d: fragment %d does not exist", id, spec.Fragment)
	}
	var sb strings.Builder
	sb.WriteString(in.Fragments[spec.Fragment].Path)
	if !spec.Singular {
		sb.WriteString("::")
		sb.WriteString(strconv.Itoa(spec.Index))
	}
	if stage != 0 {
		sb.WriteString("::")
		sb.WriteString(strconv.Itoa(int(stage)))
	}
	return sb.String(), nil
}

// Unit is the output of one spec: its networks in stage order.
type Unit struct {
	Spec  specs.SpecID
	Names []string
	Nets  []*ivy.Net

	// Labels drawn by this unit are [start, end).
	start uint64
	end   uint64
	dups  []dupNode
}

// LabelsUsed returns how many duplication labels the unit consumed.
func (u *Unit) LabelsUsed() uint64 {
	return u.end - u.start
}

// shift renumbers every label of the unit by offset.
func (u *Unit) shift(offset uint64) {
	if offset == 0 {
		return
	}
	for i := range u.dups {
		d := &u.dups[i]
		d.n += offset
		d.node.Label = DupLabel(d.n)
	}
	u.start += offset
	u.end += offset
}

// EmitSpec emits every network of spec id, drawing duplication labels from
// labels, and returns the advanced counter. Invariant violations are
// returned as *InvariantError; on error the counter is returned unchanged.
func EmitSpec(in *Input, id specs.SpecID, labels DupLabels) (unit *Unit, next DupLabels, err error) {
	u := &unitEmitter{
		in:     in,
		specID: id,
		stage:  vir.NoStageID,
		locals: make(map[vir.Local]*localState),
		labels: labels,
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*InvariantError); ok {
				unit, next, err = nil, labels, e
				return
			}
			panic(r)
		}
	}()

	u.spec = in.Specs.Get(id)
	if u.spec == nil {
		u.invariantf("spec does not exist")
	}
	u.vir = in.unit(u.spec.Fragment)
	if u.vir == nil {
		u.invariantf("fragment %d has no unit", u.spec.Fragment)
	}

	unit = &Unit{Spec: id, start: labels.Next()}
	for i := range u.vir.Stages {
		stage := &u.vir.Stages[i]
		iface := u.vir.Interface(stage.Interface)
		if iface == nil {
			u.stage = stage.ID
			u.invariantf("interface i%d does not exist", stage.Interface)
		}
		if iface.Incoming == 0 || iface.Inline() {
			continue
		}
		net := u.emitNet(stage, iface)
		unit.Names = append(unit.Names, u.stageName(id, stage.ID))
		unit.Nets = append(unit.Nets, net)
	}
	unit.end = u.labels.Next()
	unit.dups = u.dups
	return unit, u.labels, nil
}

// Emitter collects the networks of many specs and threads the duplication
// label counter between them.
type Emitter struct {
	in     *Input
	nets   *ivy.Nets
	labels DupLabels
}

// New returns an emitter whose first duplication label is taken from labels.
func New(in *Input, labels DupLabels) *Emitter {
	return &Emitter{in: in, nets: ivy.NewNets(), labels: labels}
}

// Nets returns the networks emitted so far.
func (e *Emitter) Nets() *ivy.Nets { return e.nets }

// Labels returns the label counter as it stands after everything emitted.
func (e *Emitter) Labels() DupLabels { return e.labels }

// EmitSpec emits spec id and adds its networks.
func (e *Emitter) EmitSpec(id specs.SpecID) error {
	unit, _, err := EmitSpec(e.in, id, e.labels)
	if err != nil {
		return err
	}
	return e.Merge(unit)
}

// Merge adds a unit emitted with any starting label. Its labels are shifted
// to continue the emitter's sequence, so merging units in spec order gives
// the same output no matter how they were produced. A unit must be merged
// at most once. A unit whose names collide is rejected whole, leaving the
// emitter unchanged.
func (e *Emitter) Merge(unit *Unit) error {
	seen := make(map[string]bool, len(unit.Names))
	for _, name := range unit.Names {
		if _, dup := e.nets.Get(name); dup || seen[name] {
			err := &ivy.CollisionError{Name: name}
			return &InvariantError{Spec: unit.Spec, Stage: vir.NoStageID, Msg: err.Error(), Err: err}
		}
		seen[name] = true
	}
	unit.shift(e.labels.Next() - unit.start)
	for i, name := range unit.Names {
		if err := e.nets.Insert(name, unit.Nets[i]); err != nil {
			return &InvariantError{Spec: unit.Spec, Stage: vir.NoStageID, Msg: err.Error(), Err: err}
		}
	}
	e.labels = DupLabelsFrom(unit.end)
	return nil
}

// EmitMain adds the entry network, which refers to the call stage of the
// last closure of spec id.
func (e *Emitter) EmitMain(id specs.SpecID) error {
	fail := func(format string, args ...any) error {
		return &InvariantError{Spec: id, Stage: vir.NoStageID, Msg: fmt.Sprintf(format, args...)}
	}
	spec := e.in.Specs.Get(id)
	if spec == nil {
		return fail("main spec does not exist")
	}
	v := e.in.unit(spec.Fragment)
	if v == nil || len(v.Closures) == 0 {
		return fail("main unit has no closure")
	}
	iface := v.Interface(v.Closures[len(v.Closures)-1])
	if iface == nil || iface.Kind != vir.InterfaceFn {
		return fail("main closure is not a fn interface")
	}
	name, err := e.in.StageName(id, iface.Fn.Call)
	if err != nil {
		return fail("%v", err)
	}
	if err := e.nets.Insert(MainNet, &ivy.Net{Root: ivy.Global(name)}); err != nil {
		return &InvariantError{Spec: id, Stage: vir.NoStageID, Msg: err.Error(), Err: err}
	}
	return nil
}
