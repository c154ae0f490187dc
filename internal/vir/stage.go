package vir

// Stage is one basic block. Wires is the number of wire ids the stage has
// allocated; every PortWire in the stage is below it.
type Stage struct {
	ID           StageID
	Interface    InterfaceID
	Layer        LayerID
	Header       Header
	Declarations []Local
	Steps        []Step
	Wires        WireID
}

// NewWire allocates a wire and returns both of its ends.
func (s *Stage) NewWire() (Port, Port) {
	w := s.Wires
	s.Wires++
	return WirePort(w), WirePort(w)
}

// Erase discards a port. Non-wire ports carry nothing to discard.
func (s *Stage) Erase(p Port) {
	if p.Kind == PortWire {
		s.Link(p, ErasePort())
	}
}

func (s *Stage) Link(a, b Port) {
	s.Steps = append(s.Steps, Step{Kind: StepLink, Link: LinkStep{A: a, B: b}})
}

func (s *Stage) Transfer(t Transfer) {
	s.Steps = append(s.Steps, Step{Kind: StepTransfer, Transfer: t})
}

func (s *Stage) invoke(local Local, inv Invocation) {
	s.Steps = append(s.Steps, Step{Kind: StepInvoke, Invoke: InvokeStep{Local: local, Invocation: inv}})
}

func (s *Stage) GetLocalTo(local Local, to Port) {
	s.invoke(local, Invocation{Kind: InvokeGet, Port: to})
}

func (s *Stage) HedgeLocalTo(local Local, to Port) {
	s.invoke(local, Invocation{Kind: InvokeHedge, Port: to})
}

func (s *Stage) TakeLocalTo(local Local, to Port) {
	s.invoke(local, Invocation{Kind: InvokeTake, Port: to})
}

func (s *Stage) SetLocalTo(local Local, to Port) {
	s.invoke(local, Invocation{Kind: InvokeSet, Port: to})
}

func (s *Stage) MutLocalTo(local Local, old, next Port) {
	s.invoke(local, Invocation{Kind: InvokeMut, Port: old, New: next})
}

func (s *Stage) EraseLocal(local Local) {
	s.invoke(local, Invocation{Kind: InvokeErase})
}

// GetLocal reads local and returns the port carrying its value.
func (s *Stage) GetLocal(local Local) Port {
	a, b := s.NewWire()
	s.GetLocalTo(local, a)
	return b
}

// HedgeLocal returns the port through which a value for local is supplied.
func (s *Stage) HedgeLocal(local Local) Port {
	a, b := s.NewWire()
	s.HedgeLocalTo(local, a)
	return b
}

func (s *Stage) TakeLocal(local Local) Port {
	a, b := s.NewWire()
	s.TakeLocalTo(local, a)
	return b
}

func (s *Stage) SetLocal(local Local) Port {
	a, b := s.NewWire()
	s.SetLocalTo(local, a)
	return b
}

// MutLocal returns the port carrying the old value and the port through
// which the new value is supplied.
func (s *Stage) MutLocal(local Local) (Port, Port) {
	o0, o1 := s.NewWire()
	i0, i1 := s.NewWire()
	s.MutLocalTo(local, o0, i0)
	return o1, i1
}

// Dup duplicates p.
func (s *Stage) Dup(p Port) (Port, Port) {
	a0, a1 := s.NewWire()
	b0, b1 := s.NewWire()
	s.Steps = append(s.Steps, Step{Kind: StepDup, Dup: DupStep{Value: p, A: a0, B: b0}})
	return a1, b1
}

// ExtFn applies an external operator and returns its result port.
func (s *Stage) ExtFn(name string, swap bool, lhs, rhs Port) Port {
	o0, o1 := s.NewWire()
	s.Steps = append(s.Steps, Step{Kind: StepExtFn, ExtFn: ExtFnStep{Name: name, Swap: swap, Lhs: lhs, Rhs: rhs, Out: o0}})
	return o1
}

// RefPlace builds a reference cell over a (value, space) place.
func (s *Stage) RefPlace(value, space Port) Port {
	r0, r1 := s.NewWire()
	s.Steps = append(s.Steps, Step{Kind: StepRef, Ref: RefStep{Ref: r0, Value: value, Space: space}})
	return r1
}
