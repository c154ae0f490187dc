package vir

import "vine/internal/ivy"

// PortKind distinguishes port leaves.
type PortKind uint8

const (
	PortErase PortKind = iota
	PortConstRel
	PortN32
	PortF32
	PortWire
	// PortError stands in for a value whose construction already failed
	// with a reported diagnostic.
	PortError
)

// Port is a leaf reference used within one stage.
type Port struct {
	Kind     PortKind
	ConstRel ConstRelID
	N32      uint32
	F32      float32
	Wire     WireID
}

func ErasePort() Port { return Port{Kind: PortErase} }
func ErrorPort() Port { return Port{Kind: PortError} }
func N32Port(n uint32) Port { return Port{Kind: PortN32, N32: n} }
func F32Port(f float32) Port { return Port{Kind: PortF32, F32: f} }
func WirePort(w WireID) Port { return Port{Kind: PortWire, Wire: w} }
func ConstRelPort(r ConstRelID) Port { return Port{Kind: PortConstRel, ConstRel: r} }

// Transfer exits the current stage and resumes at an interface.
type Transfer struct {
	Interface InterfaceID
	HasData   bool
	Data      Port
}

// Unconditional returns a transfer carrying no data.
func Unconditional(iface InterfaceID) Transfer {
	return Transfer{Interface: iface}
}

// TransferWith returns a transfer carrying a discriminant or closure port.
func TransferWith(iface InterfaceID, data Port) Transfer {
	return Transfer{Interface: iface, HasData: true, Data: data}
}

// HeaderKind describes how a stage's free ports are shaped.
type HeaderKind uint8

const (
	HeaderNone HeaderKind = iota
	HeaderMatch
	HeaderFn
	HeaderFork
	HeaderDrop
)

type MatchHeader struct {
	HasData bool
	Data    Port
}

type FnHeader struct {
	Params []Port
	Result Port
}

type ForkHeader struct {
	Former Port
	Latter Port
}

type Header struct {
	Kind  HeaderKind
	Match MatchHeader
	Fn    FnHeader
	Fork  ForkHeader
}

// Ports returns the ports referenced by the header.
func (h *Header) Ports() []Port {
	switch h.Kind {
	case HeaderMatch:
		if h.Match.HasData {
			return []Port{h.Match.Data}
		}
	case HeaderFn:
		out := make([]Port, 0, len(h.Fn.Params)+1)
		out = append(out, h.Fn.Params...)
		return append(out, h.Fn.Result)
	case HeaderFork:
		return []Port{h.Fork.Former, h.Fork.Latter}
	}
	return nil
}

// InvocationKind enumerates the operations on a local.
type InvocationKind uint8

const (
	InvokeErase InvocationKind = iota
	InvokeGet
	InvokeHedge
	InvokeTake
	InvokeSet
	InvokeMut
)

func (k InvocationKind) String() string {
	switch k {
	case InvokeErase:
		return "erase"
	case InvokeGet:
		return "get"
	case InvokeHedge:
		return "hedge"
	case InvokeTake:
		return "take"
	case InvokeSet:
		return "set"
	case InvokeMut:
		return "mut"
	default:
		return "unknown"
	}
}

// Invocation is one operation on a local. Mut reads the old value through
// Port and supplies the new one through New.
type Invocation struct {
	Kind InvocationKind
	Port Port
	New  Port
}

// Ports returns the ports referenced by the invocation.
func (inv *Invocation) Ports() []Port {
	switch inv.Kind {
	case InvokeErase:
		return nil
	case InvokeMut:
		return []Port{inv.Port, inv.New}
	default:
		return []Port{inv.Port}
	}
}

// StepKind enumerates primitive operations.
type StepKind uint8

const (
	StepInvoke StepKind = iota
	StepTransfer
	StepDiverge
	StepLink
	StepCall
	StepComposite
	StepEnum
	StepRef
	StepExtFn
	StepDup
	StepList
	StepString
	StepInlineIvy
)

func (k StepKind) String() string {
	switch k {
	case StepInvoke:
		return "invoke"
	case StepTransfer:
		return "transfer"
	case StepDiverge:
		return "diverge"
	case StepLink:
		return "link"
	case StepCall:
		return "call"
	case StepComposite:
		return "composite"
	case StepEnum:
		return "enum"
	case StepRef:
		return "ref"
	case StepExtFn:
		return "ext_fn"
	case StepDup:
		return "dup"
	case StepList:
		return "list"
	case StepString:
		return "string"
	case StepInlineIvy:
		return "inline_ivy"
	default:
		return "unknown"
	}
}

type InvokeStep struct {
	Local      Local
	Invocation Invocation
}

type DivergeStep struct {
	Layer       LayerID
	HasTransfer bool
	Transfer    Transfer
}

type LinkStep struct {
	A Port
	B Port
}

type CallStep struct {
	Fn   FnRelID
	Recv Port
	Args []Port
	Ret  Port
}

type CompositeStep struct {
	Port   Port
	Fields []Port
}

type EnumStep struct {
	Enum      EnumID
	Variant   VariantID
	Port      Port
	HasFields bool
	Fields    Port
}

type RefStep struct {
	Ref   Port
	Value Port
	Space Port
}

// ExtFnStep applies an external operator: Out = Name(Lhs, Rhs).
type ExtFnStep struct {
	Name string
	Swap bool
	Lhs  Port
	Rhs  Port
	Out  Port
}

type DupStep struct {
	Value Port
	A     Port
	B     Port
}

type ListStep struct {
	Port  Port
	Elems []Port
}

// StringSegment is an interpolated value followed by literal text.
type StringSegment struct {
	Value Port
	Text  string
}

type StringStep struct {
	Port     Port
	Init     string
	Segments []StringSegment
}

// IvyBind binds a free variable of an inline fragment to a port.
type IvyBind struct {
	Var  string
	Port Port
}

type InlineIvyStep struct {
	Binds []IvyBind
	Out   Port
	Net   *ivy.Net
}

// Step is one primitive operation; Kind selects the populated payload.
type Step struct {
	Kind StepKind

	Invoke    InvokeStep
	Transfer  Transfer
	Diverge   DivergeStep
	Link      LinkStep
	Call      CallStep
	Composite CompositeStep
	Enum      EnumStep
	Ref       RefStep
	ExtFn     ExtFnStep
	Dup       DupStep
	List      ListStep
	String    StringStep
	InlineIvy InlineIvyStep
}

// Ports returns the ports referenced by the step.
func (s *Step) Ports() []Port {
	switch s.Kind {
	case StepInvoke:
		return s.Invoke.Invocation.Ports()
	case StepTransfer:
		return s.Transfer.ports()
	case StepDiverge:
		if s.Diverge.HasTransfer {
			return s.Diverge.Transfer.ports()
		}
		return nil
	case StepLink:
		return []Port{s.Link.A, s.Link.B}
	case StepCall:
		out := make([]Port, 0, len(s.Call.Args)+2)
		out = append(out, s.Call.Recv)
		out = append(out, s.Call.Args...)
		return append(out, s.Call.Ret)
	case StepComposite:
		return append([]Port{s.Composite.Port}, s.Composite.Fields...)
	case StepEnum:
		if s.Enum.HasFields {
			return []Port{s.Enum.Port, s.Enum.Fields}
		}
		return []Port{s.Enum.Port}
	case StepRef:
		return []Port{s.Ref.Ref, s.Ref.Value, s.Ref.Space}
	case StepExtFn:
		return []Port{s.ExtFn.Lhs, s.ExtFn.Rhs, s.ExtFn.Out}
	case StepDup:
		return []Port{s.Dup.Value, s.Dup.A, s.Dup.B}
	case StepList:
		return append([]Port{s.List.Port}, s.List.Elems...)
	case StepString:
		out := []Port{s.String.Port}
		for _, seg := range s.String.Segments {
			out = append(out, seg.Value)
		}
		return out
	case StepInlineIvy:
		out := make([]Port, 0, len(s.InlineIvy.Binds)+1)
		for _, b := range s.InlineIvy.Binds {
			out = append(out, b.Port)
		}
		return append(out, s.InlineIvy.Out)
	}
	return nil
}

func (t Transfer) ports() []Port {
	if t.HasData {
		return []Port{t.Data}
	}
	return nil
}
