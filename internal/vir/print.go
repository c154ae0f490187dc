package vir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"vine/internal/ivy"
)

// Dump writes a human-readable listing of one unit.
func Dump(w io.Writer, name string, v *Vir) error {
	if w == nil || v == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "unit %s: locals=%d layers=%d interfaces=%d stages=%d\n",
		name, v.Locals, len(v.Layers), len(v.Interfaces), len(v.Stages))

	for i := range v.Interfaces {
		iface := &v.Interfaces[i]
		fmt.Fprintf(&sb, "  i%d: %s incoming=%d", iface.ID, formatInterfaceKind(iface), iface.Incoming)
		if iface.Inline() {
			sb.WriteString(" inline")
		}
		sb.WriteByte('\n')
		for _, local := range iface.WireLocals() {
			u := iface.Wires[local]
			fmt.Fprintf(&sb, "    l%d: %s/%s\n", local, u.Interior, u.Exterior)
		}
	}

	for i := range v.Stages {
		st := &v.Stages[i]
		fmt.Fprintf(&sb, "  s%d (i%d", st.ID, st.Interface)
		if st.Layer != NoLayerID {
			fmt.Fprintf(&sb, ", L%d", st.Layer)
		}
		fmt.Fprintf(&sb, ", wires=%d):\n", st.Wires)
		if h := formatHeader(&st.Header); h != "" {
			fmt.Fprintf(&sb, "    header %s\n", h)
		}
		for _, local := range st.Declarations {
			fmt.Fprintf(&sb, "    decl l%d\n", local)
		}
		for j := range st.Steps {
			fmt.Fprintf(&sb, "    %s\n", FormatStep(&st.Steps[j]))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatInterfaceKind(iface *Interface) string {
	switch iface.Kind {
	case InterfaceUnconditional:
		return fmt.Sprintf("goto s%d", iface.Unconditional)
	case InterfaceBranch:
		return fmt.Sprintf("branch zero=s%d nonzero=s%d", iface.Branch.Zero, iface.Branch.NonZero)
	case InterfaceMatch:
		return fmt.Sprintf("match E%d %s", iface.Match.Enum, formatStages(iface.Match.Stages))
	case InterfaceFn:
		return fmt.Sprintf("fn call=s%d fork=%s drop=%s", iface.Fn.Call, formatOptStage(iface.Fn.Fork), formatOptStage(iface.Fn.Drop))
	}
	return "?"
}

func formatStages(ids []StageID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "s" + strconv.Itoa(int(id))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatOptStage(id StageID) string {
	if id == NoStageID {
		return "-"
	}
	return "s" + strconv.Itoa(int(id))
}

func formatHeader(h *Header) string {
	switch h.Kind {
	case HeaderMatch:
		if h.Match.HasData {
			return "match " + FormatPort(h.Match.Data)
		}
		return "match"
	case HeaderFn:
		return fmt.Sprintf("fn(%s) -> %s", formatPorts(h.Fn.Params), FormatPort(h.Fn.Result))
	case HeaderFork:
		return fmt.Sprintf("fork %s %s", FormatPort(h.Fork.Former), FormatPort(h.Fork.Latter))
	case HeaderDrop:
		return "drop"
	}
	return ""
}

// FormatPort renders a port: `_` erase, `err`, `c<n>` constant reference,
// literals, `w<n>` wires.
func FormatPort(p Port) string {
	switch p.Kind {
	case PortErase:
		return "_"
	case PortError:
		return "err"
	case PortConstRel:
		return "c" + strconv.Itoa(int(p.ConstRel))
	case PortN32:
		return strconv.FormatUint(uint64(p.N32), 10)
	case PortF32:
		return strconv.FormatFloat(float64(p.F32), 'g', -1, 32) + "f"
	case PortWire:
		return "w" + strconv.Itoa(int(p.Wire))
	}
	return "?"
}

func formatPorts(ps []Port) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = FormatPort(p)
	}
	return strings.Join(parts, " ")
}

func formatTransfer(t Transfer) string {
	if t.HasData {
		return fmt.Sprintf("i%d %s", t.Interface, FormatPort(t.Data))
	}
	return fmt.Sprintf("i%d", t.Interface)
}

// FormatStep renders one step on a single line.
func FormatStep(s *Step) string {
	switch s.Kind {
	case StepInvoke:
		inv := s.Invoke.Invocation
		if inv.Kind == InvokeErase {
			return fmt.Sprintf("erase l%d", s.Invoke.Local)
		}
		return fmt.Sprintf("%s l%d %s", inv.Kind, s.Invoke.Local, formatPorts(inv.Ports()))
	case StepTransfer:
		return "transfer " + formatTransfer(s.Transfer)
	case StepDiverge:
		if s.Diverge.HasTransfer {
			return fmt.Sprintf("diverge L%d %s", s.Diverge.Layer, formatTransfer(s.Diverge.Transfer))
		}
		return fmt.Sprintf("diverge L%d", s.Diverge.Layer)
	case StepLink:
		return fmt.Sprintf("%s = %s", FormatPort(s.Link.A), FormatPort(s.Link.B))
	case StepCall:
		return fmt.Sprintf("%s = call f%d %s(%s)", FormatPort(s.Call.Ret), s.Call.Fn, FormatPort(s.Call.Recv), formatPorts(s.Call.Args))
	case StepComposite:
		return fmt.Sprintf("%s = tup(%s)", FormatPort(s.Composite.Port), formatPorts(s.Composite.Fields))
	case StepEnum:
		fields := ""
		if s.Enum.HasFields {
			fields = " " + FormatPort(s.Enum.Fields)
		}
		return fmt.Sprintf("%s = enum E%d::%d%s", FormatPort(s.Enum.Port), s.Enum.Enum, s.Enum.Variant, fields)
	case StepRef:
		return fmt.Sprintf("%s = ref(%s %s)", FormatPort(s.Ref.Ref), FormatPort(s.Ref.Value), FormatPort(s.Ref.Space))
	case StepExtFn:
		swap := ""
		if s.ExtFn.Swap {
			swap = "$"
		}
		return fmt.Sprintf("%s = @%s%s(%s %s)", FormatPort(s.ExtFn.Out), s.ExtFn.Name, swap, FormatPort(s.ExtFn.Lhs), FormatPort(s.ExtFn.Rhs))
	case StepDup:
		return fmt.Sprintf("%s %s = dup %s", FormatPort(s.Dup.A), FormatPort(s.Dup.B), FormatPort(s.Dup.Value))
	case StepList:
		return fmt.Sprintf("%s = [%s]", FormatPort(s.List.Port), formatPorts(s.List.Elems))
	case StepString:
		var sb strings.Builder
		sb.WriteString(strconv.Quote(s.String.Init))
		for _, seg := range s.String.Segments {
			fmt.Fprintf(&sb, " {%s} %s", FormatPort(seg.Value), strconv.Quote(seg.Text))
		}
		return fmt.Sprintf("%s = string %s", FormatPort(s.String.Port), sb.String())
	case StepInlineIvy:
		parts := make([]string, len(s.InlineIvy.Binds))
		for i, b := range s.InlineIvy.Binds {
			parts[i] = b.Var + "=" + FormatPort(b.Port)
		}
		root := "_"
		if s.InlineIvy.Net != nil {
			root = ivy.FormatTree(s.InlineIvy.Net.Root)
		}
		return fmt.Sprintf("%s = inline[%s] %s", FormatPort(s.InlineIvy.Out), strings.Join(parts, " "), root)
	}
	return "?"
}
