package vir

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of one unit.
// Returns error if any invariant is violated.
func Validate(v *Vir) error {
	if v == nil {
		return nil
	}

	var errs []error

	// 1. Ids agree with positions
	if err := validateIDs(v); err != nil {
		errs = append(errs, err)
	}

	// 2. Interface targets and stage owners exist
	if err := validateTargets(v); err != nil {
		errs = append(errs, err)
	}

	// 3. Wires stay inside their stage
	if err := validateWires(v); err != nil {
		errs = append(errs, err)
	}

	// 4. Transfers, locals and closures
	if err := validateSteps(v); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateIDs(v *Vir) error {
	var errs []error
	for i := range v.Interfaces {
		if int(v.Interfaces[i].ID) != i {
			errs = append(errs, fmt.Errorf("i%d: interface id is %d", i, v.Interfaces[i].ID))
		}
	}
	for i := range v.Stages {
		if int(v.Stages[i].ID) != i {
			errs = append(errs, fmt.Errorf("s%d: stage id is %d", i, v.Stages[i].ID))
		}
	}
	for i := range v.Layers {
		l := &v.Layers[i]
		if int(l.ID) != i {
			errs = append(errs, fmt.Errorf("L%d: layer id is %d", i, l.ID))
		}
		if l.Parent != NoLayerID && (l.Parent < 0 || int(l.Parent) >= len(v.Layers)) {
			errs = append(errs, fmt.Errorf("L%d: parent layer L%d does not exist", i, l.Parent))
		}
	}
	return errors.Join(errs...)
}

func validateTargets(v *Vir) error {
	var errs []error
	for i := range v.Interfaces {
		iface := &v.Interfaces[i]
		for _, s := range iface.Stages() {
			if v.Stage(s) == nil {
				errs = append(errs, fmt.Errorf("i%d: %s target s%d does not exist", i, iface.Kind, s))
			}
		}
		for _, local := range iface.WireLocals() {
			usage := iface.Wires[local]
			if local < 0 || local >= v.Locals {
				errs = append(errs, fmt.Errorf("i%d: wire for unknown local l%d", i, local))
			}
			if usage.Interior == UsageNone || usage.Exterior == UsageNone {
				errs = append(errs, fmt.Errorf("i%d: local l%d has no usage", i, local))
			}
		}
	}
	for i := range v.Stages {
		if v.Interface(v.Stages[i].Interface) == nil {
			errs = append(errs, fmt.Errorf("s%d: interface i%d does not exist", i, v.Stages[i].Interface))
		}
	}
	return errors.Join(errs...)
}

func validateWires(v *Vir) error {
	var errs []error
	for i := range v.Stages {
		st := &v.Stages[i]
		check := func(p Port, context string) {
			if p.Kind == PortWire && (p.Wire < 0 || p.Wire >= st.Wires) {
				errs = append(errs, fmt.Errorf("s%d: %s: wire w%d outside stage scope (%d wires)", i, context, p.Wire, st.Wires))
			}
		}
		for _, p := range st.Header.Ports() {
			check(p, "header")
		}
		for j := range st.Steps {
			for _, p := range st.Steps[j].Ports() {
				check(p, fmt.Sprintf("step %d (%s)", j, st.Steps[j].Kind))
			}
		}
	}
	return errors.Join(errs...)
}

func validateSteps(v *Vir) error {
	var errs []error

	checkTransfer := func(t Transfer, context string) {
		iface := v.Interface(t.Interface)
		if iface == nil {
			errs = append(errs, fmt.Errorf("%s: transfer to missing interface i%d", context, t.Interface))
			return
		}
		if iface.Kind != InterfaceUnconditional && !t.HasData {
			errs = append(errs, fmt.Errorf("%s: transfer to %s interface i%d carries no data", context, iface.Kind, t.Interface))
		}
	}

	for i := range v.Stages {
		st := &v.Stages[i]
		for _, local := range st.Declarations {
			if local < 0 || local >= v.Locals {
				errs = append(errs, fmt.Errorf("s%d: declares unknown local l%d", i, local))
			}
		}
		for j := range st.Steps {
			step := &st.Steps[j]
			context := fmt.Sprintf("s%d: step %d", i, j)
			switch step.Kind {
			case StepInvoke:
				if step.Invoke.Local < 0 || step.Invoke.Local >= v.Locals {
					errs = append(errs, fmt.Errorf("%s: unknown local l%d", context, step.Invoke.Local))
				}
			case StepTransfer:
				checkTransfer(step.Transfer, context)
			case StepDiverge:
				if step.Diverge.HasTransfer {
					checkTransfer(step.Diverge.Transfer, context)
				}
			case StepInlineIvy:
				if step.InlineIvy.Net == nil {
					errs = append(errs, fmt.Errorf("%s: inline network is nil", context))
				}
			}
		}
	}

	for i, c := range v.Closures {
		iface := v.Interface(c)
		if iface == nil || iface.Kind != InterfaceFn {
			errs = append(errs, fmt.Errorf("closure %d: i%d is not a fn interface", i, c))
		}
	}
	return errors.Join(errs...)
}
