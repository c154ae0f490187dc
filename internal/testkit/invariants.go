package testkit

import (
	"errors"
	"fmt"
	"slices"

	"vine/internal/ivy"
)

// CheckNetLinear checks that every wire of a network is used exactly twice:
// once at each end.
func CheckNetLinear(name string, n *ivy.Net) error {
	if n == nil {
		return fmt.Errorf("%s: nil network", name)
	}
	if n.Root == nil {
		return fmt.Errorf("%s: nil root", name)
	}
	counts := make(map[string]int)
	var nilNodes int
	n.Walk(func(t *ivy.Tree) {
		if t.Kind == ivy.TreeVar {
			counts[t.Label]++
		}
	})
	for _, p := range n.Pairs {
		if p.A == nil || p.B == nil {
			nilNodes++
		}
	}
	var errs []error
	if nilNodes > 0 {
		errs = append(errs, fmt.Errorf("%s: %d pairs with a nil side", name, nilNodes))
	}
	vars := make([]string, 0, len(counts))
	for v := range counts {
		vars = append(vars, v)
	}
	slices.Sort(vars)
	for _, v := range vars {
		if counts[v] != 2 {
			errs = append(errs, fmt.Errorf("%s: wire %s used %d times", name, v, counts[v]))
		}
	}
	return errors.Join(errs...)
}

// CheckNetsLinear runs CheckNetLinear over every network.
func CheckNetsLinear(ns *ivy.Nets) error {
	var errs []error
	for _, name := range ns.Names() {
		n, _ := ns.Get(name)
		if err := CheckNetLinear(name, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
