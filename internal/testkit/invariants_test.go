package testkit_test

import (
	"strings"
	"testing"

	"vine/internal/ivy"
	"vine/internal/testkit"
)

func TestCheckNetLinear(t *testing.T) {
	good := &ivy.Net{
		Root:  ivy.Comb("fn", ivy.Var("w0"), ivy.Var("w1")),
		Pairs: []ivy.Pair{{A: ivy.Var("w1"), B: ivy.ExtFn("n32_add", false, ivy.N32(1), ivy.Var("w0"))}},
	}
	if err := testkit.CheckNetLinear("good", good); err != nil {
		t.Fatalf("linear net rejected: %v", err)
	}

	bad := &ivy.Net{
		Root:  ivy.Var("w0"),
		Pairs: []ivy.Pair{{A: ivy.Var("w1"), B: ivy.Erase()}},
	}
	err := testkit.CheckNetLinear("bad", bad)
	if err == nil {
		t.Fatal("expected error for dangling wires")
	}
	for _, want := range []string{"wire w0 used 1 times", "wire w1 used 1 times"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}
