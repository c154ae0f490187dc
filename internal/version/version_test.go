package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultParses(t *testing.T) {
	v, err := Parsed()
	if err != nil {
		t.Fatalf("default version %q does not parse: %v", Version, err)
	}
	if v.Prerelease() != "dev" {
		t.Errorf("prerelease = %q, want dev", v.Prerelease())
	}
}

func TestPretty(t *testing.T) {
	prevNoColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prevNoColor }()

	orig := Version
	defer func() { Version = orig }()

	tests := []struct {
		in   string
		want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"v2.0.0", "2.0.0"},
		{"not-a-version", "not-a-version"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Pretty(); got != tt.want {
			t.Errorf("Pretty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
