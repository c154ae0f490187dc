// Package version describes the vine build. The variables can be
// overridden at build time via -ldflags.
package version

import (
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Parsed returns Version as a semantic version.
func Parsed() (*semver.Version, error) {
	return semver.NewVersion(Version)
}

// Pretty renders Version with each numeric component colored. Versions that
// do not parse are returned as is.
func Pretty() string {
	v, err := Parsed()
	if err != nil {
		return Version
	}
	out := versionMajorColor.Sprint(strconv.FormatUint(v.Major(), 10)) + "." +
		versionMinorColor.Sprint(strconv.FormatUint(v.Minor(), 10)) + "." +
		versionPatchColor.Sprint(strconv.FormatUint(v.Patch(), 10))
	if pre := v.Prerelease(); pre != "" {
		out += "-" + pre
	}
	if meta := v.Metadata(); meta != "" {
		out += "+" + meta
	}
	return out
}
