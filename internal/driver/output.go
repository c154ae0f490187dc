package driver

import (
	"fmt"
	"io"
	"strings"

	"vine/internal/ivy"
)

// OutputFormat selects how emitted networks are written.
type OutputFormat uint8

const (
	OutputText OutputFormat = iota
	OutputMsgpack
)

func (f OutputFormat) String() string {
	switch f {
	case OutputText:
		return "text"
	case OutputMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// ParseOutputFormat converts a string to OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "", "text", "iv":
		return OutputText, nil
	case "msgpack", "mp":
		return OutputMsgpack, nil
	default:
		return OutputText, fmt.Errorf("invalid output format: %q (expected: text|msgpack)", s)
	}
}

// WriteNets writes ns to w in format f.
func WriteNets(w io.Writer, ns *ivy.Nets, f OutputFormat) error {
	switch f {
	case OutputText:
		return ivy.WriteNets(w, ns)
	case OutputMsgpack:
		return ivy.Encode(w, ns)
	default:
		return fmt.Errorf("unknown output format %d", f)
	}
}

// WriteNetsFile writes ns to path atomically.
func WriteNetsFile(path string, ns *ivy.Nets, f OutputFormat) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteNets(w, ns, f)
	})
}
