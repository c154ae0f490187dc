package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/vmihailenco/msgpack/v5"

	"vine/internal/chart"
	"vine/internal/emit"
	"vine/internal/specs"
	"vine/internal/vir"
)

// SchemaVersion is written into every saved program. Readers accept any
// program whose schema satisfies schemaConstraint.
const (
	SchemaVersion    = "1.0.0"
	schemaConstraint = "^1"
)

// Program is everything the back end needs: the chart, one unit per
// fragment, the specializations and the entry spec.
type Program struct {
	Schema    string
	Chart     *chart.Chart
	Fragments []chart.Fragment
	Units     []*vir.Vir
	Specs     *specs.Specializations
	// Main is the spec whose last closure is the program's entry, or
	// NoSpecID for a library.
	Main specs.SpecID
}

// Input returns the read-only view emission consults.
func (p *Program) Input() *emit.Input {
	return &emit.Input{
		Chart:     p.Chart,
		Specs:     p.Specs,
		Fragments: p.Fragments,
		Units:     p.Units,
	}
}

// CheckSchema reports whether the program's schema can be read.
func (p *Program) CheckSchema() error {
	v, err := semver.NewVersion(p.Schema)
	if err != nil {
		return fmt.Errorf("program schema %q: %w", p.Schema, err)
	}
	c, err := semver.NewConstraint(schemaConstraint)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("program schema %s is not supported (want %s)", v, schemaConstraint)
	}
	return nil
}

// Validate checks the program's structure: the schema, the tables agreeing
// with each other and every unit's own invariants.
func (p *Program) Validate() error {
	if err := p.CheckSchema(); err != nil {
		return err
	}
	var errs []error
	if len(p.Units) != len(p.Fragments) {
		errs = append(errs, fmt.Errorf("%d units for %d fragments", len(p.Units), len(p.Fragments)))
	}
	for i, v := range p.Units {
		if err := vir.Validate(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.fragmentPath(i), err))
		}
	}
	if p.Specs != nil {
		for _, id := range p.Specs.IDs() {
			sp := p.Specs.Get(id)
			if sp.Fragment < 0 || int(sp.Fragment) >= len(p.Fragments) {
				errs = append(errs, fmt.Errorf("spec %d: fragment %d does not exist", id, sp.Fragment))
				continue
			}
			if int(sp.Fragment) >= len(p.Units) || p.Units[sp.Fragment] == nil {
				errs = append(errs, fmt.Errorf("spec %d: %s has no unit", id, p.fragmentPath(int(sp.Fragment))))
			}
		}
	}
	if p.Main != specs.NoSpecID && p.Specs.Get(p.Main) == nil {
		errs = append(errs, fmt.Errorf("main spec %d does not exist", p.Main))
	}
	return errors.Join(errs...)
}

func (p *Program) fragmentPath(i int) string {
	if i >= 0 && i < len(p.Fragments) {
		return p.Fragments[i].Path
	}
	return fmt.Sprintf("fragment %d", i)
}

// LoadProgram decodes a program and checks that its schema is supported.
func LoadProgram(r io.Reader) (*Program, error) {
	var p Program
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	if err := p.CheckSchema(); err != nil {
		return nil, err
	}
	if p.Specs == nil {
		p.Specs = &specs.Specializations{}
	}
	if p.Chart == nil {
		p.Chart = &chart.Chart{}
	}
	return &p, nil
}

// LoadProgramFile reads a program bundle from path.
func LoadProgramFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := LoadProgram(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save encodes the program, stamping the current schema if none is set.
func (p *Program) Save(w io.Writer) error {
	if p.Schema == "" {
		p.Schema = SchemaVersion
	}
	return msgpack.NewEncoder(w).Encode(p)
}

// SaveProgramFile writes the program to path atomically.
func SaveProgramFile(path string, p *Program) error {
	return writeAtomic(path, p.Save)
}

// writeAtomic writes through a temporary file in the target directory and
// renames it into place.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".vine-tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = write(f); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
