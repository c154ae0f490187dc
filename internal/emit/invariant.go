package emit

import (
	"errors"
	"fmt"

	"vine/internal/specs"
	"vine/internal/vir"
)

// ErrInvariant matches every *InvariantError.
var ErrInvariant = errors.New("emit: internal invariant violated")

// InvariantError reports input that upstream passes should have ruled out.
// It is never a user-facing diagnostic.
type InvariantError struct {
	Spec  specs.SpecID
	Stage vir.StageID
	Msg   string
	// Err is the underlying failure, if any.
	Err error
}

func (e *InvariantError) Error() string {
	if e.Stage == vir.NoStageID {
		return fmt.Sprintf("emit: spec %d: internal invariant violated: %s", e.Spec, e.Msg)
	}
	return fmt.Sprintf("emit: spec %d, stage s%d: internal invariant violated: %s", e.Spec, e.Stage, e.Msg)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// invariantf aborts the current unit. The panic is recovered at the unit
// boundary and returned as an error.
func (u *unitEmitter) invariantf(format string, args ...any) {
	panic(&InvariantError{Spec: u.specID, Stage: u.stage, Msg: fmt.Sprintf(format, args...)})
}
