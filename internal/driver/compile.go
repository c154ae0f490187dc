package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"vine/internal/emit"
	"vine/internal/ivy"
	"vine/internal/observ"
	"vine/internal/specs"
	"vine/internal/trace"
)

// Options control a compilation.
type Options struct {
	// Jobs is the number of specs emitted concurrently. 1 emits
	// sequentially; 0 or less uses GOMAXPROCS.
	Jobs int
	// Labels is the first duplication label to hand out.
	Labels emit.DupLabels
	// Timer, if set, records the duration of each phase.
	Timer *observ.Timer
	// SkipValidate trusts the program's structure.
	SkipValidate bool
}

// Result is a compiled program.
type Result struct {
	Nets *ivy.Nets
	// Labels is the label counter after the last spec.
	Labels emit.DupLabels
	Specs  int
}

// Compile emits every spec of p, in ascending spec order, followed by the
// entry network if p has a main spec. The output does not depend on
// opts.Jobs.
func Compile(ctx context.Context, p *Program, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "compile", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	if !opts.SkipValidate {
		idx := opts.Timer.Begin("validate")
		vspan := trace.Begin(tracer, trace.ScopePass, "validate", trace.CurrentSpan(ctx).SpanID)
		err := p.Validate()
		vspan.End("")
		opts.Timer.End(idx, "")
		if err != nil {
			return nil, fmt.Errorf("invalid program: %w", err)
		}
	}

	in := p.Input()
	ids := p.Specs.IDs()
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	idx := opts.Timer.Begin("emit")
	espan := trace.Begin(tracer, trace.ScopePass, "emit", trace.CurrentSpan(ctx).SpanID)
	ectx := trace.WithSpan(ctx, espan)
	e := emit.New(in, opts.Labels)
	var err error
	if jobs == 1 || len(ids) < 2 {
		err = emitSequential(ectx, e, in, ids)
	} else {
		err = emitParallel(ectx, e, in, ids, jobs)
	}
	espan.WithExtra("specs", strconv.Itoa(len(ids))).
		WithExtra("nets", strconv.Itoa(e.Nets().Len())).
		WithExtra("jobs", strconv.Itoa(jobs)).
		End("")
	opts.Timer.End(idx, fmt.Sprintf("%d specs, %d nets", len(ids), e.Nets().Len()))
	if err != nil {
		return nil, err
	}

	if p.Main != specs.NoSpecID {
		if err := e.EmitMain(p.Main); err != nil {
			return nil, err
		}
		trace.Point(tracer, trace.ScopeNet, "net:"+emit.MainNet, "", trace.CurrentSpan(ctx).SpanID)
	}

	return &Result{Nets: e.Nets(), Labels: e.Labels(), Specs: len(ids)}, nil
}

// emitSequential and emitParallel open one unit span per spec under the
// span carried by ctx.
func emitSequential(ctx context.Context, e *emit.Emitter, in *emit.Input, ids []specs.SpecID) error {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		span := trace.Begin(tracer, trace.ScopeUnit, specName(in, id), parent)
		unit, _, err := emit.EmitSpec(in, id, e.Labels())
		if err == nil {
			err = e.Merge(unit)
		}
		endUnit(tracer, span, unit, err)
		if err != nil {
			return err
		}
	}
	return nil
}

// emitParallel emits every spec from label zero and merges the units in
// spec order, which renumbers their labels exactly as a sequential run
// would have. The first failing spec in spec order is reported.
func emitParallel(ctx context.Context, e *emit.Emitter, in *emit.Input, ids []specs.SpecID, jobs int) error {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	units := make([]*emit.Unit, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(ids)))

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopeUnit, specName(in, id), parent)
			// Each index is written by exactly one goroutine.
			units[i], _, errs[i] = emit.EmitSpec(in, id, emit.DupLabels{})
			endUnit(tracer, span, units[i], errs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range ids {
		if errs[i] != nil {
			return errs[i]
		}
		if err := e.Merge(units[i]); err != nil {
			return err
		}
	}
	return nil
}

func endUnit(tracer trace.Tracer, span *trace.Span, unit *emit.Unit, err error) {
	if err != nil {
		span.End(err.Error())
		return
	}
	for _, name := range unit.Names {
		trace.Point(tracer, trace.ScopeNet, "net:"+name, "", span.ID())
	}
	span.WithExtra("nets", strconv.Itoa(len(unit.Nets))).
		WithExtra("labels", strconv.FormatUint(unit.LabelsUsed(), 10)).
		End("")
}

func specName(in *emit.Input, id specs.SpecID) string {
	name, err := in.StageName(id, 0)
	if err != nil {
		return "spec:" + strconv.Itoa(int(id))
	}
	return "spec:" + name
}
