package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/graalkit/pkg/observability"
)

// Options configures a Pipeline. All fields are optional.
type Options struct {
	Logger  logrus.FieldLogger
	Metrics *observability.Metrics
	Tracer  trace.Tracer
}

// Pipeline is a validated stage graph
type Pipeline struct {
	stages  []*Stage
	index   map[string]int
	order   []int
	log     logrus.FieldLogger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// New builds a pipeline from stages, which may be given in any order
func New(opts Options, stages ...Stage) (*Pipeline, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer()
	}

	p := &Pipeline{
		log:     opts.Logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}
	for i := range stages {
		s := stages[i]
		p.stages = append(p.stages, &s)
	}

	index, order, err := validate(p.stages)
	if err != nil {
		return nil, err
	}
	p.index = index
	p.order = order
	return p, nil
}

// Add appends a stage. The pipeline is unchanged if the result would be invalid.
func (p *Pipeline) Add(s Stage) error {
	stages := append(append([]*Stage(nil), p.stages...), &s)
	index, order, err := validate(stages)
	if err != nil {
		return err
	}
	p.stages = stages
	p.index = index
	p.order = order
	return nil
}

// Stage returns the named stage
func (p *Pipeline) Stage(name string) (Stage, bool) {
	i, ok := p.index[name]
	if !ok {
		return Stage{}, false
	}
	return *p.stages[i], true
}

// Order returns stage names in execution order
func (p *Pipeline) Order() []string {
	names := make([]string, len(p.order))
	for i, idx := range p.order {
		names[i] = p.stages[idx].Name
	}
	return names
}

// Plan evaluates every skip predicate without running any stage
func (p *Pipeline) Plan(ctx context.Context) ([]Decision, error) {
	decisions := make([]Decision, 0, len(p.order))
	for _, idx := range p.order {
		s := p.stages[idx]
		run, err := s.shouldRun(ctx)
		if err != nil {
			return decisions, &StageError{Stage: s.Name, Err: err}
		}
		decisions = append(decisions, Decision{Stage: s.Name, Run: run, Output: s.Output})
	}
	return decisions, nil
}

// Run executes the stages in order, skipping those whose predicate is false.
// The report covers every stage reached, including the failing one.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.New().String()}
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
	}()

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("graalkit.run_id", report.RunID)))
	defer span.End()

	log := observability.WithTraceContext(ctx, p.log).WithField("run_id", report.RunID)
	log.WithField("stages", p.Order()).Debug("Starting pipeline")

	for _, idx := range p.order {
		s := p.stages[idx]
		res, err := p.runStage(ctx, log, s)
		report.Results = append(report.Results, res)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
	}

	log.WithFields(logrus.Fields{
		"ran":     report.Ran(),
		"skipped": report.Skipped(),
	}).Info("Pipeline complete")
	return report, nil
}

func (p *Pipeline) runStage(ctx context.Context, log logrus.FieldLogger, s *Stage) (Result, error) {
	res := Result{Stage: s.Name}
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "stage."+s.Name,
		trace.WithAttributes(attribute.String("graalkit.stage", s.Name)))
	defer span.End()

	log = log.WithField("stage", s.Name)

	fail := func(err error) (Result, error) {
		res.Status = StatusFailed
		res.Duration = time.Since(start)
		p.metrics.ObserveStage(s.Name, observability.StatusFailed, res.Duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Error("Stage failed")
		return res, &StageError{Stage: s.Name, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	run, err := p.call(ctx, log, s.Name, s.shouldRun)
	if err != nil {
		return fail(err)
	}
	if !run {
		res.Status = StatusSkipped
		p.metrics.ObserveStage(s.Name, observability.StatusSkipped, 0)
		span.SetAttributes(attribute.Bool("graalkit.skipped", true))
		log.WithField("output", s.Output).Info("Stage up to date, skipping")
		return res, nil
	}

	log.Info("Running stage")
	if _, err := p.call(ctx, log, s.Name, func(ctx context.Context) (bool, error) {
		return true, s.Run(ctx)
	}); err != nil {
		return fail(err)
	}

	res.Status = StatusRan
	res.Duration = time.Since(start)
	p.metrics.ObserveStage(s.Name, observability.StatusRan, res.Duration)
	log.WithField("duration", res.Duration).Info("Stage complete")
	return res, nil
}

// call runs fn, reporting a panic as an error so the run fails at this stage
func (p *Pipeline) call(ctx context.Context, log logrus.FieldLogger, stage string, fn func(context.Context) (bool, error)) (ok bool, err error) {
	defer func() {
		if perr := observability.RecoverError(recover(), log, stage); perr != nil {
			err = perr
		}
	}()
	return fn(ctx)
}
