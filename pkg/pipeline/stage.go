package pipeline

import (
	"context"
	"time"
)

// Stage is one node of the pipeline graph
type Stage struct {
	// Name identifies the stage in dependencies, logs and metrics
	Name string
	// DependsOn lists stages that must complete first
	DependsOn []string
	// Inputs are the paths the stage consumes
	Inputs []string
	// Output is the path the stage produces; empty when it produces nothing addressable
	Output string
	// ShouldRun reports whether Run is needed. A nil predicate always runs.
	ShouldRun func(ctx context.Context) (bool, error)
	// Run performs the stage's side effects
	Run func(ctx context.Context) error
}

func (s *Stage) shouldRun(ctx context.Context) (bool, error) {
	if s.ShouldRun == nil {
		return true, nil
	}
	return s.ShouldRun(ctx)
}

// Decision is a stage's skip predicate outcome
type Decision struct {
	Stage  string
	Run    bool
	Output string
}

// Status is the outcome of a stage in a run
type Status string

const (
	StatusRan     Status = "ran"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result records one stage of a run
type Result struct {
	Stage    string
	Status   Status
	Duration time.Duration
}

// Report summarizes a run
type Report struct {
	RunID    string
	Results  []Result
	Duration time.Duration
}

// Ran returns the names of stages whose body executed, in order
func (r *Report) Ran() []string {
	return r.withStatus(StatusRan)
}

// Skipped returns the names of stages skipped by their predicate, in order
func (r *Report) Skipped() []string {
	return r.withStatus(StatusSkipped)
}

func (r *Report) withStatus(status Status) []string {
	var names []string
	for _, res := range r.Results {
		if res.Status == status {
			names = append(names, res.Stage)
		}
	}
	return names
}
