// Package pipeline runs a small dependency graph of named stages.
//
// Each stage declares its output path, the inputs it consumes and a skip
// predicate. Stages run one at a time in a deterministic topological order;
// a stage whose predicate reports false is skipped without running its body.
// The first failure aborts the run and is returned as a *StageError naming
// the stage. Nothing is retried.
package pipeline
