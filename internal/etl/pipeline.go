package etl

import (
	"context"
	"log/slog"

	"streampro-lake/internal/domain"
)

// StageFunc runs one stage end-to-end and returns its terminal result.
type StageFunc func(ctx context.Context) domain.JobResult

type pipelineStage struct {
	name string
	run  StageFunc
}

// Pipeline runs stages in sequence, short-circuiting on the first failure.
// Stages share no in-process state: each rediscovers its inputs from the
// tier written by its predecessor.
type Pipeline struct {
	logger *slog.Logger
	stages []pipelineStage
}

// NewPipeline creates an empty pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// Add appends a named stage. Stages run in the order added.
func (p *Pipeline) Add(name string, run StageFunc) *Pipeline {
	p.stages = append(p.stages, pipelineStage{name: name, run: run})
	return p
}

// Run executes the stages in order. It returns the results of the stages
// that ran and true iff every stage succeeded; stages after the first
// failure are not invoked.
func (p *Pipeline) Run(ctx context.Context) ([]domain.JobResult, bool) {
	results := make([]domain.JobResult, 0, len(p.stages))

	for i, stage := range p.stages {
		p.logger.Info("starting stage", "stage", stage.name, "position", i+1, "of", len(p.stages))

		result := stage.run(ctx)
		results = append(results, result)

		if !result.IsSuccess() {
			p.logger.Error("stage failed, aborting pipeline",
				"stage", stage.name, "error", result.Error)
			return results, false
		}
		p.logger.Info("stage completed", "stage", stage.name, "duration_s", result.DurationSeconds)
	}

	p.logger.Info("pipeline completed successfully", "stages", len(p.stages))
	return results, true
}
