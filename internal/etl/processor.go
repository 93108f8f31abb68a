// Package etl implements the stage processor framework and the two concrete
// pipeline stages (landing→raw, raw→trusted).
package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"streampro-lake/internal/domain"
)

// Stage is one extract/transform/load processor. Extract, Transform, and
// Load are mandatory; PreProcess and PostProcess default to no-ops when the
// implementation embeds Hooks. E and T are the stage-specific intermediate
// shapes.
type Stage[E, T any] interface {
	ID() string
	Description() string

	// PreProcess runs before extraction. Optional (see Hooks).
	PreProcess(ctx context.Context) error

	// Extract pulls the stage's inputs from the source tier.
	Extract(ctx context.Context) (E, error)

	// Transform derives the load shape from the extracted data.
	Transform(ctx context.Context, extracted E) (T, error)

	// Load writes the transformed data and produces the processing result.
	Load(ctx context.Context, transformed T) (*domain.ProcessingResult, error)

	// PostProcess runs after a successful load and may enrich the result's
	// metadata and created-table list in place. Optional (see Hooks).
	PostProcess(ctx context.Context, result *domain.ProcessingResult) error
}

// Hooks provides no-op PreProcess/PostProcess defaults for stages that do
// not need them.
type Hooks struct{}

// PreProcess is a no-op.
func (Hooks) PreProcess(context.Context) error { return nil }

// PostProcess is a no-op.
func (Hooks) PostProcess(context.Context, *domain.ProcessingResult) error { return nil }

// Run executes the five stage phases in fixed order and translates any phase
// error or panic into a FAILED JobResult; no error escapes. On success the
// result carries the load message and metadata plus the rows_processed and
// tables_created keys.
//
// A stage instance is built for one run; calling Run twice on the same
// instance is not supported.
func Run[E, T any](ctx context.Context, stage Stage[E, T], logger *slog.Logger) (result domain.JobResult) {
	runID := uuid.New().String()
	log := logger.With("processor", stage.ID(), "run_id", runID)

	start := time.Now()

	fail := func(err error) domain.JobResult {
		end := time.Now()
		duration := end.Sub(start).Seconds()
		log.Error("processor failed", "error", err, "duration_s", duration)
		return domain.JobResult{
			JobID:           stage.ID(),
			RunID:           runID,
			Status:          domain.JobStatusFailed,
			StartTime:       start,
			EndTime:         end,
			DurationSeconds: duration,
			Error:           err.Error(),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = fail(fmt.Errorf("panic: %v", r))
		}
	}()

	log.Info("starting processor", "description", stage.Description())

	if err := stage.PreProcess(ctx); err != nil {
		return fail(fmt.Errorf("pre-process: %w", err))
	}

	extracted, err := stage.Extract(ctx)
	if err != nil {
		return fail(fmt.Errorf("extract: %w", err))
	}

	transformed, err := stage.Transform(ctx, extracted)
	if err != nil {
		return fail(fmt.Errorf("transform: %w", err))
	}

	loadResult, err := stage.Load(ctx, transformed)
	if err != nil {
		return fail(fmt.Errorf("load: %w", err))
	}

	if err := stage.PostProcess(ctx, loadResult); err != nil {
		return fail(fmt.Errorf("post-process: %w", err))
	}

	end := time.Now()
	duration := end.Sub(start).Seconds()

	metadata := make(map[string]any, len(loadResult.Metadata)+2)
	for k, v := range loadResult.Metadata {
		metadata[k] = v
	}
	metadata[domain.MetaRowsProcessed] = loadResult.RowsProcessed
	metadata[domain.MetaTablesCreated] = loadResult.TablesCreated

	log.Info("processor completed",
		"duration_s", duration,
		"rows_processed", loadResult.RowsProcessed,
		"tables_created", len(loadResult.TablesCreated))

	return domain.JobResult{
		JobID:           stage.ID(),
		RunID:           runID,
		Status:          domain.JobStatusSuccess,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: duration,
		Message:         loadResult.Message,
		Metadata:        metadata,
	}
}
