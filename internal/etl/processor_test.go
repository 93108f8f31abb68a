package etl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampro-lake/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingStage implements all five phases and records call order.
type recordingStage struct {
	phases []string

	preErr       error
	extractErr   error
	transformErr error
	loadErr      error
	postErr      error
	panicIn      string
}

func (s *recordingStage) ID() string          { return "recording_stage" }
func (s *recordingStage) Description() string { return "records phase order" }

func (s *recordingStage) phase(name string) {
	s.phases = append(s.phases, name)
	if s.panicIn == name {
		panic("boom in " + name)
	}
}

func (s *recordingStage) PreProcess(context.Context) error {
	s.phase("pre")
	return s.preErr
}

func (s *recordingStage) Extract(context.Context) (int, error) {
	s.phase("extract")
	return 3, s.extractErr
}

func (s *recordingStage) Transform(_ context.Context, extracted int) (string, error) {
	s.phase("transform")
	return fmt.Sprintf("n=%d", extracted), s.transformErr
}

func (s *recordingStage) Load(_ context.Context, transformed string) (*domain.ProcessingResult, error) {
	s.phase("load")
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	r := domain.NewProcessingResult(true, "loaded "+transformed)
	r.Metadata["custom"] = "value"
	r.RowsProcessed = 3
	r.TablesCreated = []string{"trusted_users"}
	return r, nil
}

func (s *recordingStage) PostProcess(_ context.Context, result *domain.ProcessingResult) error {
	s.phase("post")
	if s.postErr == nil {
		result.Metadata["post"] = true
	}
	return s.postErr
}

func TestRunSuccess(t *testing.T) {
	stage := &recordingStage{}
	result := Run(context.Background(), stage, discardLogger())

	assert.Equal(t, []string{"pre", "extract", "transform", "load", "post"}, stage.phases)

	assert.Equal(t, domain.JobStatusSuccess, result.Status)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "recording_stage", result.JobID)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "loaded n=3", result.Message)
	assert.Empty(t, result.Error)

	// Always-present metadata keys plus the load/post contributions.
	assert.Equal(t, 3, result.Metadata[domain.MetaRowsProcessed])
	assert.Equal(t, []string{"trusted_users"}, result.Metadata[domain.MetaTablesCreated])
	assert.Equal(t, "value", result.Metadata["custom"])
	assert.Equal(t, true, result.Metadata["post"])

	assert.GreaterOrEqual(t, result.DurationSeconds, 0.0)
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestRunPhaseErrors(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*recordingStage)
		wantPhases []string
		wantErr    string
	}{
		{
			name:       "pre_process",
			setup:      func(s *recordingStage) { s.preErr = fmt.Errorf("no connection") },
			wantPhases: []string{"pre"},
			wantErr:    "pre-process: no connection",
		},
		{
			name:       "extract",
			setup:      func(s *recordingStage) { s.extractErr = fmt.Errorf("listing exploded") },
			wantPhases: []string{"pre", "extract"},
			wantErr:    "extract: listing exploded",
		},
		{
			name:       "transform",
			setup:      func(s *recordingStage) { s.transformErr = fmt.Errorf("bad shape") },
			wantPhases: []string{"pre", "extract", "transform"},
			wantErr:    "transform: bad shape",
		},
		{
			name:       "load",
			setup:      func(s *recordingStage) { s.loadErr = fmt.Errorf("write denied") },
			wantPhases: []string{"pre", "extract", "transform", "load"},
			wantErr:    "load: write denied",
		},
		{
			name:       "post_process",
			setup:      func(s *recordingStage) { s.postErr = fmt.Errorf("view refused") },
			wantPhases: []string{"pre", "extract", "transform", "load", "post"},
			wantErr:    "post-process: view refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := &recordingStage{}
			tt.setup(stage)

			result := Run(context.Background(), stage, discardLogger())

			// The failing phase aborts the run; no later phase executes.
			assert.Equal(t, tt.wantPhases, stage.phases)
			assert.Equal(t, domain.JobStatusFailed, result.Status)
			assert.False(t, result.IsSuccess())
			assert.Contains(t, result.Error, tt.wantErr)
			assert.Empty(t, result.Message)
			assert.GreaterOrEqual(t, result.DurationSeconds, 0.0)
			assert.False(t, result.EndTime.Before(result.StartTime))
		})
	}
}

func TestRunRecoversPanic(t *testing.T) {
	stage := &recordingStage{panicIn: "transform"}

	var result domain.JobResult
	require.NotPanics(t, func() {
		result = Run(context.Background(), stage, discardLogger())
	})

	assert.Equal(t, domain.JobStatusFailed, result.Status)
	assert.Contains(t, result.Error, "panic: boom in transform")
	assert.Equal(t, []string{"pre", "extract", "transform"}, stage.phases)
}

// minimalStage embeds Hooks to get the no-op optional phases.
type minimalStage struct {
	Hooks
}

func (minimalStage) ID() string                                { return "minimal" }
func (minimalStage) Description() string                       { return "" }
func (minimalStage) Extract(context.Context) ([]string, error) { return []string{"a"}, nil }
func (minimalStage) Transform(_ context.Context, e []string) ([]string, error) {
	return e, nil
}
func (minimalStage) Load(_ context.Context, _ []string) (*domain.ProcessingResult, error) {
	return domain.NewProcessingResult(true, "done"), nil
}

func TestRunWithDefaultHooks(t *testing.T) {
	result := Run(context.Background(), minimalStage{}, discardLogger())
	require.True(t, result.IsSuccess())
	assert.Equal(t, "done", result.Message)
	assert.Equal(t, 0, result.Metadata[domain.MetaRowsProcessed])
}
