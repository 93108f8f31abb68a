package etl

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampro-lake/internal/config"
	"streampro-lake/internal/domain"
	"streampro-lake/internal/testutil"
)

func landingConfig() *config.Config {
	return &config.Config{
		LandingPrefix: "landing",
		RawPrefix:     "raw",
		IngestionDate: "2025-09-09",
	}
}

func TestLandingToRawExtractDateFilter(t *testing.T) {
	// One file on the target date, one on another date, one with no date
	// suffix, and one unrecognized extension.
	storage := &testutil.MockStorageGateway{
		ListFn: func(_ context.Context, prefix string) ([]string, error) {
			assert.Equal(t, "landing", prefix)
			return []string{
				"landing/users_2025-09-09.csv",
				"landing/events_2025-09-10.jsonl",
				"landing/devices.csv",
				"landing/readme.txt",
			}, nil
		},
	}
	p := NewLandingToRaw(storage, landingConfig(), discardLogger())

	files, err := p.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	users := files["users"]
	assert.Equal(t, "landing/users_2025-09-09.csv", users.LandingKey)
	assert.Equal(t, "users_2025-09-09.csv", users.Name)
	assert.Equal(t, "2025-09-09", users.FileDate)
	assert.Equal(t, "raw/ingestion_date=2025-09-09/users_2025-09-09.csv", users.RawKey)

	// Dateless file assumes the target ingestion date.
	devices := files["devices"]
	assert.Equal(t, "2025-09-09", devices.FileDate)
	assert.Equal(t, "raw/ingestion_date=2025-09-09/devices.csv", devices.RawKey)

	// Date mismatch was skipped, not failed.
	_, found := files["events"]
	assert.False(t, found)
}

func TestLandingToRawExtractLastWins(t *testing.T) {
	storage := &testutil.MockStorageGateway{
		ListFn: func(_ context.Context, _ string) ([]string, error) {
			return []string{
				"landing/users_2025-09-09.csv",
				"landing/resend/users_2025-09-09.csv",
			}, nil
		},
	}
	p := NewLandingToRaw(storage, landingConfig(), discardLogger())

	files, err := p.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "landing/resend/users_2025-09-09.csv", files["users"].LandingKey)
}

func TestLandingToRawExtractListingFailure(t *testing.T) {
	storage := &testutil.MockStorageGateway{
		ListFn: func(_ context.Context, _ string) ([]string, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	p := NewLandingToRaw(storage, landingConfig(), discardLogger())

	// Total listing failure yields zero work, not a stage failure.
	files, err := p.Extract(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLandingToRawTransformIsIdentity(t *testing.T) {
	p := NewLandingToRaw(&testutil.MockStorageGateway{}, landingConfig(), discardLogger())
	in := map[string]domain.FileDescriptor{"users": {Name: "users.csv"}}

	out, err := p.Transform(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLandingToRawLoadPartitionsFailures(t *testing.T) {
	storage := &testutil.MockStorageGateway{
		CopyFn: func(_ context.Context, sourceKey, _ string) error {
			if sourceKey == "landing/videos_2025-09-09.csv" {
				return fmt.Errorf("access denied")
			}
			return nil
		},
	}
	p := NewLandingToRaw(storage, landingConfig(), discardLogger())

	files := map[string]domain.FileDescriptor{
		"users": {
			LandingKey: "landing/users_2025-09-09.csv",
			Name:       "users_2025-09-09.csv",
			RawKey:     "raw/ingestion_date=2025-09-09/users_2025-09-09.csv",
		},
		"videos": {
			LandingKey: "landing/videos_2025-09-09.csv",
			Name:       "videos_2025-09-09.csv",
			RawKey:     "raw/ingestion_date=2025-09-09/videos_2025-09-09.csv",
		},
	}

	result, err := p.Load(context.Background(), files)
	require.NoError(t, err)

	// Successes and failures partition the extracted set exactly.
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Metadata["successful_copies"])
	failures := result.Metadata["failed_copies"].([]CopyFailure)
	require.Len(t, failures, 1)
	assert.Equal(t, "videos_2025-09-09.csv", failures[0].File)
	assert.Contains(t, failures[0].Error, "access denied")
	assert.Equal(t, 2, result.RowsProcessed)
	assert.Contains(t, result.Message, "1 failed")
	assert.Empty(t, result.TablesCreated)
}

func TestLandingToRawScenarioSingleMatch(t *testing.T) {
	// Landing holds users (target date) and events (next day); only users
	// is copied and the run reports one file processed.
	storage := &testutil.MockStorageGateway{
		ListFn: func(_ context.Context, _ string) ([]string, error) {
			return []string{
				"landing/users_2025-09-09.csv",
				"landing/events_2025-09-10.jsonl",
			}, nil
		},
		CopyFn: func(_ context.Context, _, _ string) error { return nil },
	}
	p := NewLandingToRaw(storage, landingConfig(), discardLogger())

	result := Run(context.Background(), p, discardLogger())

	require.True(t, result.IsSuccess())
	assert.Equal(t, 1, result.Metadata[domain.MetaRowsProcessed])
	assert.Equal(t, 1, result.Metadata["successful_copies"])
	assert.Equal(t, []string{"users"}, result.Metadata["files_processed"])
	require.Len(t, storage.Copies, 1)
	assert.Equal(t, [2]string{
		"landing/users_2025-09-09.csv",
		"raw/ingestion_date=2025-09-09/users_2025-09-09.csv",
	}, storage.Copies[0])
}

func TestLandingToRawScenarioListingError(t *testing.T) {
	// Discovery error quirk: the stage still reports success with zero work.
	storage := &testutil.MockStorageGateway{
		ListFn: func(_ context.Context, _ string) ([]string, error) {
			return nil, fmt.Errorf("connectivity error")
		},
	}
	p := NewLandingToRaw(storage, landingConfig(), discardLogger())

	result := Run(context.Background(), p, discardLogger())

	require.True(t, result.IsSuccess())
	assert.Equal(t, 0, result.Metadata[domain.MetaRowsProcessed])
	assert.Equal(t, 0, result.Metadata["successful_copies"])
	assert.Empty(t, storage.Copies)
}

func TestLandingToRawIdempotentRawKeys(t *testing.T) {
	listing := []string{
		"landing/users_2025-09-09.csv",
		"landing/videos_2025-09-09.csv",
	}
	storage := &testutil.MockStorageGateway{
		ListFn: func(_ context.Context, _ string) ([]string, error) { return listing, nil },
	}

	// Same date, unchanged landing contents: rediscovery computes the same
	// raw keys, so re-running overwrites rather than accumulates.
	first, err := NewLandingToRaw(storage, landingConfig(), discardLogger()).Extract(context.Background())
	require.NoError(t, err)
	second, err := NewLandingToRaw(storage, landingConfig(), discardLogger()).Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSplitStem(t *testing.T) {
	tests := []struct {
		stem     string
		wantType string
		wantDate string
	}{
		{stem: "users_2025-09-09", wantType: "users", wantDate: "2025-09-09"},
		{stem: "watch_events_2025-09-09", wantType: "watch_events", wantDate: "2025-09-09"},
		{stem: "devices", wantType: "devices", wantDate: "2025-01-01"},
		{stem: "users_v2", wantType: "users_v2", wantDate: "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			gotType, gotDate := splitStem(tt.stem, "2025-01-01")
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantDate, gotDate)
		})
	}
}
