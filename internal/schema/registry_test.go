package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampro-lake/internal/domain"
)

func TestTablesOrder(t *testing.T) {
	want := []string{"trusted_users", "trusted_videos", "trusted_devices", "trusted_events"}
	assert.Equal(t, want, Tables())
	// Iteration order is fixed across calls.
	assert.Equal(t, Tables(), Tables())
}

func TestGet(t *testing.T) {
	s, err := Get("trusted_devices")
	require.NoError(t, err)
	assert.Equal(t, "devices", s.LocationSuffix)
	assert.Equal(t, []string{"ingestion_date"}, s.PartitionCols)

	_, err = Get("trusted_nope")
	require.Error(t, err)
	var unknownErr *domain.UnknownTableError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "trusted_nope", unknownErr.Table)
}

func TestPartitionColsAreDeclaredColumns(t *testing.T) {
	for _, name := range Tables() {
		s, err := Get(name)
		require.NoError(t, err)
		cols := s.ColumnNames()
		for _, p := range s.PartitionCols {
			assert.Contains(t, cols, p, "table %s", name)
		}
	}
}

func TestExternalTableDDL(t *testing.T) {
	got, err := ExternalTableDDL("streampro", "trusted_users", "s3://lake/trusted/users")
	require.NoError(t, err)
	assert.Contains(t, got, `CREATE TABLE IF NOT EXISTS "streampro"."trusted_users"`)
	assert.Contains(t, got, `partitioned_by = ARRAY['ingestion_date']`)
	assert.Contains(t, got, `external_location = 's3://lake/trusted/users'`)
	assert.Contains(t, got, `format = 'PARQUET'`)

	_, err = ExternalTableDDL("streampro", "trusted_nope", "s3://x")
	require.Error(t, err)
}

func TestViewDDL(t *testing.T) {
	tuples := []string{
		"('d1', 'ios', 'x', 17.1, '2025-09-09')",
		"('d2', 'android', 'y', 14, '2025-09-09')",
	}
	got, err := ViewDDL("streampro", "trusted_devices", tuples)
	require.NoError(t, err)

	// Declared column list, declared order, in both projection and alias.
	colList := `"device", "os", "model", "os_version", "ingestion_date"`
	assert.Equal(t, 2, strings.Count(got, colList))

	// Exactly N value tuples referenced.
	assert.Equal(t, len(tuples), strings.Count(got, "('d"))

	_, err = ViewDDL("streampro", "trusted_nope", tuples)
	require.Error(t, err)
}
