package postgres_test

import (
	"context"
	"math"
	"testing"

	"quotecollector/internal/quote"
	"quotecollector/pkg/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestReplaceSnapshot
func TestReplaceSnapshot(t *testing.T) {
	client := newSQLiteClient(t)
	ctx := context.Background()

	first := []quote.Record{
		{Symbol: "AAA", Timestamp: 1000, Open: 10.0, Close: 11.0, AdjClose: 11.0, High: 12.0, Low: 9.0, Volume: 500},
		{Symbol: "BBB", Timestamp: 1000, Open: 0.1 + 0.2, Close: 2, AdjClose: 2, High: 3, Low: 1, Volume: 42},
	}
	require.NoError(t, client.ReplaceSnapshot(ctx, "cycle-1", first))

	rows, err := client.GetSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for i, row := range rows {
		assert.Equal(t, "cycle-1", row.CycleID)
		assert.Equal(t, i, row.Position)
		assert.Equal(t, first[i], row.Record())
		assert.False(t, row.RecordedAt.IsZero())
	}

	// the next cycle replaces, never appends
	second := []quote.Record{{Symbol: "CCC", Timestamp: 2000, Open: 1, Close: 1, AdjClose: 1, High: 1, Low: 1, Volume: 1}}
	require.NoError(t, client.ReplaceSnapshot(ctx, "cycle-2", second))

	rows, err = client.GetSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "cycle-2", rows[0].CycleID)
	assert.Equal(t, second[0], rows[0].Record())
}

// go test -v --run TestReplaceSnapshotEmpty
func TestReplaceSnapshotEmpty(t *testing.T) {
	client := newSQLiteClient(t)
	ctx := context.Background()

	require.NoError(t, client.ReplaceSnapshot(ctx, "cycle-1", []quote.Record{{Symbol: "AAA", Volume: 1}}))
	require.NoError(t, client.ReplaceSnapshot(ctx, "cycle-2", nil))

	rows, err := client.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// go test -v --run TestReplaceSnapshotWithoutTable
func TestReplaceSnapshotWithoutTable(t *testing.T) {
	client := newSQLiteClient(t)
	require.NoError(t, client.DB.Migrator().DropTable("quote_snapshot"))

	err := client.ReplaceSnapshot(context.Background(), "cycle-1", []quote.Record{{Symbol: "AAA"}})
	require.Error(t, err)
}

// go test -v --run TestReplaceSnapshotVolumeRange
func TestReplaceSnapshotVolumeRange(t *testing.T) {
	client := newSQLiteClient(t)
	ctx := context.Background()

	largest := []quote.Record{{Symbol: "AAA", Timestamp: 1, Volume: math.MaxInt64}}
	require.NoError(t, client.ReplaceSnapshot(ctx, "cycle-1", largest))

	// an out of range row rejects the whole batch and keeps the previous snapshot
	batch := []quote.Record{
		{Symbol: "BBB", Timestamp: 2, Volume: 1},
		{Symbol: "CCC", Timestamp: 2, Volume: math.MaxUint64},
	}
	err := client.ReplaceSnapshot(ctx, "cycle-2", batch)
	require.ErrorIs(t, err, postgres.ErrVolumeOutOfRange)
	assert.Contains(t, err.Error(), "CCC")

	rows, err := client.GetSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "cycle-1", rows[0].CycleID)
	assert.Equal(t, largest[0], rows[0].Record())
}
