package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dephealth/dha-backend/model"
)

func testReport(id string, score float64) model.AuditReport {
	return model.AuditReport{
		ID:                id,
		CreatedAt:         time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Source:            model.SourceUpload,
		TotalDependencies: 1,
		Records: []model.HealthRecord{
			{Dependency: "pkg", Version: "1.0.0", License: "MIT", HealthScore: score},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testReport("a1", 7.0)))

	got, ok, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, 7.0, got.Records[0].HealthScore)
}

func TestMemoryStoreMissingID(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Put(ctx, testReport(fmt.Sprintf("a%d", i), float64(i))))
	}

	summaries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "a3", summaries[0].ID)
	assert.Equal(t, "a2", summaries[1].ID)
	assert.Equal(t, "a1", summaries[2].ID)
	assert.Equal(t, 3.0, summaries[0].MeanScore)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "a3", limited[0].ID)
}

func TestMemoryStorePutSameIDReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testReport("a1", 4.0)))
	require.NoError(t, store.Put(ctx, testReport("a1", 9.0)))

	got, ok, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9.0, got.Records[0].HealthScore)

	summaries, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestNewStoreSelectsBacking(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(BackendMemory)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = NewStore("cassandra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
