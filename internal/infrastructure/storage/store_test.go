package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wsi-recon/internal/domain/entity"
)

func sampleRun(id string) *entity.RunResult {
	regions := []entity.MergedDetection{
		{
			Class:      "tumor",
			Box:        entity.NewBox(10, 20, 110, 220),
			Confidence: 0.92,
			Polygon: entity.Polygon{
				{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 110, Y: 220}, {X: 10, Y: 220},
			},
			Quality: &entity.SimplifyQuality{AreaRatio: 0.97, PerimeterRatio: 1.01},
		},
		{
			Class:      "stroma",
			Box:        entity.NewBox(300, 300, 400, 400),
			Confidence: 0.55,
		},
	}
	return &entity.RunResult{
		ID: id,
		Slide: entity.SlideInfo{
			Path:   "/slides/case-7.svs",
			Width:  98304,
			Height: 65536,
			Levels: 4,
			MPP:    0.25,
		},
		Regions: regions,
		Stats:   entity.ComputeStatistics(regions),
	}
}

func TestMemoryResultStore_SaveAndGet(t *testing.T) {
	store := NewMemoryResultStore()
	run := sampleRun("run-1")

	require.NoError(t, store.SaveRun(context.Background(), run))

	got, err := store.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Equal(t, run.ID, got.ID)
	require.Len(t, got.Regions, 2)
}

func TestMemoryResultStore_GetMissing(t *testing.T) {
	store := NewMemoryResultStore()

	_, err := store.GetRun(context.Background(), "absent")
	require.Error(t, err)
}

func TestSQLiteResultStore_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLiteResultStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	run := sampleRun("run-sqlite")
	require.NoError(t, store.SaveRun(context.Background(), run))

	got, err := store.GetRun(context.Background(), "run-sqlite")
	require.NoError(t, err)

	require.Equal(t, run.Slide, got.Slide)
	require.Len(t, got.Regions, 2)

	tumor := got.Regions[0]
	require.Equal(t, "tumor", tumor.Class)
	require.InDelta(t, 0.92, tumor.Confidence, 1e-9)
	require.Equal(t, run.Regions[0].Polygon, tumor.Polygon)
	require.NotNil(t, tumor.Quality)
	require.InDelta(t, 0.97, tumor.Quality.AreaRatio, 1e-9)

	stroma := got.Regions[1]
	require.Equal(t, "stroma", stroma.Class)
	require.Nil(t, stroma.Polygon)
	require.Nil(t, stroma.Quality)

	require.Equal(t, 2, got.Stats.Total)
	require.Equal(t, 1, got.Stats.ByClass["tumor"])
}

func TestSQLiteResultStore_GetMissing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLiteResultStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetRun(context.Background(), "absent")
	require.Error(t, err)
}
