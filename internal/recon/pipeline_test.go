package recon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"wsi-recon/internal/domain/entity"
)

func TestReconcileSeparateWhenBelowThreshold(t *testing.T) {
	r := New(Options{IoUThreshold: 0.3})
	merged, _, err := r.Reconcile([]entity.Detection{
		det("gland", 0, 0, 10, 10, 0.9),
		det("gland", 5, 5, 15, 15, 0.8),
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)
}

func TestReconcileMergesWhenAboveThreshold(t *testing.T) {
	r := New(Options{IoUThreshold: 0.1})
	merged, _, err := r.Reconcile([]entity.Detection{
		det("gland", 0, 0, 10, 10, 0.9),
		det("gland", 5, 5, 15, 15, 0.8),
	})
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.Equal(t, entity.NewBox(0, 0, 15, 15), merged[0].Box)
	require.Equal(t, 0.9, merged[0].Confidence)
}

func TestReconcileClassIsolation(t *testing.T) {
	// Одинаковая геометрия, разные классы: никогда не сливаются.
	r := New(Options{IoUThreshold: 0.1})
	merged, _, err := r.Reconcile([]entity.Detection{
		det("gland", 0, 0, 10, 10, 0.9),
		det("vessel", 0, 0, 10, 10, 0.8),
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	require.Equal(t, "gland", merged[0].Class)
	require.Equal(t, "vessel", merged[1].Class)
}

func TestReconcileOrderIsDeterministic(t *testing.T) {
	r := New(DefaultOptions())
	dets := []entity.Detection{
		det("vessel", 0, 0, 10, 10, 0.5),
		det("gland", 100, 0, 110, 10, 0.5),
		det("vessel", 200, 0, 210, 10, 0.5),
	}
	for i := 0; i < 10; i++ {
		merged, _, err := r.Reconcile(dets)
		require.NoError(t, err)
		require.Len(t, merged, 3)
		// Порядок первого появления класса, внутри класса — порядок
		// первого участника.
		require.Equal(t, "vessel", merged[0].Class)
		require.Equal(t, "vessel", merged[1].Class)
		require.Equal(t, "gland", merged[2].Class)
	}
}

func TestReconcileSimplifiesLargeRings(t *testing.T) {
	r := New(DefaultOptions())

	blob := make(entity.Polygon, 200)
	for i := range blob {
		a := 2 * math.Pi * float64(i) / 200
		blob[i] = entity.Point{X: 500 + 100*math.Cos(a), Y: 500 + 100*math.Sin(a)}
	}
	d := entity.Detection{
		Class:      "gland",
		Box:        blob.BoundingBox(),
		Confidence: 0.9,
		Polygon:    blob,
	}

	merged, report, err := r.Reconcile([]entity.Detection{d})
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.NotNil(t, merged[0].Quality)
	require.LessOrEqual(t, len(merged[0].Polygon)+1, 60)
	require.InDelta(t, 1.0, merged[0].Quality.AreaRatio, 0.2)
	require.Zero(t, report.OverBudget)
}

func TestReconcileHealsOrDropsSelfIntersecting(t *testing.T) {
	r := New(DefaultOptions())
	d := entity.Detection{
		Class:      "gland",
		Box:        entity.NewBox(0, 0, 10, 10),
		Confidence: 0.9,
		Polygon:    entity.Polygon{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}},
	}

	merged, _, err := r.Reconcile([]entity.Detection{d})
	require.NoError(t, err)
	require.Len(t, merged, 1)
	// Починено или отброшено — охват региона сохраняется в любом случае:
	// отброшенное кольцо деградирует кластер до его прямоугольника.
	require.Equal(t, entity.NewBox(0, 0, 10, 10), merged[0].Box)
	if merged[0].Polygon != nil {
		require.Greater(t, merged[0].Polygon.Area(), 0.0)
	}
}

func TestReconcileEmptyInput(t *testing.T) {
	r := New(DefaultOptions())
	merged, report, err := r.Reconcile(nil)
	require.NoError(t, err)
	require.Empty(t, merged)
	require.Zero(t, report.DroppedPolygons)
}

func TestReconcileRejectsMalformedBox(t *testing.T) {
	r := New(DefaultOptions())
	_, _, err := r.Reconcile([]entity.Detection{
		det("gland", 10, 0, 0, 10, 0.5),
	})
	require.Error(t, err)
}

func TestReconcileRejectsBadConfidence(t *testing.T) {
	r := New(DefaultOptions())
	_, _, err := r.Reconcile([]entity.Detection{
		det("gland", 0, 0, 10, 10, 1.5),
	})
	require.Error(t, err)
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	r := New(DefaultOptions())
	d := entity.Detection{
		Class:      "gland",
		Box:        entity.NewBox(0, 0, 10, 10),
		Confidence: 0.9,
		Polygon:    rectPoly(0, 0, 10, 10),
	}
	original := d.Polygon.Clone()

	_, _, err := r.Reconcile([]entity.Detection{d})
	require.NoError(t, err)
	require.Equal(t, original, d.Polygon)
}

func TestNewFillsDefaults(t *testing.T) {
	r := New(Options{})
	require.Equal(t, 0.5, r.opts.IoUThreshold)
	require.Equal(t, 60, r.opts.MaxPolygonPoints)
	require.NotNil(t, r.opts.Policy.Confidence)
}

func TestNewNormalizesOptions(t *testing.T) {
	// Перевёрнутая полоса допусков меняется местами, невозможный порог
	// IoU зажимается до 1.
	r := New(Options{IoUThreshold: 2, MinTolerance: 5, MaxTolerance: 1})
	require.Equal(t, 1.0, r.opts.IoUThreshold)
	require.Equal(t, 1.0, r.opts.MinTolerance)
	require.Equal(t, 5.0, r.opts.MaxTolerance)
}
