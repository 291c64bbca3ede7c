package recon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wsi-recon/internal/domain/entity"
)

func det(class string, x1, y1, x2, y2, conf float64) entity.Detection {
	return entity.Detection{
		Class:      class,
		Box:        entity.NewBox(x1, y1, x2, y2),
		Confidence: conf,
	}
}

func rectPoly(x1, y1, x2, y2 float64) entity.Polygon {
	return entity.Polygon{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}}
}

func TestClusterSingleton(t *testing.T) {
	clusters := clusterDetections([]entity.Detection{
		det("gland", 0, 0, 10, 10, 0.9),
	}, 0.5)
	require.Len(t, clusters, 1)
	require.Len(t, clusters[0], 1)
}

func TestClusterByIoU(t *testing.T) {
	a := det("gland", 0, 0, 10, 10, 0.9)
	b := det("gland", 5, 5, 15, 15, 0.8)

	// IoU = 25/175 ~ 0.143: ниже 0.3, выше 0.1.
	clusters := clusterDetections([]entity.Detection{a, b}, 0.3)
	require.Len(t, clusters, 2)

	clusters = clusterDetections([]entity.Detection{a, b}, 0.1)
	require.Len(t, clusters, 1)
	require.Len(t, clusters[0], 2)
}

func TestClusterTransitivity(t *testing.T) {
	// A пересекается с B, B с C, а A и C не пересекаются. Транзитивное
	// замыкание всё равно обязано собрать все три в один кластер.
	a := det("gland", 0, 0, 10, 10, 0.9)
	b := det("gland", 6, 0, 16, 10, 0.8)
	c := det("gland", 12, 0, 22, 10, 0.7)
	require.Equal(t, 0.0, a.Box.IoU(c.Box))

	clusters := clusterDetections([]entity.Detection{a, b, c}, 0.2)
	require.Len(t, clusters, 1)
	require.Len(t, clusters[0], 3)
}

func TestClusterPolygonOverlapWithoutIoU(t *testing.T) {
	// Прямоугольники едва пересекаются (IoU сильно ниже порога), но кольца
	// касаются, так что полигонное отношение всё равно их связывает.
	a := det("gland", 0, 0, 10, 10, 0.9)
	a.Polygon = rectPoly(0, 0, 10, 10)
	b := det("gland", 9, 0, 30, 10, 0.8)
	b.Polygon = rectPoly(9, 0, 30, 10)

	clusters := clusterDetections([]entity.Detection{a, b}, 0.9)
	require.Len(t, clusters, 1)
}

func TestClusterTileBoundaryHalves(t *testing.T) {
	// Одна структура, разрезанная границей тайла: половины делят ребро
	// x=10 при нулевой площади пересечения прямоугольников. Общее ребро
	// обязано их связать.
	left := det("gland", 0, 0, 10, 10, 0.9)
	left.Polygon = rectPoly(0, 0, 10, 10)
	right := det("gland", 10, 0, 20, 10, 0.8)
	right.Polygon = rectPoly(10, 0, 20, 10)
	require.Equal(t, 0.0, left.Box.IoU(right.Box))

	clusters := clusterDetections([]entity.Detection{left, right}, 0.5)
	require.Len(t, clusters, 1)
	require.Len(t, clusters[0], 2)
}

func TestClusterOrderIsDeterministic(t *testing.T) {
	dets := []entity.Detection{
		det("gland", 100, 100, 110, 110, 0.5),
		det("gland", 0, 0, 10, 10, 0.9),
		det("gland", 102, 102, 112, 112, 0.6),
	}
	clusters := clusterDetections(dets, 0.1)
	require.Len(t, clusters, 2)
	// Первый кластер начинается с первой входной детекции.
	require.Equal(t, dets[0].Box, clusters[0][0].Box)
	require.Equal(t, dets[1].Box, clusters[1][0].Box)
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(1, 2)
	require.Equal(t, uf.find(0), uf.find(2))
	require.NotEqual(t, uf.find(0), uf.find(3))
}
