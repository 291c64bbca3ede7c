package recon

import (
	flatbush "github.com/bmharper/flatbush-go"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/geometry"
)

// unionFind — система непересекающихся множеств над индексами детекций.
// Кластеры — цепочки родительских индексов, а не графы объектов, так что
// владение отслеживать нечего.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// clusterDetections группирует детекции одного класса в кластеры транзитивно
// пересекающихся наблюдений. Парное отношение симметрично, замыкание
// транзитивно, так что группировка детерминирована в порядке входа.
//
// Индекс flatbush отсекает пары-кандидаты до соседей по ограничивающим
// прямоугольникам; само отношение не меняется, поэтому результат совпадает
// с полным попарным перебором.
func clusterDetections(dets []entity.Detection, iouThreshold float64) [][]entity.Detection {
	n := len(dets)
	if n == 0 {
		return nil
	}

	fb := flatbush.NewFlatbush64()
	fb.Reserve(n)
	for _, d := range dets {
		fb.Add(d.Box.Start.X, d.Box.Start.Y, d.Box.End.X, d.Box.End.Y)
	}
	fb.Finish()

	uf := newUnionFind(n)
	nearby := []int{}
	for i, d := range dets {
		nearby = fb.SearchFast(d.Box.Start.X, d.Box.Start.Y, d.Box.End.X, d.Box.End.Y, nearby)
		for _, j := range nearby {
			if j <= i {
				continue
			}
			if sameRegion(d, dets[j], iouThreshold) {
				uf.union(i, j)
			}
		}
	}

	// Собираем кластеры в порядке их первого участника.
	order := make([]int, 0, n)
	groups := make(map[int][]entity.Detection, n)
	for i := range dets {
		root := uf.find(i)
		if _, seen := groups[root]; !seen {
			order = append(order, root)
		}
		groups[root] = append(groups[root], dets[i])
	}

	clusters := make([][]entity.Detection, 0, len(order))
	for _, root := range order {
		clusters = append(clusters, groups[root])
	}
	return clusters
}

// sameRegion сообщает, наблюдают ли две детекции одну физическую структуру:
// либо их прямоугольники проходят порог IoU, либо оба несут кольца
// сегментации, которые касаются или пересекаются.
func sameRegion(a, b entity.Detection, iouThreshold float64) bool {
	if a.Box.IoU(b.Box) >= iouThreshold {
		return true
	}
	if !a.HasPolygon() || !b.HasPolygon() {
		return false
	}
	// Touches, а не Intersects: две половины одной структуры, разрезанной
	// границей тайла, делят лишь ребро, и это ребро должно их связать.
	if !a.Box.Touches(b.Box) {
		return false
	}
	return geometry.Overlaps(a.Polygon, b.Polygon)
}
