package recon

import (
	"math"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/geometry"
)

// ConfidencePolicy сводит уверенности участников кластера к одной оценке.
type ConfidencePolicy func(members []entity.Detection) float64

// MaxConfidence оставляет структуре, подтверждённой любой моделью или
// тайлом, её лучшую наблюдённую уверенность. Оптимистичный вариант по
// умолчанию; это выбор политики, а не закон геометрии, и он может
// завышать уверенность.
func MaxConfidence(members []entity.Detection) float64 {
	var best float64
	for _, m := range members {
		if m.Confidence > best {
			best = m.Confidence
		}
	}
	return best
}

// MeanConfidence усредняет уверенности участников.
func MeanConfidence(members []entity.Detection) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range members {
		sum += m.Confidence
	}
	return sum / float64(len(members))
}

// MergePolicy называет заменяемые решения слияния.
type MergePolicy struct {
	Confidence ConfidencePolicy
	// KeepHoles оставляет внутренние кольца объединения отдельными
	// выходными кольцами. По умолчанию выключено: потребители ждут
	// простых сплошных регионов.
	KeepHoles bool
}

// DefaultMergePolicy возвращает политику исходного конвейера.
func DefaultMergePolicy() MergePolicy {
	return MergePolicy{Confidence: MaxConfidence}
}

// mergeCluster схлопывает один кластер (>= 1 детекции одного класса) в его
// сводные детекции. Несвязное объединение полигонов даёт по одной сводной
// детекции на выходное кольцо, каждая со своим плотным прямоугольником.
// Возвращает число полигонов-участников, отброшенных как непочиняемые.
func mergeCluster(members []entity.Detection, policy MergePolicy) ([]entity.MergedDetection, int) {
	class := members[0].Class
	confidence := policy.Confidence(members)

	var polys []entity.Polygon
	var boxOnly []entity.Box
	for _, m := range members {
		if m.HasPolygon() {
			polys = append(polys, m.Polygon)
		} else {
			boxOnly = append(boxOnly, m.Box)
		}
	}

	if len(polys) == 0 {
		return []entity.MergedDetection{boxOnlyMerge(members, class, confidence)}, 0
	}

	rings, dropped, err := geometry.UnionPolygons(polys, policy.KeepHoles)
	if err != nil || len(rings) == 0 {
		// Объединение выродилось: откатываемся к исходным прямоугольникам.
		return []entity.MergedDetection{boxOnlyMerge(members, class, confidence)}, dropped
	}

	merged := make([]entity.MergedDetection, len(rings))
	for i, ring := range rings {
		merged[i] = entity.MergedDetection{
			Class:      class,
			Box:        ring.BoundingBox(),
			Confidence: confidence,
			Polygon:    ring,
		}
	}

	// Участники без полигонов в объединение не входят, но их охват всё
	// равно принадлежит результату: каждый прямоугольник расширяет тот
	// выход, с которым он пересекается больше всего.
	for _, b := range boxOnly {
		i := closestOutput(merged, b)
		merged[i].Box = merged[i].Box.Union(b)
	}
	return merged, dropped
}

// boxOnlyMerge сводит кластер к ограничивающему прямоугольнику всех участников.
func boxOnlyMerge(members []entity.Detection, class string, confidence float64) entity.MergedDetection {
	box := members[0].Box
	for _, m := range members[1:] {
		box = box.Union(m.Box)
	}
	return entity.MergedDetection{Class: class, Box: box, Confidence: confidence}
}

// closestOutput выбирает, в какой выход свернуть прямоугольник: тот, с
// которым он больше всего пересекается, а если ни с кем — тот, чей центр
// ближе.
func closestOutput(merged []entity.MergedDetection, b entity.Box) int {
	best := 0
	bestOverlap := -1.0
	for i, m := range merged {
		if overlap := m.Box.IntersectionArea(b); overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if bestOverlap > 0 {
		return best
	}

	bc := b.Center()
	bestDist := math.MaxFloat64
	for i, m := range merged {
		mc := m.Box.Center()
		if d := math.Hypot(mc.X-bc.X, mc.Y-bc.Y); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
