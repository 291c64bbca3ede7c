package entity

// Tile — одно окно сетки слайда в глобальных пиксельных координатах.
type Tile struct {
	ID   int
	X    int
	Y    int
	Size int
}

// Statistics — сводка по набору согласованных регионов.
type Statistics struct {
	Total         int
	ByClass       map[string]int
	AvgConfidence float64
}

// ComputeStatistics считает сводку по набору согласованных регионов.
func ComputeStatistics(regions []MergedDetection) Statistics {
	stats := Statistics{
		Total:   len(regions),
		ByClass: make(map[string]int),
	}
	var sum float64
	for _, r := range regions {
		stats.ByClass[r.Class]++
		sum += r.Confidence
	}
	if stats.Total > 0 {
		stats.AvgConfidence = sum / float64(stats.Total)
	}
	return stats
}

// RunResult — сохраняемый итог согласования одного слайда.
type RunResult struct {
	ID      string
	Slide   SlideInfo
	Regions []MergedDetection
	Stats   Statistics
}
