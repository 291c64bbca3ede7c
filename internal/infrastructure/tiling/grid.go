package tiling

import (
	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
)

// Grid строит сетку перекрывающихся окон по слайду и переводит локальные
// детекции тайла в глобальные координаты слайда.
type Grid struct {
	TileSize     int
	OverlapRatio float64
}

// New создаёт сетку. Доля перекрытия вне [0, 1) сбрасывается в 0.
func New(tileSize int, overlapRatio float64) Grid {
	if overlapRatio < 0 || overlapRatio >= 1 {
		overlapRatio = 0
	}
	return Grid{TileSize: tileSize, OverlapRatio: overlapRatio}
}

// Tiles возвращает окна, покрывающие слайд width x height. Шаг окна —
// size*(1-overlap); последние ряд и колонка прижимаются к краю слайда,
// чтобы покрыть каждый пиксель, не выходя за границу.
func (g Grid) Tiles(width, height int) []entity.Tile {
	if width <= 0 || height <= 0 || g.TileSize <= 0 {
		return nil
	}
	step := int(float64(g.TileSize) * (1 - g.OverlapRatio))
	if step < 1 {
		step = 1
	}

	xs := positions(width, g.TileSize, step)
	ys := positions(height, g.TileSize, step)

	tiles := make([]entity.Tile, 0, len(xs)*len(ys))
	id := 0
	for _, y := range ys {
		for _, x := range xs {
			tiles = append(tiles, entity.Tile{ID: id, X: x, Y: y, Size: g.TileSize})
			id++
		}
	}
	return tiles
}

// ToGlobal сдвигает локальную детекцию тайла в глобальные координаты.
// Входная детекция не меняется.
func (g Grid) ToGlobal(tile entity.Tile, det entity.Detection) entity.Detection {
	dx, dy := float64(tile.X), float64(tile.Y)

	out := det
	out.Box = entity.Box{
		Start: entity.Point{X: det.Box.Start.X + dx, Y: det.Box.Start.Y + dy},
		End:   entity.Point{X: det.Box.End.X + dx, Y: det.Box.End.Y + dy},
	}
	if det.Polygon != nil {
		poly := make(entity.Polygon, len(det.Polygon))
		for i, p := range det.Polygon {
			poly[i] = entity.Point{X: p.X + dx, Y: p.Y + dy}
		}
		out.Polygon = poly
	}
	return out
}

// positions возвращает начала окон вдоль одной оси.
func positions(extent, size, step int) []int {
	if extent <= size {
		return []int{0}
	}
	var out []int
	for p := 0; ; p += step {
		if p+size >= extent {
			out = append(out, extent-size)
			break
		}
		out = append(out, p)
	}
	return out
}

var _ port.Tiler = Grid{}
