package entity

import "math"

// Point — координата в глобальных пикселях слайда.
type Point struct {
	X float64
	Y float64
}

// Box — прямоугольник по осям, заданный минимальным и максимальным углами.
type Box struct {
	Start Point // min x, min y
	End   Point // max x, max y
}

// NewBox собирает прямоугольник из координат углов.
func NewBox(x1, y1, x2, y2 float64) Box {
	return Box{Start: Point{X: x1, Y: y1}, End: Point{X: x2, Y: y2}}
}

// Valid проверяет, что углы согласованы и конечны.
func (b Box) Valid() bool {
	if math.IsNaN(b.Start.X) || math.IsNaN(b.Start.Y) || math.IsNaN(b.End.X) || math.IsNaN(b.End.Y) {
		return false
	}
	if math.IsInf(b.Start.X, 0) || math.IsInf(b.Start.Y, 0) || math.IsInf(b.End.X, 0) || math.IsInf(b.End.Y, 0) {
		return false
	}
	return b.End.X >= b.Start.X && b.End.Y >= b.Start.Y
}

// Width возвращает ширину, никогда не отрицательную.
func (b Box) Width() float64 {
	return math.Max(0, b.End.X-b.Start.X)
}

// Height возвращает высоту, никогда не отрицательную.
func (b Box) Height() float64 {
	return math.Max(0, b.End.Y-b.Start.Y)
}

// Area возвращает площадь. У вырожденных прямоугольников площадь 0.
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// Center возвращает центр прямоугольника.
func (b Box) Center() Point {
	return Point{
		X: (b.Start.X + b.End.X) / 2,
		Y: (b.Start.Y + b.End.Y) / 2,
	}
}

// IntersectionArea возвращает площадь пересечения, 0 если не пересекаются.
func (b Box) IntersectionArea(o Box) float64 {
	w := math.Min(b.End.X, o.End.X) - math.Max(b.Start.X, o.Start.X)
	h := math.Min(b.End.Y, o.End.Y) - math.Max(b.Start.Y, o.Start.Y)
	return math.Max(0, w) * math.Max(0, h)
}

// Intersects сообщает, пересекаются ли прямоугольники с положительной площадью.
func (b Box) Intersects(o Box) bool {
	return b.IntersectionArea(o) > 0
}

// Touches сообщает, пересекаются или соприкасаются ли прямоугольники.
// В отличие от Intersects, общее ребро или угол тоже считается.
func (b Box) Touches(o Box) bool {
	return b.Start.X <= o.End.X && o.Start.X <= b.End.X &&
		b.Start.Y <= o.End.Y && o.Start.Y <= b.End.Y
}

// IoU возвращает пересечение-на-объединение двух прямоугольников.
// Определено на всех входах: два вырожденных дают 0, а не деление на ноль.
func (b Box) IoU(o Box) float64 {
	inter := b.IntersectionArea(o)
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Union возвращает ограничивающий прямоугольник обоих.
func (b Box) Union(o Box) Box {
	return Box{
		Start: Point{X: math.Min(b.Start.X, o.Start.X), Y: math.Min(b.Start.Y, o.Start.Y)},
		End:   Point{X: math.Max(b.End.X, o.End.X), Y: math.Max(b.End.Y, o.End.Y)},
	}
}
