package entity

import "math"

// Polygon — открытое кольцо вершин в глобальных пикселях слайда.
// Замыкающее ребро от последней вершины к первой подразумевается.
type Polygon []Point

// Len возвращает число вершин.
func (p Polygon) Len() int {
	return len(p)
}

// Area возвращает площадь кольца по формуле шнурования (по модулю).
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return math.Abs(sum) / 2
}

// Perimeter возвращает длину замкнутого кольца.
func (p Polygon) Perimeter() float64 {
	if len(p) < 2 {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += math.Hypot(p[j].X-p[i].X, p[j].Y-p[i].Y)
	}
	return sum
}

// BoundingBox возвращает плотный ограничивающий прямоугольник кольца.
func (p Polygon) BoundingBox() Box {
	if len(p) == 0 {
		return Box{}
	}
	b := Box{Start: p[0], End: p[0]}
	for _, pt := range p[1:] {
		b.Start.X = math.Min(b.Start.X, pt.X)
		b.Start.Y = math.Min(b.Start.Y, pt.Y)
		b.End.X = math.Max(b.End.X, pt.X)
		b.End.Y = math.Max(b.End.Y, pt.Y)
	}
	return b
}

// Clone возвращает независимую копию кольца.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}
