package geometry

import (
	"errors"
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"wsi-recon/internal/domain/entity"
)

var errTooFewPoints = errors.New("polygon needs at least 3 vertices")

// Validate проверяет, что кольцо — простой полигон с ненулевой площадью.
func Validate(p entity.Polygon) error {
	if len(p) < 3 {
		return errTooFewPoints
	}
	if p.Area() <= 0 {
		return errors.New("polygon has zero area")
	}
	if err := toGeom(p).Validate(); err != nil {
		return fmt.Errorf("invalid polygon: %w", err)
	}
	return nil
}

// Heal делает единственный детерминированный проход починки невалидного
// кольца: объединение полигона с самим собой. Валидный вход возвращается
// без изменений. Второе значение false — кольцо починить не удалось и его
// нужно отбросить.
func Heal(p entity.Polygon) (entity.Polygon, bool) {
	if Validate(p) == nil {
		return p, true
	}
	if len(p) < 3 {
		return nil, false
	}

	g := toGeom(p).AsGeometry()
	healed, err := geom.Union(g, g)
	if err != nil {
		return nil, false
	}

	// Самопересекающееся кольцо распадается на несколько лепестков.
	// Оставляем самый большой: починенная форма должна по-прежнему
	// представлять одну детекцию.
	var best entity.Polygon
	for _, ring := range extractRings(healed, false) {
		if Validate(ring) != nil {
			continue
		}
		if best == nil || ring.Area() > best.Area() {
			best = ring
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Overlaps сообщает, касаются или пересекаются ли два валидных кольца.
func Overlaps(a, b entity.Polygon) bool {
	return geom.Intersects(toGeom(a).AsGeometry(), toGeom(b).AsGeometry())
}

// UnionPolygons сливает набор колец в их геометрическое объединение.
//
// Невалидные входы один раз чинятся и отбрасываются, если так и остались
// невалидными; dropped сообщает, сколько потеряно — это информация для
// вызывающего, а не ошибка. Несвязные входы дают несколько выходных колец.
// Дырки отбрасываются, если не задан keepHoles: потребители ждут сплошных
// регионов. nil-срез колец при dropped == len(polys) значит, что все входы
// были невалидны и вызывающему пора откатиться к слиянию прямоугольников.
func UnionPolygons(polys []entity.Polygon, keepHoles bool) (rings []entity.Polygon, dropped int, err error) {
	usable := make([]geom.Geometry, 0, len(polys))
	for _, p := range polys {
		healed, ok := Heal(p)
		if !ok {
			dropped++
			continue
		}
		usable = append(usable, toGeom(healed).AsGeometry())
	}
	if len(usable) == 0 {
		return nil, dropped, nil
	}

	merged := usable[0]
	for _, g := range usable[1:] {
		merged, err = geom.Union(merged, g)
		if err != nil {
			return nil, dropped, fmt.Errorf("polygon union: %w", err)
		}
	}
	if merged.IsEmpty() {
		return nil, dropped, nil
	}

	for _, ring := range extractRings(merged, keepHoles) {
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	return rings, dropped, nil
}
