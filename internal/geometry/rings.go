package geometry

import (
	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/geom"

	"wsi-recon/internal/domain/entity"
)

// toRing превращает открытое кольцо в замкнутое кольцо orb.
func toRing(p entity.Polygon) orb.Ring {
	ring := make(orb.Ring, 0, len(p)+1)
	for _, pt := range p {
		ring = append(ring, orb.Point{pt.X, pt.Y})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// fromRing превращает замкнутое кольцо orb обратно в открытое.
func fromRing(r orb.Ring) entity.Polygon {
	n := len(r)
	if n > 1 && r[0] == r[n-1] {
		n--
	}
	if n == 0 {
		return nil
	}
	out := make(entity.Polygon, n)
	for i := 0; i < n; i++ {
		out[i] = entity.Point{X: r[i][0], Y: r[i][1]}
	}
	return out
}

// toGeom строит полигон simplefeatures из открытого кольца.
// Полигон создаётся без валидации; у результата нужно звать Validate.
func toGeom(p entity.Polygon) geom.Polygon {
	coords := make([]float64, 0, (len(p)+1)*2)
	for _, pt := range p {
		coords = append(coords, pt.X, pt.Y)
	}
	if len(p) > 0 && p[0] != p[len(p)-1] {
		coords = append(coords, p[0].X, p[0].Y)
	}
	seq := geom.NewSequence(coords, geom.DimXY)
	ring := geom.NewLineString(seq)
	return geom.NewPolygon([]geom.LineString{ring})
}

// fromGeomRing превращает кольцо simplefeatures в открытое кольцо.
func fromGeomRing(ls geom.LineString) entity.Polygon {
	seq := ls.Coordinates()
	n := seq.Length()
	if n > 1 {
		first, last := seq.GetXY(0), seq.GetXY(n-1)
		if first == last {
			n--
		}
	}
	if n == 0 {
		return nil
	}
	out := make(entity.Polygon, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		out[i] = entity.Point{X: xy.X, Y: xy.Y}
	}
	return out
}

// extractRings собирает внешние границы всех полигонов внутри g.
// Внутренние кольца добавляются только при keepHoles.
func extractRings(g geom.Geometry, keepHoles bool) []entity.Polygon {
	var rings []entity.Polygon
	switch g.Type() {
	case geom.TypePolygon:
		rings = append(rings, polygonRings(g.MustAsPolygon(), keepHoles)...)
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			rings = append(rings, polygonRings(mp.PolygonN(i), keepHoles)...)
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			rings = append(rings, extractRings(gc.GeometryN(i), keepHoles)...)
		}
	}
	return rings
}

func polygonRings(p geom.Polygon, keepHoles bool) []entity.Polygon {
	rings := []entity.Polygon{fromGeomRing(p.ExteriorRing())}
	if keepHoles {
		for i := 0; i < p.NumInteriorRings(); i++ {
			rings = append(rings, fromGeomRing(p.InteriorRingN(i)))
		}
	}
	return rings
}
