package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxArea(t *testing.T) {
	b := NewBox(0, 0, 10, 10)
	require.Equal(t, 100.0, b.Area())
}

func TestBoxAreaDegenerate(t *testing.T) {
	require.Equal(t, 0.0, NewBox(5, 5, 5, 5).Area())
	require.Equal(t, 0.0, NewBox(0, 0, 10, 0).Area())
}

func TestBoxCenter(t *testing.T) {
	c := NewBox(0, 0, 10, 20).Center()
	require.Equal(t, Point{X: 5, Y: 10}, c)
}

func TestBoxIntersectionArea(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(5, 5, 15, 15)
	require.Equal(t, 25.0, a.IntersectionArea(b))
	require.Equal(t, 25.0, b.IntersectionArea(a))

	disjoint := NewBox(20, 20, 30, 30)
	require.Equal(t, 0.0, a.IntersectionArea(disjoint))
	require.False(t, a.Intersects(disjoint))
}

func TestBoxTouches(t *testing.T) {
	a := NewBox(0, 0, 10, 10)

	// Общее ребро: нулевая площадь пересечения, но контакт есть.
	edge := NewBox(10, 0, 20, 10)
	require.False(t, a.Intersects(edge))
	require.True(t, a.Touches(edge))

	// Общий угол.
	corner := NewBox(10, 10, 20, 20)
	require.True(t, a.Touches(corner))

	require.True(t, a.Touches(NewBox(5, 5, 15, 15)))
	require.False(t, a.Touches(NewBox(11, 0, 20, 10)))
}

func TestBoxIoU(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	require.Equal(t, 1.0, a.IoU(a))

	b := NewBox(5, 5, 15, 15)
	// пересечение 25, объединение 100 + 100 - 25 = 175
	require.InDelta(t, 25.0/175.0, a.IoU(b), 1e-9)

	require.Equal(t, 0.0, a.IoU(NewBox(20, 20, 30, 30)))
}

func TestBoxIoUDegenerate(t *testing.T) {
	a := NewBox(1, 1, 1, 1)
	b := NewBox(2, 2, 2, 2)
	require.Equal(t, 0.0, a.IoU(b))
	require.Equal(t, 0.0, a.IoU(a))
}

func TestBoxValid(t *testing.T) {
	require.True(t, NewBox(0, 0, 10, 10).Valid())
	require.True(t, NewBox(3, 3, 3, 3).Valid())
	require.False(t, NewBox(10, 0, 0, 10).Valid())
	require.False(t, NewBox(math.NaN(), 0, 1, 1).Valid())
}

func TestBoxUnion(t *testing.T) {
	u := NewBox(0, 0, 10, 10).Union(NewBox(5, 5, 15, 15))
	require.Equal(t, NewBox(0, 0, 15, 15), u)
}
