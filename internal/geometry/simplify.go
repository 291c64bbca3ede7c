package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"wsi-recon/internal/domain/entity"
)

// Simplifier уменьшает число точек кольца до лимита, сохраняя валидность.
// Счёт точек идёт по замкнутому кольцу (замыкающая вершина считается),
// поэтому лимит 60 допускает 59 различных вершин.
type Simplifier struct {
	MaxPoints     int
	MinTolerance  float64
	MaxTolerance  float64
	MaxIterations int
}

// Параметры упрощения по умолчанию.
const (
	DefaultMaxPoints     = 60
	DefaultMinTolerance  = 0.1
	DefaultMaxTolerance  = 10.0
	DefaultMaxIterations = 10

	// closeEnough останавливает поиск, когда кандидат использует хотя бы
	// такую долю лимита точек.
	closeEnough = 0.8
)

// NewSimplifier возвращает упрощатель с границами поиска по умолчанию.
func NewSimplifier() Simplifier {
	return Simplifier{
		MaxPoints:     DefaultMaxPoints,
		MinTolerance:  DefaultMinTolerance,
		MaxTolerance:  DefaultMaxTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

// SimplifyResult несёт упрощённое кольцо и запись о качестве.
type SimplifyResult struct {
	Polygon entity.Polygon
	Quality entity.SimplifyQuality
}

type simplifyState int

const (
	stateBudgetCheck simplifyState = iota
	stateBinarySearch
	stateFallback
	stateBestEffort
	stateDone
)

// Simplify прогоняет проверку лимита, поиск допуска и цепочку запасных
// вариантов для одного кольца. Результат всегда валиден: best-effort может
// превысить лимит, но вырожденное или самопересекающееся кольцо не
// возвращается никогда. Вход в пределах лимита возвращается как есть.
func (s Simplifier) Simplify(p entity.Polygon) SimplifyResult {
	out := p
	// Лучший валидный кандидат по числу точек. Начинается с оригинала,
	// чтобы цепочке запасных вариантов всегда было на что опереться.
	best := p
	fallback := false

	state := stateBudgetCheck
	for state != stateDone {
		switch state {
		case stateBudgetCheck:
			if closedLen(p) <= s.MaxPoints {
				out = p
				state = stateDone
				continue
			}
			state = stateBinarySearch

		case stateBinarySearch:
			found := false
			lo, hi := s.MinTolerance, s.MaxTolerance
			for i := 0; i < s.MaxIterations; i++ {
				tol := (lo + hi) / 2
				cand := douglasPeucker(p, tol)
				if cand == nil || closedLen(cand) <= 3 || Validate(cand) != nil {
					// Переупростили или сломали кольцо: отступаем.
					hi = tol
					continue
				}
				if closedLen(cand) < closedLen(best) {
					best = cand
				}
				n := closedLen(cand)
				if n > s.MaxPoints {
					// Упрощения пока недостаточно.
					lo = tol
					continue
				}
				out = cand
				found = true
				if float64(n) >= float64(s.MaxPoints)*closeEnough {
					break
				}
				// В лимите, но с запасом: ищем меньшее упрощение, чтобы
				// подойти к лимиту снизу.
				hi = tol
			}
			if found {
				state = stateDone
				continue
			}
			state = stateFallback

		case stateFallback:
			// Отбор точек идёт по исходному кольцу: шаг выводится из
			// исходного числа точек, а не из кандидата поиска.
			sampled := uniformSample(p, s.MaxPoints)
			if sampled != nil && closedLen(sampled) > 3 && Validate(sampled) == nil {
				out = sampled
				fallback = true
				state = stateDone
				continue
			}
			state = stateBestEffort

		case stateBestEffort:
			// Поиск до лимита не дошёл, а отбор сломал кольцо. Валидное
			// кольцо сверх лимита лучше вырожденного в лимите.
			out = best
			state = stateDone
		}
	}

	return SimplifyResult{
		Polygon: out,
		Quality: entity.SimplifyQuality{
			AreaRatio:      ratio(out.Area(), p.Area()),
			PerimeterRatio: ratio(out.Perimeter(), p.Perimeter()),
			Fallback:       fallback,
			OverBudget:     closedLen(out) > s.MaxPoints,
		},
	}
}

// closedLen — число точек кольца вместе с замыкающей вершиной.
func closedLen(p entity.Polygon) int {
	return len(p) + 1
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

// douglasPeucker упрощает замкнутое кольцо с заданным допуском.
// Возвращает nil, когда оператор схлопывает кольцо.
func douglasPeucker(p entity.Polygon, tolerance float64) entity.Polygon {
	ls := orb.LineString(toRing(p))
	simplified := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone())
	result, ok := simplified.(orb.LineString)
	if !ok || len(result) < 4 {
		return nil
	}
	return fromRing(orb.Ring(result))
}

// uniformSample оставляет каждую k-ю вершину замкнутого кольца,
// k = floor(count/maxPoints). Детерминирован, но слеп к форме: результат
// нужно проверить на валидность, прежде чем ему доверять.
func uniformSample(p entity.Polygon, maxPoints int) entity.Polygon {
	if maxPoints <= 0 {
		return nil
	}
	closed := toRing(p)
	k := len(closed) / maxPoints
	if k < 1 {
		k = 1
	}
	sampled := make(orb.Ring, 0, len(closed)/k+1)
	for i := 0; i < len(closed); i += k {
		sampled = append(sampled, closed[i])
	}
	if len(sampled) < 3 {
		return nil
	}
	return fromRing(sampled)
}
