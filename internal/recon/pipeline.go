package recon

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/geometry"
)

// Options настраивают движок согласования.
type Options struct {
	// IoUThreshold — минимальный IoU прямоугольников, при котором две
	// детекции считаются одной структурой.
	IoUThreshold float64
	// MaxPolygonPoints — лимит точек на выходное кольцо при упрощении.
	MaxPolygonPoints int
	// MinTolerance, MaxTolerance и MaxSearchIterations ограничивают
	// поиск допуска упрощения.
	MinTolerance        float64
	MaxTolerance        float64
	MaxSearchIterations int
	Policy              MergePolicy
}

// DefaultOptions возвращает настройки движка по умолчанию.
func DefaultOptions() Options {
	return Options{
		IoUThreshold:        0.5,
		MaxPolygonPoints:    geometry.DefaultMaxPoints,
		MinTolerance:        geometry.DefaultMinTolerance,
		MaxTolerance:        geometry.DefaultMaxTolerance,
		MaxSearchIterations: geometry.DefaultMaxIterations,
		Policy:              DefaultMergePolicy(),
	}
}

// Report несёт диагностику прогона. Ничего фатального в нём нет: он
// существует, чтобы вызывающий видел, сколько деградаций прогон поглотил.
type Report struct {
	DroppedPolygons int // непочиняемые кольца, исключённые из объединений
	FallbackCount   int // кольца, упрощённые запасным равномерным отбором
	OverBudget      int // кольца, возвращённые сверх лимита точек
}

// Reconciler превращает избыточный набор сырых детекций в чистый набор
// регионов без дублей. Чистая функция своего входа: скрытого состояния
// нет, конкурентные вызовы безопасны.
type Reconciler struct {
	opts       Options
	simplifier geometry.Simplifier
}

// New собирает движок; нулевые настройки заменяются значениями по умолчанию.
func New(opts Options) *Reconciler {
	def := DefaultOptions()
	if opts.IoUThreshold <= 0 {
		opts.IoUThreshold = def.IoUThreshold
	}
	if opts.IoUThreshold > 1 {
		opts.IoUThreshold = 1
	}
	if opts.MaxPolygonPoints <= 0 {
		opts.MaxPolygonPoints = def.MaxPolygonPoints
	}
	if opts.MinTolerance <= 0 {
		opts.MinTolerance = def.MinTolerance
	}
	if opts.MaxTolerance <= 0 {
		opts.MaxTolerance = def.MaxTolerance
	}
	if opts.MaxSearchIterations <= 0 {
		opts.MaxSearchIterations = def.MaxSearchIterations
	}
	// Перевёрнутая полоса допусков оставила бы каждую середину поиска
	// вне её.
	if opts.MinTolerance > opts.MaxTolerance {
		opts.MinTolerance, opts.MaxTolerance = opts.MaxTolerance, opts.MinTolerance
	}
	if opts.Policy.Confidence == nil {
		opts.Policy.Confidence = MaxConfidence
	}
	return &Reconciler{
		opts: opts,
		simplifier: geometry.Simplifier{
			MaxPoints:     opts.MaxPolygonPoints,
			MinTolerance:  opts.MinTolerance,
			MaxTolerance:  opts.MaxTolerance,
			MaxIterations: opts.MaxSearchIterations,
		},
	}
}

// Reconcile кластеризует, сливает и упрощает набор сырых детекций.
//
// Детекции уже должны быть в одной глобальной системе координат. Вход не
// мутируется. Разделы по классам не зависят друг от друга и идут
// параллельно; порядок выхода всё равно детерминирован: разделы — в
// порядке первого появления класса, кластеры — в порядке первого участника.
func (r *Reconciler) Reconcile(dets []entity.Detection) ([]entity.MergedDetection, Report, error) {
	if err := validateInput(dets); err != nil {
		return nil, Report{}, err
	}

	classes, byClass := partitionByClass(dets)

	results := make([][]entity.MergedDetection, len(classes))
	reports := make([]Report, len(classes))

	var g errgroup.Group
	for ci, class := range classes {
		ci, partition := ci, byClass[class]
		g.Go(func() error {
			results[ci], reports[ci] = r.reconcileClass(partition)
			return nil
		})
	}
	// Работа раздела не падает; группа только упорядочивает ожидание.
	_ = g.Wait()

	var merged []entity.MergedDetection
	var report Report
	for ci := range classes {
		merged = append(merged, results[ci]...)
		report.DroppedPolygons += reports[ci].DroppedPolygons
		report.FallbackCount += reports[ci].FallbackCount
		report.OverBudget += reports[ci].OverBudget
	}
	return merged, report, nil
}

// reconcileClass прогоняет цепочку кластеризация/слияние/упрощение для
// одного класса. Последовательно и детерминированно внутри раздела.
func (r *Reconciler) reconcileClass(dets []entity.Detection) ([]entity.MergedDetection, Report) {
	var out []entity.MergedDetection
	var report Report

	for _, cluster := range clusterDetections(dets, r.opts.IoUThreshold) {
		merged, dropped := mergeCluster(cluster, r.opts.Policy)
		report.DroppedPolygons += dropped

		for _, m := range merged {
			if m.Polygon != nil {
				res := r.simplifier.Simplify(m.Polygon)
				m.Polygon = res.Polygon
				m.Quality = &res.Quality
				if res.Quality.Fallback {
					report.FallbackCount++
				}
				if res.Quality.OverBudget {
					report.OverBudget++
				}
			}
			out = append(out, m)
		}
	}
	return out, report
}

// validateInput отбрасывает некорректные детекции на границе. Внутри
// конвейера любое условие деградирует; противоречивый вход — единственное,
// что отвергается сразу.
func validateInput(dets []entity.Detection) error {
	for i, d := range dets {
		if !d.Box.Valid() {
			return fmt.Errorf("detection %d (%q): inconsistent box corners", i, d.Class)
		}
		if d.Confidence < 0 || d.Confidence > 1 {
			return fmt.Errorf("detection %d (%q): confidence %v outside [0,1]", i, d.Class, d.Confidence)
		}
	}
	return nil
}

func partitionByClass(dets []entity.Detection) ([]string, map[string][]entity.Detection) {
	var classes []string
	byClass := make(map[string][]entity.Detection)
	for _, d := range dets {
		if _, seen := byClass[d.Class]; !seen {
			classes = append(classes, d.Class)
		}
		byClass[d.Class] = append(byClass[d.Class], d)
	}
	return classes, byClass
}
