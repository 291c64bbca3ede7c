package entity

// Detection — одно сырое наблюдение детектора на отдельном тайле, уже
// переведённое в глобальные координаты слайда. Детекции — входные значения:
// конвейер согласования их не меняет, а строит новые.
type Detection struct {
	Class      string
	Box        Box
	Confidence float64 // в [0, 1]
	Polygon    Polygon // nil для детекторов без сегментации
	Model      string  // модель-источник, только для происхождения
}

// HasPolygon сообщает, несёт ли детекция кольцо сегментации.
func (d Detection) HasPolygon() bool {
	return len(d.Polygon) >= 3
}

// MergedDetection — один согласованный регион. Кластер с несвязным
// объединением полигонов даёт несколько таких регионов, каждый со своим
// плотным прямоугольником.
type MergedDetection struct {
	Class      string
	Box        Box
	Confidence float64
	Polygon    Polygon // nil если кластер состоял только из прямоугольников
	Quality    *SimplifyQuality
}

// SimplifyQuality описывает, насколько точно объединённый полигон пережил
// упрощение. Это диагностический сигнал, а не фильтр.
type SimplifyQuality struct {
	AreaRatio      float64 // площадь после упрощения / исходная
	PerimeterRatio float64 // периметр после упрощения / исходный
	Fallback       bool    // сработал запасной равномерный отбор точек
	OverBudget     bool    // результат превышает лимит точек (best effort)
}

// SlideInfo описывает исходное полнослайдовое изображение.
type SlideInfo struct {
	Path   string
	Width  int
	Height int
	Levels int
	MPP    float64 // микрометров на пиксель, 0 если неизвестно
}
