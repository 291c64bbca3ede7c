//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"

	"gocv.io/x/gocv"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
)

// ContourDetector находит структуры ткани на тайле по контурам границ и
// отдаёт детекции с прямоугольником и полигоном в локальных координатах
// тайла. Замещает обученную модель за портом TileDetector.
type ContourDetector struct {
	ModelName      string
	Class          string
	MinAreaRatio   float64
	MinAspectRatio float64
	MaxAspectRatio float64
}

// NewContourDetector создаёт детектор, выдающий заданный класс.
func NewContourDetector(name, class string) *ContourDetector {
	return &ContourDetector{
		ModelName:      name,
		Class:          class,
		MinAreaRatio:   0.001,
		MinAspectRatio: 0.1,
		MaxAspectRatio: 10.0,
	}
}

// Name идентифицирует модель-источник.
func (d *ContourDetector) Name() string {
	return d.ModelName
}

// DetectTile анализирует одно закодированное изображение тайла.
func (d *ContourDetector) DetectTile(ctx context.Context, tile []byte) ([]entity.Detection, error) {
	_ = ctx
	mat, err := decodeToMat(tile)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := float64(mat.Cols()*mat.Rows()) * d.MinAreaRatio
	detections := make([]entity.Detection, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		rect := gocv.BoundingRect(c)
		area := float64(rect.Dx() * rect.Dy())
		if area < minArea || rect.Dy() == 0 {
			continue
		}

		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect < d.MinAspectRatio || aspect > d.MaxAspectRatio {
			continue
		}

		points := c.ToPoints()
		poly := make(entity.Polygon, 0, len(points))
		for _, p := range points {
			poly = append(poly, entity.Point{X: float64(p.X), Y: float64(p.Y)})
		}
		if len(poly) < 3 {
			poly = nil
		}

		// Заполненность контура внутри его прямоугольника играет роль
		// оценки модели.
		confidence := gocv.ContourArea(c) / area
		if confidence > 1 {
			confidence = 1
		}

		detections = append(detections, entity.Detection{
			Class: d.Class,
			Box: entity.NewBox(
				float64(rect.Min.X), float64(rect.Min.Y),
				float64(rect.Max.X), float64(rect.Max.Y),
			),
			Confidence: confidence,
			Polygon:    poly,
			Model:      d.ModelName,
		})
	}

	return detections, nil
}

// BrightnessGate считает тайл тканью, когда средняя яркость ниже порога:
// фон слайда сканируется почти чисто белым.
type BrightnessGate struct {
	Threshold float64
}

// NewBrightnessGate возвращает фильтр со стандартным порогом белого фона.
func NewBrightnessGate() *BrightnessGate {
	return &BrightnessGate{Threshold: 240}
}

// HasTissue сообщает, есть ли на тайле ткань.
func (g *BrightnessGate) HasTissue(ctx context.Context, tile []byte) (bool, error) {
	_ = ctx
	mat, err := gocv.IMDecode(tile, gocv.IMReadGrayScale)
	if err != nil {
		return false, err
	}
	defer mat.Close()
	if mat.Empty() {
		return false, errors.New("failed to decode tile")
	}

	return mat.Mean().Val1 < g.Threshold, nil
}

func decodeToMat(data []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode tile")
}

var (
	_ port.TileDetector     = (*ContourDetector)(nil)
	_ port.TissueClassifier = (*BrightnessGate)(nil)
)
