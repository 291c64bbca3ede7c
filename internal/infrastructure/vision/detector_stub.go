//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
)

// ContourDetector — заглушка для сборок без тега gocv.
type ContourDetector struct {
	ModelName      string
	Class          string
	MinAreaRatio   float64
	MinAspectRatio float64
	MaxAspectRatio float64
}

// NewContourDetector создаёт детектор-заглушку (без OpenCV).
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

// DetectTile возвращает ошибку в сборке без тега gocv.
func (d *ContourDetector) DetectTile(ctx context.Context, tile []byte) ([]entity.Detection, error) {
	_ = ctx
	_ = tile
	return nil, errors.New("gocv build tag is not enabled")
}

// BrightnessGate — заглушка для сборок без тега gocv.
type BrightnessGate struct {
	Threshold float64
}

// NewBrightnessGate возвращает фильтр-заглушку (без OpenCV).
func NewBrightnessGate() *BrightnessGate {
	return &BrightnessGate{Threshold: 240}
}

// HasTissue возвращает ошибку в сборке без тега gocv.
func (g *BrightnessGate) HasTissue(ctx context.Context, tile []byte) (bool, error) {
	_ = ctx
	_ = tile
	return false, errors.New("gocv build tag is not enabled")
}

var (
	_ port.TileDetector     = (*ContourDetector)(nil)
	_ port.TissueClassifier = (*BrightnessGate)(nil)
)
