package port

import (
	"context"

	"wsi-recon/internal/domain/entity"
)

// TileDetector прогоняет одну обученную модель по изображению тайла и
// возвращает сырые детекции в локальных координатах тайла.
type TileDetector interface {
	// DetectTile анализирует одно закодированное изображение тайла.
	DetectTile(ctx context.Context, tile []byte) ([]entity.Detection, error)

	// Name идентифицирует модель-источник.
	Name() string
}

// TissueClassifier решает, есть ли на тайле ткань вообще, чтобы пустые
// фоновые тайлы можно было пропустить до инференса.
type TissueClassifier interface {
	HasTissue(ctx context.Context, tile []byte) (bool, error)
}

// TileReader достаёт пиксели одного тайла слайда. Чтение полнослайдовых
// контейнеров живёт вне этого модуля; это шов, в который оно встаёт.
type TileReader interface {
	ReadTile(ctx context.Context, slide entity.SlideInfo, tile entity.Tile) ([]byte, error)
}

// Tiler владеет стратегией нарезки на тайлы и переводом из локальных
// координат тайла в глобальные координаты слайда.
type Tiler interface {
	Tiles(width, height int) []entity.Tile
	ToGlobal(tile entity.Tile, det entity.Detection) entity.Detection
}
