package container

import (
	app "wsi-recon/internal/application"
	"wsi-recon/internal/domain/port"
	"wsi-recon/internal/infrastructure/tiling"
	"wsi-recon/internal/recon"
)

type Container struct {
	ReconcileService *app.ReconcileService
	SlideService     *app.SlideService
}

type Deps struct {
	Store         port.ResultStore
	Notifier      port.Notifier
	Detectors     []port.TileDetector
	Tissue        port.TissueClassifier
	Reader        port.TileReader
	Options       recon.Options
	MinConfidence float64
	TileSize      int
	OverlapRatio  float64
}

func New(deps Deps) *Container {
	reconcileService := app.NewReconcileService(recon.New(deps.Options), deps.Store, deps.Notifier, deps.MinConfidence)
	slideService := app.NewSlideService(deps.Detectors, deps.Tissue, tiling.New(deps.TileSize, deps.OverlapRatio), deps.Reader, reconcileService)

	return &Container{
		ReconcileService: reconcileService,
		SlideService:     slideService,
	}
}
