package app

import (
	"context"
	"errors"
	"log"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
)

// SlideService обходит слайд тайл за тайлом, собирает сырые детекции от
// всех настроенных детекторов и передаёт общий набор сервису согласования.
type SlideService struct {
	detectors []port.TileDetector
	tissue    port.TissueClassifier
	tiler     port.Tiler
	reader    port.TileReader
	reconcile *ReconcileService
}

// NewSlideService создаёт сервис. Классификатор ткани может быть nil,
// тогда обрабатывается каждый тайл.
func NewSlideService(detectors []port.TileDetector, tissue port.TissueClassifier, tiler port.Tiler, reader port.TileReader, reconcile *ReconcileService) *SlideService {
	return &SlideService{
		detectors: detectors,
		tissue:    tissue,
		tiler:     tiler,
		reader:    reader,
		reconcile: reconcile,
	}
}

// ProcessSlide детектирует по каждому тайлу с тканью и согласует результат.
// Сбои на отдельных тайлах логируются и пропускаются; прогон продолжается.
func (s *SlideService) ProcessSlide(ctx context.Context, slide entity.SlideInfo) (*ReconcileOutput, error) {
	if len(s.detectors) == 0 {
		return nil, errors.New("no detectors are configured")
	}
	if s.tiler == nil || s.reader == nil {
		return nil, errors.New("tiler and tile reader are not configured")
	}
	if s.reconcile == nil {
		return nil, errors.New("reconcile service is not configured")
	}

	var dets []entity.Detection
	for _, tile := range s.tiler.Tiles(slide.Width, slide.Height) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.reader.ReadTile(ctx, slide, tile)
		if err != nil {
			log.Printf("tile %d (%d,%d): read failed: %v", tile.ID, tile.X, tile.Y, err)
			continue
		}

		if s.tissue != nil {
			hasTissue, err := s.tissue.HasTissue(ctx, data)
			if err != nil {
				log.Printf("tile %d (%d,%d): tissue check failed: %v", tile.ID, tile.X, tile.Y, err)
				continue
			}
			if !hasTissue {
				continue
			}
		}

		for _, detector := range s.detectors {
			found, err := detector.DetectTile(ctx, data)
			if err != nil {
				log.Printf("tile %d (%d,%d): detector %s failed: %v", tile.ID, tile.X, tile.Y, detector.Name(), err)
				continue
			}
			for _, d := range found {
				dets = append(dets, s.tiler.ToGlobal(tile, d))
			}
		}
	}

	return s.reconcile.Reconcile(ctx, slide, dets)
}
