package app

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
	"wsi-recon/internal/recon"
)

// ReconcileService прогоняет движок согласования по сырым детекциям и
// сохраняет итог.
type ReconcileService struct {
	reconciler    *recon.Reconciler
	store         port.ResultStore
	notifier      port.Notifier
	minConfidence float64
}

// ReconcileOutput связывает сохранённый прогон с отчётом движка о качестве.
type ReconcileOutput struct {
	Run    *entity.RunResult
	Report recon.Report
}

// NewReconcileService создаёт сервис. Notifier может быть nil.
func NewReconcileService(reconciler *recon.Reconciler, store port.ResultStore, notifier port.Notifier, minConfidence float64) *ReconcileService {
	return &ReconcileService{
		reconciler:    reconciler,
		store:         store,
		notifier:      notifier,
		minConfidence: minConfidence,
	}
}

// Reconcile отбрасывает детекции с низкой уверенностью, сливает остальные
// и сохраняет прогон.
func (s *ReconcileService) Reconcile(ctx context.Context, slide entity.SlideInfo, dets []entity.Detection) (*ReconcileOutput, error) {
	if s.reconciler == nil {
		return nil, errors.New("reconciler is not configured")
	}
	if s.store == nil {
		return nil, errors.New("result store is not configured")
	}

	kept := make([]entity.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence >= s.minConfidence {
			kept = append(kept, d)
		}
	}

	regions, report, err := s.reconciler.Reconcile(kept)
	if err != nil {
		return nil, err
	}

	run := &entity.RunResult{
		ID:      uuid.NewString(),
		Slide:   slide,
		Regions: regions,
		Stats:   entity.ComputeStatistics(regions),
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		// Уведомление — best effort: прогон уже сохранён.
		if err := s.notifier.NotifyRunCompleted(ctx, run); err != nil {
			log.Printf("failed to notify about run %s: %v", run.ID, err)
		}
	}

	return &ReconcileOutput{Run: run, Report: report}, nil
}
