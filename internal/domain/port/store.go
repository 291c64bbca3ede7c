package port

import (
	"context"

	"wsi-recon/internal/domain/entity"
)

// ResultStore сохраняет результаты согласования.
type ResultStore interface {
	SaveRun(ctx context.Context, run *entity.RunResult) error
	GetRun(ctx context.Context, id string) (*entity.RunResult, error)
}

// Notifier сообщает о завершённом прогоне во внешний канал.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, run *entity.RunResult) error
}
