package storage

import (
	"context"
	"fmt"
	"sync"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
)

// MemoryResultStore — хранилище прогонов в памяти, для тестов и запусков,
// которым хватает экспорта в JSON.
type MemoryResultStore struct {
	mu   sync.RWMutex
	runs map[string]*entity.RunResult
}

// NewMemoryResultStore создаёт пустое хранилище в памяти.
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{
		runs: make(map[string]*entity.RunResult),
	}
}

// SaveRun сохраняет прогон под его идентификатором.
func (s *MemoryResultStore) SaveRun(ctx context.Context, run *entity.RunResult) error {
	_ = ctx
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()
	return nil
}

// GetRun возвращает прогон с заданным идентификатором.
func (s *MemoryResultStore) GetRun(ctx context.Context, id string) (*entity.RunResult, error) {
	_ = ctx
	s.mu.RLock()
	run, exists := s.runs[id]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("run %q not found", id)
	}
	return run, nil
}

var _ port.ResultStore = (*MemoryResultStore)(nil)
