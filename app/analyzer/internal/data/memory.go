package data

import (
	"context"
	"sync"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/domain"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/repo"
)

// memoryResultRepo 进程内有界存储，超出上限时淘汰最早写入的记录
type memoryResultRepo struct {
	mu    sync.RWMutex
	limit int
	byID  map[string]*domain.AnalysisRecord
	order []string // 写入顺序，最早的在前
}

func NewMemoryResultRepo(limit int) repo.ResultRepo {
	if limit <= 0 {
		limit = defaultMemoryLimit
	}
	return &memoryResultRepo{
		limit: limit,
		byID:  make(map[string]*domain.AnalysisRecord),
	}
}

func (r *memoryResultRepo) Save(_ context.Context, rec *domain.AnalysisRecord) error {
	cp := *rec
	cp.Payload = append([]byte(nil), rec.Payload...)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rec.ID]; ok {
		r.remove(rec.ID)
	}
	r.byID[rec.ID] = &cp
	r.order = append(r.order, rec.ID)

	for len(r.order) > r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.byID, oldest)
	}
	return nil
}

func (r *memoryResultRepo) remove(id string) {
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func (r *memoryResultRepo) Get(_ context.Context, id string) (*domain.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrResultNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memoryResultRepo) List(_ context.Context, limit int) ([]*domain.AnalysisRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.order)
	out := make([]*domain.AnalysisRecord, 0, min(limit, total))
	for i := total - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.byID[r.order[i]]
		out = append(out, &cp)
	}
	return out, total, nil
}
