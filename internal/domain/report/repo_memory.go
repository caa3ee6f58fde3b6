package report

import (
	"context"
	"sort"
	"sync"
)

// reportRepoMemory keeps saved reports in process memory. It serves as
// the only backend when no durable store is configured and receives
// writes when the durable store fails.
type reportRepoMemory struct {
	mu      sync.RWMutex
	reports []*SavedReport
}

func NewReportRepoMemory() ReportRepository {
	return &reportRepoMemory{}
}

func (m *reportRepoMemory) Create(ctx context.Context, r *SavedReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *reportRepoMemory) List(ctx context.Context) ([]*SavedReport, error) {
	m.mu.RLock()
	out := make([]*SavedReport, len(m.reports))
	copy(out, m.reports)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

func (m *reportRepoMemory) Get(ctx context.Context, id string) (*SavedReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *reportRepoMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reports {
		if r.ID == id {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *reportRepoMemory) Ping(ctx context.Context) error { return nil }

func (m *reportRepoMemory) Name() string { return "memory" }
