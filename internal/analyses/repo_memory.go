package analyses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRecord struct {
	analysis Analysis
	seq      uint64
}

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]memoryRecord
	seq  uint64

	now   func() time.Time
	newID func() string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]memoryRecord),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, in NewAnalysis) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for {
		if _, taken := r.byID[id]; !taken {
			break
		}
		id = r.newID()
	}

	r.seq++
	analysis := Analysis{
		ID:             id,
		ResumeText:     in.ResumeText,
		JobDescription: cloneStringPtr(in.JobDescription),
		OverallScore:   clampInt(in.OverallScore),
		Feedback:       in.Feedback.normalized(),
		CreatedAt:      r.now(),
	}
	r.byID[id] = memoryRecord{analysis: analysis, seq: r.seq}
	return analysis.Clone(), nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return rec.analysis.Clone(), nil
}

// ListRecent returns analyses newest first; records created at the same instant keep insertion order reversed.
func (r *MemoryRepo) ListRecent(ctx context.Context, limit int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = ClampRecentLimit(limit)

	r.mu.RLock()
	records := make([]memoryRecord, 0, len(r.byID))
	for _, rec := range r.byID {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.analysis.CreatedAt.Equal(b.analysis.CreatedAt) {
			return a.analysis.CreatedAt.After(b.analysis.CreatedAt)
		}
		return a.seq > b.seq
	})

	if len(records) > limit {
		records = records[:limit]
	}
	out := make([]Analysis, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.analysis.Clone())
	}
	return out, nil
}
