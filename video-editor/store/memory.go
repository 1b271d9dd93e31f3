package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps jobs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*RenderJob
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*RenderJob)}
}

func (s *MemoryStore) Create(_ context.Context, job *RenderJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*RenderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryStore) Update(_ context.Context, job *RenderJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	job.UpdatedAt = time.Now()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*RenderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobList := make([]*RenderJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		copied := *job
		jobList = append(jobList, &copied)
	}
	sort.Slice(jobList, func(i, j int) bool {
		return jobList[i].CreatedAt.After(jobList[j].CreatedAt)
	})
	if limit > 0 && len(jobList) > limit {
		jobList = jobList[:limit]
	}
	return jobList, nil
}
