package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// In-memory repositories back the service when no Postgres DSN is configured
// and are used by the test suites. They return pgx.ErrNoRows for misses so
// error mapping stays uniform across both backends.

type memoryIssueRepository struct {
	mu     sync.RWMutex
	issues map[string]*domain.Issue
	seq    map[string]int64
	next   int64
}

// NewMemoryIssueRepository returns an in-memory IssueRepository.
func NewMemoryIssueRepository() IssueRepository {
	return &memoryIssueRepository{
		issues: make(map[string]*domain.Issue),
		seq:    make(map[string]int64),
	}
}

func (r *memoryIssueRepository) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	issue.ID = uuid.NewString()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	stored := *issue
	r.issues[issue.ID] = &stored
	r.next++
	r.seq[issue.ID] = r.next
	return nil
}

func (r *memoryIssueRepository) Update(_ context.Context, id string, patch IssuePatch, updatedBy string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	if patch.Title != nil {
		stored.Title = *patch.Title
	}
	if patch.Type != nil {
		stored.Type = *patch.Type
	}
	if patch.Description != nil {
		stored.Description = *patch.Description
	}
	if patch.Impact != nil {
		stored.Impact = *patch.Impact
	}
	if patch.Status != nil {
		stored.Status = *patch.Status
	}
	if patch.SetExpectedFixDate {
		stored.ExpectedFixDate = patch.ExpectedFixDate
	}
	stored.UpdatedBy = &updatedBy
	stored.UpdatedAt = time.Now()

	copied := *stored
	return &copied, nil
}

func (r *memoryIssueRepository) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *memoryIssueRepository) List(_ context.Context, filter IssueFilter) ([]domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Issue, 0, len(r.issues))
	for _, stored := range r.issues {
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && stored.Type != *filter.Type {
			continue
		}
		if filter.Search != nil && *filter.Search != "" {
			if !strings.Contains(strings.ToLower(stored.Title), strings.ToLower(*filter.Search)) {
				continue
			}
		}
		result = append(result, *stored)
	}

	// Newest first; the insertion sequence breaks creation-time ties.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return r.seq[result[i].ID] > r.seq[result[j].ID]
	})
	return result, nil
}

func (r *memoryIssueRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.issues[id]; !ok {
		return false, nil
	}
	delete(r.issues, id)
	delete(r.seq, id)
	return true, nil
}

type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

// NewMemoryUserRepository returns an in-memory UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[user.Email] = &stored
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}
