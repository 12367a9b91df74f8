package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/movementpass/public-api/internal/domain"
	"github.com/movementpass/public-api/internal/pagination"
)

// InMemory backs both repositories with maps behind one lock, so multi-record
// writes are all-or-nothing. Used when no Postgres DSN is configured and in tests.
type InMemory struct {
	mu         sync.RWMutex
	passes     map[string]domain.Pass
	applicants map[string]domain.Applicant
}

var (
	_ PassRepository      = (*InMemory)(nil)
	_ ApplicantRepository = (*InMemory)(nil)
)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		passes:     make(map[string]domain.Pass),
		applicants: make(map[string]domain.Applicant),
	}
}

func (s *InMemory) Create(ctx context.Context, pass *domain.Pass) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.passes[pass.ID]; exists {
		return "", fmt.Errorf("insert pass %s: %w", pass.ID, ErrConflict)
	}
	applicant, ok := s.applicants[pass.ApplicantID]
	if !ok {
		return "", ErrApplicantNotFound
	}

	applicant.AppliedCount++
	s.applicants[applicant.ID] = applicant
	s.passes[pass.ID] = *pass
	return pass.ID, nil
}

func (s *InMemory) CreateBatch(ctx context.Context, passes []domain.Pass) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(passes))
	for i := range passes {
		id := passes[i].ID
		if _, exists := s.passes[id]; exists {
			return fmt.Errorf("copy passes %s: %w", id, ErrConflict)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("copy passes %s: %w", id, ErrConflict)
		}
		seen[id] = struct{}{}
	}

	for i := range passes {
		s.passes[passes[i].ID] = passes[i]
		if applicant, ok := s.applicants[passes[i].ApplicantID]; ok {
			applicant.AppliedCount++
			s.applicants[applicant.ID] = applicant
		}
	}
	return nil
}

func (s *InMemory) GetOwned(ctx context.Context, id, callerID string) (*domain.Pass, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	pass, ok := s.passes[id]
	if !ok || pass.ApplicantID != callerID {
		return nil, nil
	}
	return &pass, nil
}

func (s *InMemory) QueryOwned(ctx context.Context, callerID string, cursor *pagination.Cursor, pageSize int) ([]domain.Pass, *pagination.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	ks, resume := cursor.Keyset()

	s.mu.RLock()
	owned := make([]domain.Pass, 0)
	for _, pass := range s.passes {
		if pass.ApplicantID != callerID {
			continue
		}
		if resume && !ks.Includes(pass) {
			continue
		}
		owned = append(owned, pass)
	}
	s.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].EndAt.Equal(owned[j].EndAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].EndAt.After(owned[j].EndAt)
	})
	if len(owned) > pageSize+1 {
		owned = owned[:pageSize+1]
	}

	page, next := cutPage(owned, pageSize)
	return page, next, nil
}

func (s *InMemory) Register(ctx context.Context, applicant *domain.Applicant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.applicants[applicant.ID]; exists {
		return ErrConflict
	}
	stored := *applicant
	stored.AppliedCount, stored.ApprovedCount, stored.RejectedCount = 0, 0, 0
	s.applicants[applicant.ID] = stored
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id string) (*domain.Applicant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	applicant, ok := s.applicants[id]
	if !ok {
		return nil, nil
	}
	return &applicant, nil
}
