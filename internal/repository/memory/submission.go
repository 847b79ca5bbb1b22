package memory

import (
	"context"
	"fmt"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// SubmissionRepository implements repositories.SubmissionRepository on a Store
type SubmissionRepository struct {
	store *Store
}

// NewSubmissionRepository creates a submission repository over store
func NewSubmissionRepository(store *Store) repositories.SubmissionRepository {
	return &SubmissionRepository{store: store}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	s := r.store
	if st := stagedFrom(ctx); st != nil {
		s.mu.RLock()
		_, exists := s.submissions[sub.ID]
		s.mu.RUnlock()
		if _, staged := st.submissions[sub.ID]; exists || staged {
			return duplicateSubmission(sub.ID)
		}
		st.submissions[sub.ID] = *sub
		st.created[sub.ID] = true
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.submissions[sub.ID]; exists {
		return duplicateSubmission(sub.ID)
	}
	s.submissions[sub.ID] = *sub
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	if st := stagedFrom(ctx); st != nil {
		if sub, ok := st.submissions[id]; ok {
			return &sub, nil
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sub, ok := r.store.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	return &sub, nil
}

func (r *SubmissionRepository) SaveTransition(ctx context.Context, sub *models.Submission) error {
	s := r.store
	if st := stagedFrom(ctx); st != nil {
		current, ok := st.submissions[sub.ID]
		if !ok {
			s.mu.RLock()
			current, ok = s.submissions[sub.ID]
			s.mu.RUnlock()
		}
		if !ok {
			return fmt.Errorf("submission %s: %w", sub.ID, domain.ErrNotFound)
		}
		if current.Status != models.StatusPending {
			return alreadyTerminal(sub.ID, current.Status)
		}
		st.submissions[sub.ID] = *sub
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSubmissionWrite(sub.ID, false); err != nil {
		return err
	}
	s.submissions[sub.ID] = *sub
	return nil
}

// checkSubmissionWrite reports whether the row id may be written.
// An insert needs a free id; an update needs a stored pending row. Caller holds mu.
func (s *Store) checkSubmissionWrite(id string, insert bool) error {
	current, ok := s.submissions[id]
	if insert {
		if ok {
			return duplicateSubmission(id)
		}
		return nil
	}
	if !ok {
		return fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	if current.Status != models.StatusPending {
		return alreadyTerminal(id, current.Status)
	}
	return nil
}

func duplicateSubmission(id string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("submission %s already exists", id),
		ResourceType: "submission",
		ResourceID:   id,
	}
}

func alreadyTerminal(id string, status models.SubmissionStatus) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("submission %s is already %s", id, status),
		ResourceType: "submission",
		ResourceID:   id,
	}
}
