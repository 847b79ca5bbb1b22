package memory

import (
	"context"
	"fmt"
	"sort"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// PublishedRepository implements repositories.PublishedRepository on a Store
type PublishedRepository struct {
	store *Store
}

// NewPublishedRepository creates a published entry repository over store
func NewPublishedRepository(store *Store) repositories.PublishedRepository {
	return &PublishedRepository{store: store}
}

func (r *PublishedRepository) Create(ctx context.Context, entry *models.PublishedEntry) error {
	s := r.store
	if st := stagedFrom(ctx); st != nil {
		s.mu.RLock()
		err := s.checkEntryInsert(*entry)
		s.mu.RUnlock()
		if err != nil {
			return err
		}
		for _, id := range st.order {
			if err := entryConflict(st.entries[id], *entry); err != nil {
				return err
			}
		}
		st.entries[entry.ID] = *entry
		st.order = append(st.order, entry.ID)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEntryInsert(*entry); err != nil {
		return err
	}
	s.entries[entry.ID] = *entry
	s.order = append(s.order, entry.ID)
	return nil
}

// checkEntryInsert enforces unique id, submission id and public URL. Caller holds mu.
func (s *Store) checkEntryInsert(entry models.PublishedEntry) error {
	for _, existing := range s.entries {
		if err := entryConflict(existing, entry); err != nil {
			return err
		}
	}
	return nil
}

func entryConflict(existing, entry models.PublishedEntry) error {
	if existing.ID != entry.ID && existing.SubmissionID != entry.SubmissionID && existing.PublicURL != entry.PublicURL {
		return nil
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("an entry already exists at %s", entry.PublicURL),
		ResourceType: "published_entry",
		ResourceID:   entry.SubmissionID,
	}
}

func (r *PublishedRepository) GetByID(ctx context.Context, id string) (*models.PublishedEntry, error) {
	if st := stagedFrom(ctx); st != nil {
		for _, entry := range st.entries {
			if entry.ID == id || entry.SubmissionID == id {
				return &entry, nil
			}
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if entry, ok := r.store.entries[id]; ok {
		return &entry, nil
	}
	for _, entry := range r.store.entries {
		if entry.SubmissionID == id {
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("published entry %s: %w", id, domain.ErrNotFound)
}

func (r *PublishedRepository) List(ctx context.Context, opts models.ListOptions) ([]models.PublishedSummary, error) {
	r.store.mu.RLock()
	entries := make([]models.PublishedEntry, 0, len(r.store.order))
	for _, id := range r.store.order {
		entry := r.store.entries[id]
		if opts.Category != "" && entry.Category != opts.Category {
			continue
		}
		entries = append(entries, entry)
	}
	r.store.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(entries) {
			entries = nil
		} else {
			entries = entries[opts.Offset:]
		}
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	summaries := make([]models.PublishedSummary, 0, len(entries))
	for i := range entries {
		summaries = append(summaries, entries[i].Summary())
	}
	return summaries, nil
}

func (r *PublishedRepository) Contents(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	contents := make([]string, 0, len(r.store.order))
	for _, id := range r.store.order {
		contents = append(contents, r.store.entries[id].Content)
	}
	return contents, nil
}
