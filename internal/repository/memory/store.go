// Package memory keeps submissions and published entries in process memory.
// It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sync"

	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
)

// Store holds both collections behind one lock so ExecTx can apply a batch
// of writes atomically.
type Store struct {
	mu          sync.RWMutex
	submissions map[string]models.Submission
	entries     map[string]models.PublishedEntry
	order       []string // entry ids in insertion order
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		submissions: make(map[string]models.Submission),
		entries:     make(map[string]models.PublishedEntry),
	}
}

type stagedKey struct{}

// staged collects writes made inside ExecTx until fn returns
type staged struct {
	submissions map[string]models.Submission
	created     map[string]bool // submission ids inserted in this unit of work
	entries     map[string]models.PublishedEntry
	order       []string
}

func stagedFrom(ctx context.Context) *staged {
	s, _ := ctx.Value(stagedKey{}).(*staged)
	return s
}

// TransactionManager runs fn against staged copies and commits them if fn succeeds
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager over store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if stagedFrom(ctx) != nil {
		// Nested calls join the outer unit of work
		return fn(ctx)
	}

	st := &staged{
		submissions: make(map[string]models.Submission),
		created:     make(map[string]bool),
		entries:     make(map[string]models.PublishedEntry),
	}
	if err := fn(context.WithValue(ctx, stagedKey{}, st)); err != nil {
		return err
	}

	s := tm.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check the constraints against state committed while fn ran
	for id := range st.submissions {
		if err := s.checkSubmissionWrite(id, st.created[id]); err != nil {
			return err
		}
	}
	for _, id := range st.order {
		if err := s.checkEntryInsert(st.entries[id]); err != nil {
			return err
		}
	}

	for id, sub := range st.submissions {
		s.submissions[id] = sub
	}
	for _, id := range st.order {
		s.entries[id] = st.entries[id]
		s.order = append(s.order, id)
	}
	return nil
}
