// Package memory provides in-memory, transaction-aware implementations of
// every repository. Transactions are serialized and roll back on error, so
// services behave as they do against PostgreSQL row locks.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

type state struct {
	applications  map[uuid.UUID]domain.Application
	documents     map[uuid.UUID]domain.Artifact
	payments      map[uuid.UUID]domain.Artifact
	ledger        map[uuid.UUID]domain.LedgerEntry
	legacy        map[uuid.UUID]domain.LedgerEntry
	rejections    map[uuid.UUID]domain.PermanentRejectionRecord
	orientation   map[uuid.UUID]domain.OrientationRecord
	categories    map[uuid.UUID]domain.CategoryPolicy
	notifications []domain.Notification
	activity      []domain.ActivityLog
}

func newState() state {
	return state{
		applications: make(map[uuid.UUID]domain.Application),
		documents:    make(map[uuid.UUID]domain.Artifact),
		payments:     make(map[uuid.UUID]domain.Artifact),
		ledger:       make(map[uuid.UUID]domain.LedgerEntry),
		legacy:       make(map[uuid.UUID]domain.LedgerEntry),
		rejections:   make(map[uuid.UUID]domain.PermanentRejectionRecord),
		orientation:  make(map[uuid.UUID]domain.OrientationRecord),
		categories:   make(map[uuid.UUID]domain.CategoryPolicy),
	}
}

// clone copies the maps; stored values are replaced wholesale on write and
// never mutated in place.
func (s state) clone() state {
	return state{
		applications:  maps.Clone(s.applications),
		documents:     maps.Clone(s.documents),
		payments:      maps.Clone(s.payments),
		ledger:        maps.Clone(s.ledger),
		legacy:        maps.Clone(s.legacy),
		rejections:    maps.Clone(s.rejections),
		orientation:   maps.Clone(s.orientation),
		categories:    maps.Clone(s.categories),
		notifications: slices.Clone(s.notifications),
		activity:      slices.Clone(s.activity),
	}
}

// Store holds the shared state behind every in-memory repository.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) read(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.st)
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

type txCtxKey struct{}

// TxManager runs callbacks as serialized transactions over a Store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager for the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTx executes fn exclusively. State changes made by fn are discarded if
// it returns an error or panics. Nested calls join the outer transaction.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txCtxKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	m.store.mu.Lock()
	snapshot := m.store.st.clone()
	m.store.mu.Unlock()

	rollback := func() {
		m.store.mu.Lock()
		m.store.st = snapshot
		m.store.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, struct{}{})); err != nil {
		rollback()
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Inspection helpers for tests and fixtures
// ---------------------------------------------------------------------------

// PutCategory stores a category policy.
func (s *Store) PutCategory(p domain.CategoryPolicy) {
	_ = s.write(func(st *state) error {
		st.categories[p.JobCategoryID] = p
		return nil
	})
}

// Notifications returns every stored notification in insertion order.
func (s *Store) Notifications() []domain.Notification {
	var out []domain.Notification
	s.read(func(st *state) { out = slices.Clone(st.notifications) })
	return out
}

// Activity returns every stored activity record in insertion order.
func (s *Store) Activity() []domain.ActivityLog {
	var out []domain.ActivityLog
	s.read(func(st *state) { out = slices.Clone(st.activity) })
	return out
}

// LegacyEntries returns the legacy ledger rows of an application.
func (s *Store) LegacyEntries(applicationID uuid.UUID) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	s.read(func(st *state) {
		for _, e := range st.legacy {
			if e.ApplicationID == applicationID {
				out = append(out, e)
			}
		}
	})
	sortEntries(out)
	return out
}

// LedgerEntries returns the primary ledger rows of an application.
func (s *Store) LedgerEntries(applicationID uuid.UUID) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	s.read(func(st *state) {
		for _, e := range st.ledger {
			if e.ApplicationID == applicationID {
				out = append(out, e)
			}
		}
	})
	sortEntries(out)
	return out
}

func sortEntries(entries []domain.LedgerEntry) {
	slices.SortFunc(entries, func(a, b domain.LedgerEntry) int {
		if a.ArtifactTypeID != b.ArtifactTypeID {
			if a.ArtifactTypeID < b.ArtifactTypeID {
				return -1
			}
			return 1
		}
		return a.AttemptNumber - b.AttemptNumber
	})
}
