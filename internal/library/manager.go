// Package library owns the authoritative in-memory book collection and its
// persistence, plus the filter and stats logic that reads it.
package library

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/justyntemme/shelfmate/internal/models"
	"github.com/justyntemme/shelfmate/internal/store"
)

var (
	// ErrDuplicate reports an id collision on a single add.
	ErrDuplicate = errors.New("library: a book with this id already exists")
	// ErrNotFound reports an update against an unknown id.
	ErrNotFound = errors.New("library: no book with this id")
)

// Manager is the single owner of the library state. All mutations go
// through it, each one snapshots the whole list to the store, and reads
// hand out copies so callers can never alias the internal slice.
type Manager struct {
	mu     sync.RWMutex
	books  []models.Book
	store  *store.Store
	logger *zap.Logger
}

// NewManager loads the persisted library snapshot, starting empty when the
// snapshot is absent or unreadable.
func NewManager(st *store.Store, logger *zap.Logger) *Manager {
	m := &Manager{store: st, logger: logger}

	err := st.Load(store.KeyLibrary, &m.books)
	switch {
	case err == nil:
		logger.Info("library loaded", zap.Int("books", len(m.books)))
	case errors.Is(err, store.ErrNotFound):
		logger.Info("no library snapshot found, starting empty")
	default:
		logger.Warn("library snapshot unreadable, starting empty", zap.Error(err))
		m.books = nil
	}

	// Repair any invariant drift in old snapshots.
	for i := range m.books {
		m.books[i].Normalize()
	}
	return m
}

// AddOne appends a book, failing with ErrDuplicate when its id is already
// present. Persists on success.
func (m *Manager) AddOne(book models.Book) error {
	book.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOfLocked(book.ID) >= 0 {
		return ErrDuplicate
	}
	m.books = append(m.books, book)
	m.persistLocked()
	return nil
}

// AddMany appends every candidate whose id is not already taken, in input
// order, and persists once for the whole batch. Dedup is id-based only;
// the import preview's title warnings are advisory (see PreviewDuplicates).
func (m *Manager) AddMany(books []models.Book) (added, skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(m.books))
	for _, b := range m.books {
		seen[b.ID] = struct{}{}
	}

	for _, book := range books {
		if _, dup := seen[book.ID]; dup {
			skipped++
			continue
		}
		book.Normalize()
		m.books = append(m.books, book)
		seen[book.ID] = struct{}{}
		added++
	}

	if added > 0 {
		m.persistLocked()
	}
	return added, skipped
}

// Update replaces the book with the same id in place, preserving its
// position. Persists on success. Applying the same update twice leaves the
// library in the same state as applying it once.
func (m *Manager) Update(book models.Book) error {
	book.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOfLocked(book.ID)
	if i < 0 {
		return ErrNotFound
	}
	m.books[i] = book
	m.persistLocked()
	return nil
}

// Get returns the book with the given id.
func (m *Manager) Get(id string) (models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOfLocked(id); i >= 0 {
		return m.books[i], nil
	}
	return models.Book{}, ErrNotFound
}

// All returns a snapshot of the library in insertion order.
func (m *Manager) All() []models.Book {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Book, len(m.books))
	copy(out, m.books)
	return out
}

// PreviewDuplicates returns the titles of candidates that case-insensitively
// match a title already in the library. This intentionally differs from the
// commit path, which dedups by id only: same book under a different id is
// warned about here but still imported.
func (m *Manager) PreviewDuplicates(candidates []models.Book) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	existing := make(map[string]struct{}, len(m.books))
	for _, b := range m.books {
		existing[strings.ToLower(b.Title)] = struct{}{}
	}

	var warnings []string
	for _, c := range candidates {
		if _, hit := existing[strings.ToLower(c.Title)]; hit {
			warnings = append(warnings, c.Title)
		}
	}
	return warnings
}

func (m *Manager) indexOfLocked(id string) int {
	for i, b := range m.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked snapshots the whole library. Write failures are logged and
// swallowed: persistence is best-effort and must not abort the user action.
func (m *Manager) persistLocked() {
	if err := m.store.Save(store.KeyLibrary, m.books); err != nil {
		m.logger.Error("failed to persist library snapshot", zap.Error(err))
	}
}
