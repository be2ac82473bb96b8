package repository

import (
	"context"
	"sync"
	"time"

	"github.com/docgate/docgate/internal/document"
	"github.com/docgate/docgate/internal/document/authz"
)

// MemoryRepo is a mutex-guarded in-memory repository used when no MongoDB is
// configured, and by unit tests. The duplicate-grant check in InsertGrant runs
// under the write lock, which stands in for the storage-level uniqueness
// constraint: two concurrent inserts of the same triple serialize and the
// second one observes the first.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document)}
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = "doc_" + time.Now().Format("20060102T150405.000000000")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	m.store[doc.ID] = doc
	return doc.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[id]; ok {
		return d, nil
	}
	return nil, document.ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.Document, 0, len(m.store))
	for _, d := range m.store {
		out = append(out, d)
	}
	return out, nil
}

func (m *MemoryRepo) ListAccessible(ctx context.Context, username string, p document.Permission) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.store {
		if authz.CanList(username, d, p) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return document.ErrNotFound
	}
	// grants are embedded, so removing the document removes them with it
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) InsertGrant(ctx context.Context, id string, g document.Grant) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	if d.HasGrant(g.Username, g.Permission) {
		return nil, ErrGrantExists
	}
	d.Grants = append(d.Grants, g)
	return d, nil
}

func (m *MemoryRepo) FilterExisting(ctx context.Context, ids []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []string{}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := m.store[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *MemoryRepo) FilterAccessible(ctx context.Context, username string, p document.Permission, ids []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []string{}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		d, ok := m.store[id]
		if !ok {
			continue
		}
		if authz.CanList(username, d, p) {
			out = append(out, id)
		}
	}
	return out, nil
}
