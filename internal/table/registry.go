package table

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Registry tracks the live tables of one process. Lookups take a read
// lock so tables can be resolved concurrently; table lifecycle takes the
// write lock.
type Registry struct {
	logger *log.Logger

	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		logger: logger.WithPrefix("registry"),
		tables: make(map[string]*Table),
	}
}

// Create registers a new table under id.
func (r *Registry) Create(id string, cfg Config, opts ...Option) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[id]; exists {
		return nil, fmt.Errorf("table %s already exists", id)
	}
	t := New(id, cfg, r.logger, opts...)
	r.tables[id] = t
	r.logger.Info("table created", "table", id, "mode", cfg.Mode)
	return t, nil
}

// Get resolves a table by id.
func (r *Registry) Get(id string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[id]
	return t, ok
}

// Remove closes a table and drops it from the registry.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	t, ok := r.tables[id]
	delete(r.tables, id)
	r.mu.Unlock()

	if ok {
		t.Close()
		r.logger.Info("table removed", "table", id)
	}
	return ok
}

// List returns the registered table ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloseAll closes every table. The registry stays usable afterwards.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	tables := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.tables = make(map[string]*Table)
	r.mu.Unlock()

	for _, t := range tables {
		t.Close()
	}
}
