package settings

import "sync"

// Repository is the host-owned settings store. The engine only ever reads a
// snapshot from it; writes belong to the host's configuration dialog.
type Repository interface {
	Snapshot() Settings
	Save(raw map[string]any) Settings
}

// MemoryRepository is an in-process Repository used by the CLI and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	current Settings
}

// NewMemoryRepository returns a repository seeded with the normalized form
// of raw.
func NewMemoryRepository(raw map[string]any) *MemoryRepository {
	return &MemoryRepository{current: Normalize(raw)}
}

// Snapshot returns the current settings by value.
func (r *MemoryRepository) Snapshot() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Save normalizes raw, stores it and returns the stored value.
func (r *MemoryRepository) Save(raw map[string]any) Settings {
	s := Normalize(raw)
	r.mu.Lock()
	r.current = s
	r.mu.Unlock()
	return s
}
