package kiln

import (
	"slices"
	"strings"
	"sync"
)

// DefinitionStore is where a [Factory] reads definitions from. GetDefinition
// must return a [DefinitionSourceError] for missing or unreadable keys and a
// copy the caller may keep; DeleteDefinition of an absent key is not an
// error.
type DefinitionStore interface {
	GetDefinition(key string) (*ObjectDefinition, error)
	SaveDefinition(key string, def *ObjectDefinition) error
	DeleteDefinition(key string) error
}

// MemoryStore is a [DefinitionStore] backed by a map. It is safe for
// concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	defs map[string]*ObjectDefinition
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{defs: make(map[string]*ObjectDefinition)}
}

// GetDefinition returns a copy of the definition stored under key.
func (s *MemoryStore) GetDefinition(key string) (*ObjectDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.defs[key]
	if !ok {
		return nil, &DefinitionSourceError{Key: key, Err: ErrDefinitionNotFound}
	}
	return def.Clone(), nil
}

// SaveDefinition stores a copy of def under key.
func (s *MemoryStore) SaveDefinition(key string, def *ObjectDefinition) error {
	if strings.TrimSpace(key) == "" {
		return &ArgumentError{Arg: "key", Reason: "key is empty"}
	}
	if def == nil {
		return &ArgumentError{Arg: "definition", Reason: "definition is nil"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[key] = def.Clone()
	return nil
}

// DeleteDefinition removes key. Deleting an absent key does nothing.
func (s *MemoryStore) DeleteDefinition(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.defs, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
