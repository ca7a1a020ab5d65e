package config

import (
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ARTM2000/kiln"
)

// Store is a [kiln.DefinitionStore] over a configuration tree in one
// [Encoding]. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	root     Node
	encoding Encoding
	logger   *zap.Logger
}

var _ kiln.DefinitionStore = (*Store)(nil)

// StoreOption configures a [Store] or [FileStore].
type StoreOption func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a Store over root. A nil root starts an empty tree.
func NewStore(root Node, encoding Encoding, opts ...StoreOption) *Store {
	if root == nil {
		root = NewNode(rootName)
	}
	s := &Store{root: root, encoding: encoding, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Encoding returns the layout definitions are stored in.
func (s *Store) Encoding() Encoding { return s.encoding }

// GetDefinition parses the definition stored under key. Every failure is a
// [*kiln.DefinitionSourceError].
func (s *Store) GetDefinition(key string) (*kiln.ObjectDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.encoding == Flat {
		return readFlat(s.root, key)
	}
	return readNested(s.root, key)
}

// SaveDefinition replaces whatever is stored under key with def.
func (s *Store) SaveDefinition(key string, def *kiln.ObjectDefinition) error {
	if strings.TrimSpace(key) == "" {
		return &kiln.ArgumentError{Arg: "key", Reason: "key is empty"}
	}
	if def == nil {
		return &kiln.ArgumentError{Arg: "definition", Reason: "definition is nil"}
	}
	if s.encoding == Flat && strings.Contains(key, ".") {
		return &kiln.ArgumentError{Arg: "key", Reason: "flat keys cannot contain '.'"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encoding == Flat {
		deleteFlat(s.root, key)
		writeFlat(s.root, key, def)
	} else {
		deleteNested(s.root, key)
		writeNested(s.root, key, def)
	}

	s.logger.Debug("definition saved",
		zap.String("key", key),
		zap.String("type", def.TypeName()),
		zap.Stringer("encoding", s.encoding),
	)
	return nil
}

// DeleteDefinition removes every node belonging to key. Deleting an absent
// key does nothing.
func (s *Store) DeleteDefinition(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encoding == Flat {
		deleteFlat(s.root, key)
	} else {
		deleteNested(s.root, key)
	}
	s.logger.Debug("definition deleted", zap.String("key", key))
	return nil
}

// Keys returns the stored keys in sorted order without duplicates.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	if s.encoding == Flat {
		keys = keysFlat(s.root)
	} else {
		keys = keysNested(s.root)
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// Marshal serializes the current tree.
func (s *Store) Marshal(format Format) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Marshal(s.root, format)
}

// Reencode copies every readable definition into a new tree using enc.
// Keys that fail to parse are returned as errors alongside the result.
func (s *Store) Reencode(enc Encoding) (*Store, map[string]error) {
	out := NewStore(nil, enc, WithLogger(s.logger))
	failed := make(map[string]error)
	for _, key := range s.Keys() {
		def, err := s.GetDefinition(key)
		if err == nil {
			err = out.SaveDefinition(key, def)
		}
		if err != nil {
			failed[key] = err
		}
	}
	return out, failed
}

func (s *Store) replaceRoot(root Node) {
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
}
