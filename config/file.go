package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ARTM2000/kiln"
)

// FileStore is a [Store] persisted to one local file. Every save and delete
// rewrites the file.
type FileStore struct {
	*Store

	path   string
	format Format
	logger *zap.Logger

	// flushMu orders file writes; Store.mu only guards the tree.
	flushMu sync.Mutex
}

// OpenFile loads the tree at path. A missing file starts an empty tree that
// is created on the first save.
func OpenFile(path string, encoding Encoding, format Format, opts ...StoreOption) (*FileStore, error) {
	root, err := loadTree(path, format)
	if err != nil {
		return nil, err
	}
	st := NewStore(root, encoding, opts...)
	return &FileStore{
		Store:  st,
		path:   path,
		format: format,
		logger: st.logger.With(zap.String("path", path)),
	}, nil
}

func loadTree(path string, format Format) (*TreeNode, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewNode(rootName), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	root, err := Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return root, nil
}

// Path returns the file the store is persisted to.
func (s *FileStore) Path() string { return s.path }
// Format returns the file serialization.
func (s *FileStore) Format() Format { return s.format }

// SaveDefinition saves def under key and rewrites the file.
func (s *FileStore) SaveDefinition(key string, def *kiln.ObjectDefinition) error {
	if err := s.Store.SaveDefinition(key, def); err != nil {
		return err
	}
	return s.Flush()
}

// DeleteDefinition removes key and rewrites the file.
func (s *FileStore) DeleteDefinition(key string) error {
	if err := s.Store.DeleteDefinition(key); err != nil {
		return err
	}
	return s.Flush()
}

// Flush writes the tree to the file through a temporary file and rename.
func (s *FileStore) Flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	data, err := s.Marshal(s.format)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Reload replaces the in-memory tree with the file's current content. On
// error the old tree is kept.
func (s *FileStore) Reload() error {
	root, err := loadTree(s.path, s.format)
	if err != nil {
		return err
	}
	s.replaceRoot(root)
	s.logger.Info("definitions reloaded")
	return nil
}

// Watch reloads the store whenever the file changes and then calls
// onChange, until ctx is done. Reload failures are logged and the previous
// tree stays in place.
func (s *FileStore) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching %s: %w", s.path, err)
	}
	defer w.Close()

	// The directory is watched so that rename-based saves are seen.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watching %s: %w", s.path, err)
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("reload failed", zap.Error(err))
				continue
			}
			if onChange != nil {
				onChange()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}
