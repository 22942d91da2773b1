package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the document in a JSON file, loading and saving it on
// every call. A missing file yields the defaults document.
type FileStore struct {
	path     string
	defaults func() map[string]any
}

// NewFileStore creates a store backed by the JSON file at path. defaults
// produces the initial document; nil means an empty object.
func NewFileStore(path string, defaults func() map[string]any) *FileStore {
	if defaults == nil {
		defaults = func() map[string]any { return map[string]any{} }
	}
	return &FileStore{path: path, defaults: defaults}
}

func (s *FileStore) Get(key string) (any, bool, error) {
	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := getNested(doc, key)
	return v, ok, nil
}

func (s *FileStore) Set(key string, value any) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	setNested(doc, key, value)
	return s.save(doc)
}

func (s *FileStore) List() (map[string]any, error) {
	return s.load()
}

func (s *FileStore) Reset() error {
	return s.save(s.defaults())
}

func (s *FileStore) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile failed: %w", err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("json.Unmarshal failed: %w", err)
	}
	return doc, nil
}

func (s *FileStore) save(doc map[string]any) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("os.MkdirAll failed: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent failed: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("os.WriteFile failed: %w", err)
	}
	return nil
}
