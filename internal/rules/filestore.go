package rules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore persists the rule set as a YAML file on disk. Saves go through a
// temp file and rename so a crash never leaves a torn blob behind.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore rooted at the given path.
//
// Precondition: path must be non-empty.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the rule set file.
//
// Postcondition: Returns an empty rule set when the file does not exist.
func (s *FileStore) Load(_ context.Context) (*RuleSet, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRuleSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rule set %s: %w", s.path, err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decoding rule set %s: %w", s.path, err)
	}
	if rs.Groups == nil {
		rs.Groups = make(map[string]*Group)
	}
	return &rs, nil
}

// Save encodes rs and atomically replaces the rule set file.
//
// Precondition: rs must be non-nil.
func (s *FileStore) Save(_ context.Context, rs *RuleSet) error {
	raw, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("encoding rule set: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".rules-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp rule set file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing rule set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing rule set file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing rule set %s: %w", s.path, err)
	}
	return nil
}
