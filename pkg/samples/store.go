// Package samples collects labelled sketches into an on-disk training set,
// always asking for the label with the fewest samples next.
package samples

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/menta2k/sketchpad/internal/logger"
	"github.com/menta2k/sketchpad/internal/utils"
	"github.com/menta2k/sketchpad/pkg/types"
)

// Store keeps one directory of JPEG samples per label
type Store struct {
	root   string
	labels []types.Class
}

// OpenStore prepares root for the given labels. Label directories are
// created as needed, a file squatting on a label's name is replaced by a
// directory, and entries that do not belong to any label are removed.
func OpenStore(root string, labels []types.Class) (*Store, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labels to collect", types.ErrPreconditionViolation)
	}
	if err := utils.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("failed to create data set directory: %w", err)
	}

	known := make(map[string]bool, len(labels))
	for _, label := range labels {
		known[string(label)] = true
		dir := filepath.Join(root, string(label))
		if utils.FileExists(dir) {
			if err := os.Remove(dir); err != nil {
				return nil, fmt.Errorf("failed to replace file %s: %w", dir, err)
			}
		}
		if err := utils.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create label directory: %w", err)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list data set directory: %w", err)
	}
	for _, e := range entries {
		if known[e.Name()] {
			continue
		}
		logger.L().Info("removing stale data set entry", "name", e.Name())
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
	}

	return &Store{root: root, labels: append([]types.Class(nil), labels...)}, nil
}

// Root returns the data set directory
func (s *Store) Root() string {
	return s.root
}

// Labels returns the labels in priority order for ties
func (s *Store) Labels() []types.Class {
	return append([]types.Class(nil), s.labels...)
}

// Save writes a JPEG sample for label and returns its path
func (s *Store) Save(label types.Class, jpeg []byte) (string, error) {
	if !s.has(label) {
		return "", fmt.Errorf("%w: unknown label %q", types.ErrPreconditionViolation, label)
	}
	path := filepath.Join(s.root, string(label), uuid.NewString()+".jpg")
	if err := os.WriteFile(path, jpeg, 0644); err != nil {
		return "", fmt.Errorf("the file could not be saved on disk: %w", err)
	}
	return path, nil
}

// Counts returns the number of saved samples per label
func (s *Store) Counts() map[types.Class]int {
	counts := make(map[types.Class]int, len(s.labels))
	for _, label := range s.labels {
		entries, err := os.ReadDir(filepath.Join(s.root, string(label)))
		if err != nil {
			counts[label] = 0
			continue
		}
		counts[label] = len(entries)
	}
	return counts
}

func (s *Store) has(label types.Class) bool {
	for _, l := range s.labels {
		if l == label {
			return true
		}
	}
	return false
}
