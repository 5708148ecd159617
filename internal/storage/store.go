package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"domain-check/internal/models"
)

// Store persists the full domain record set as a pretty-printed JSON array
// in a single file. Every read loads the whole snapshot and every write
// replaces it. A mutex serializes file access so concurrent mutations queue
// up instead of racing read-modify-write.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the current record set. A missing file is an empty set, as is
// a file whose top level is not an array.
func (s *Store) Load() ([]models.DomainRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]models.DomainRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.DomainRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read domain store: %w", err)
	}

	var records []models.DomainRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse domain store: %w", err)
	}
	if records == nil {
		records = []models.DomainRecord{}
	}
	return records, nil
}

// Save replaces the persisted record set in full.
func (s *Store) Save(records []models.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records)
}

func (s *Store) save(records []models.DomainRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode domain store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write domain store: %w", err)
	}
	return nil
}

// Update applies fn to the current record set and persists its result while
// holding the store lock, so read-modify-write cycles from concurrent
// requests cannot interleave. fn returning an error abandons the update.
func (s *Store) Update(fn func(records []models.DomainRecord) ([]models.DomainRecord, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	updated, err := fn(records)
	if err != nil {
		return err
	}

	return s.save(updated)
}
