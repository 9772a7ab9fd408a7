// Package status persists the per-run availability snapshot
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/williamzujkowski/domainchecker/pkg/domain"
)

// Store reads and writes the domain status snapshot that lets a run
// detect newly available domains relative to the previous run.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the snapshot from the previous run. A missing or
// corrupt file is logged and treated as an empty snapshot, never as a
// failure.
func (s *Store) Load() domain.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("file", s.path).Msg("Error reading status file")
		}
		return domain.Snapshot{}
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Error().Err(err).Str("file", s.path).Msg("Status file corrupt, starting fresh")
		return domain.Snapshot{}
	}
	return snapshot
}

// Save overwrites the persisted snapshot. The data is written to a
// temp file and renamed into place so a concurrent reader never sees a
// half-written snapshot.
func (s *Store) Save(snapshot domain.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create status directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".status-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
