// Package jsonstore is the default pkg/store backend: three JSON files
// under a configurable directory, grounded on the original implementation's
// helpers.py (DEFAULT_PATH, FILE_TYPES, load_files/save_files).
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ps4golib/pyps4go/pkg/store"
)

const (
	credsFileName    = ".ps4_creds.json"
	consolesFileName = ".ps4_info.json"
	gamesFileName    = ".ps4_games.json"
)

// DefaultDir returns "<home>/.pyps4-2ndscreen", the original's DEFAULT_PATH.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pyps4-2ndscreen"), nil
}

type credsFile struct {
	Credential string `json:"credentials"`
}

type gamesFile struct {
	Titles map[string]string `json:"titles"`
}

// Store implements store.CredentialStore, store.ConsoleRegistry and
// store.GameCache against three JSON files in dir. New creates dir; the
// files are written on first save, and a missing or empty file reads as
// holding no data.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New builds a Store rooted at dir, creating it if it does not exist.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonstore: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func writeJSON(path string, in interface{}) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveCredential implements store.CredentialStore.
func (s *Store) SaveCredential(_ context.Context, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path(credsFileName), credsFile{Credential: credential})
}

// LoadCredential implements store.CredentialStore.
func (s *Store) LoadCredential(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var f credsFile
	if err := readJSON(s.path(credsFileName), &f); err != nil {
		return "", false, err
	}
	return f.Credential, f.Credential != "", nil
}

// SaveConsole implements store.ConsoleRegistry, overwriting any existing
// record for the same host.
func (s *Store) SaveConsole(_ context.Context, rec store.ConsoleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.loadConsolesLocked()
	if err != nil {
		return err
	}
	found := false
	for i := range recs {
		if recs[i].Host == rec.Host {
			recs[i] = rec
			found = true
			break
		}
	}
	if !found {
		recs = append(recs, rec)
	}
	return writeJSON(s.path(consolesFileName), recs)
}

// LoadConsoles implements store.ConsoleRegistry.
func (s *Store) LoadConsoles(_ context.Context) ([]store.ConsoleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadConsolesLocked()
}

func (s *Store) loadConsolesLocked() ([]store.ConsoleRecord, error) {
	var recs []store.ConsoleRecord
	if err := readJSON(s.path(consolesFileName), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// DeleteConsole implements store.ConsoleRegistry.
func (s *Store) DeleteConsole(_ context.Context, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.loadConsolesLocked()
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, r := range recs {
		if r.Host != host {
			kept = append(kept, r)
		}
	}
	return writeJSON(s.path(consolesFileName), kept)
}

// SaveTitleName implements store.GameCache.
func (s *Store) SaveTitleName(_ context.Context, titleID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var f gamesFile
	if err := readJSON(s.path(gamesFileName), &f); err != nil {
		return err
	}
	if f.Titles == nil {
		f.Titles = make(map[string]string)
	}
	f.Titles[titleID] = name
	return writeJSON(s.path(gamesFileName), f)
}

// LookupTitleName implements store.GameCache.
func (s *Store) LookupTitleName(_ context.Context, titleID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var f gamesFile
	if err := readJSON(s.path(gamesFileName), &f); err != nil {
		return "", false, err
	}
	name, ok := f.Titles[titleID]
	return name, ok, nil
}
