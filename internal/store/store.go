package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/explore"
)

// ErrNotFound is returned for a hash, or hash prefix, the store lacks.
var ErrNotFound = errors.New("snapshot not found")

// Store manages a content-addressable collection of explored GATT tables.
type Store struct {
	baseDir       string
	topologiesDir string
	metadataDir   string
	indexPath     string

	now func() time.Time
}

// Index contains quick lookup information for all snapshots.
type Index struct {
	Snapshots map[string]IndexEntry `json:"snapshots"` // hash -> entry
	UpdatedAt time.Time             `json:"updated_at"`
}

// IndexEntry contains summary info for quick listing.
type IndexEntry struct {
	Hash            string    `json:"hash"`
	Address         string    `json:"address"`
	Name            string    `json:"name,omitempty"`
	Services        int       `json:"services"`
	Characteristics int       `json:"characteristics"`
	Walks           int       `json:"walks"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultPath returns the default store path, next to the config file.
func DefaultPath() string {
	return filepath.Join(filepath.Dir(config.DefaultPath()), "snapshots")
}

// Open opens or creates a store at the given path.
func Open(path string) (*Store, error) {
	s := &Store{
		baseDir:       path,
		topologiesDir: filepath.Join(path, "topologies"),
		metadataDir:   filepath.Join(path, "metadata"),
		indexPath:     filepath.Join(path, "index.json"),
		now:           time.Now,
	}

	if err := os.MkdirAll(s.topologiesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create topologies dir: %w", err)
	}
	if err := os.MkdirAll(s.metadataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create metadata dir: %w", err)
	}

	return s, nil
}

// Path returns the store's base directory.
func (s *Store) Path() string { return s.baseDir }

// Import adds a topology to the store. A layout already present (same
// hash) gets its latest values replaced and the source appended.
// Returns the hash and whether it was a new snapshot.
func (s *Store) Import(t *explore.Topology, source Source) (string, bool, error) {
	hash, err := ContentHash(t)
	if err != nil {
		return "", false, err
	}
	now := s.now()
	if source.Timestamp.IsZero() {
		source.Timestamp = now
	}

	topoPath := filepath.Join(s.topologiesDir, hashToFilename(hash)+".json")
	metaPath := filepath.Join(s.metadataDir, hashToFilename(hash)+".json")

	isNew := false
	meta, err := s.GetMetadata(hash)
	switch {
	case errors.Is(err, ErrNotFound):
		isNew = true
		meta = ExtractMetadata(t, hash, now)
		meta.Sources = []Source{source}
	case err != nil:
		return "", false, err
	default:
		meta.Sources = append(meta.Sources, source)
		meta.Name = t.Peripheral.Advertisement.LocalName
		meta.UpdatedAt = now
	}

	if err := writeJSON(topoPath, t); err != nil {
		return "", false, fmt.Errorf("failed to write topology: %w", err)
	}
	if err := writeJSON(metaPath, meta); err != nil {
		return "", false, fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := s.updateIndex(meta); err != nil {
		return "", false, fmt.Errorf("failed to update index: %w", err)
	}

	config.Log.WithField("hash", ShortHash(hash)).WithField("new", isNew).Debug("snapshot saved")
	return hash, isNew, nil
}

// Get retrieves the latest topology saved under hash.
func (s *Store) Get(hash string) (*explore.Topology, error) {
	data, err := os.ReadFile(filepath.Join(s.topologiesDir, hashToFilename(hash)+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", ShortHash(hash), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var t explore.Topology
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse topology: %w", err)
	}
	t.ResolveFormats()
	return &t, nil
}

// GetMetadata retrieves snapshot metadata by hash.
func (s *Store) GetMetadata(hash string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.metadataDir, hashToFilename(hash)+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", ShortHash(hash), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &meta, nil
}

// Resolve expands a hash prefix, with or without the sha256: scheme, to
// the one full hash it names.
func (s *Store) Resolve(prefix string) (string, error) {
	want := hashToFilename(strings.ToLower(strings.TrimSpace(prefix)))
	if want == "" {
		return "", errors.New("empty snapshot hash")
	}
	index, err := s.loadIndex()
	if err != nil {
		return "", err
	}
	var found []string
	for hash := range index.Snapshots {
		if strings.HasPrefix(hashToFilename(hash), want) {
			found = append(found, hash)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s: %w", prefix, ErrNotFound)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("snapshot hash %q is ambiguous: %d matches", prefix, len(found))
}

// List returns all snapshots in the store, most recently updated first.
func (s *Store) List() ([]IndexEntry, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	entries := make([]IndexEntry, 0, len(index.Snapshots))
	for _, entry := range index.Snapshots {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].Hash < entries[j].Hash
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})

	return entries, nil
}

// Count returns the number of snapshots in the store.
func (s *Store) Count() (int, error) {
	index, err := s.loadIndex()
	if err != nil {
		return 0, err
	}
	return len(index.Snapshots), nil
}

func (s *Store) loadIndex() (*Index, error) {
	data, err := os.ReadFile(s.indexPath)
	if errors.Is(err, os.ErrNotExist) {
		return &Index{Snapshots: make(map[string]IndexEntry)}, nil
	}
	if err != nil {
		return nil, err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	if index.Snapshots == nil {
		index.Snapshots = make(map[string]IndexEntry)
	}
	return &index, nil
}

func (s *Store) updateIndex(meta *Metadata) error {
	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	index.Snapshots[meta.ContentHash] = IndexEntry{
		Hash:            meta.ContentHash,
		Address:         meta.Address,
		Name:            meta.Name,
		Services:        meta.Services,
		Characteristics: meta.Characteristics,
		Walks:           len(meta.Sources),
		CreatedAt:       meta.CreatedAt,
		UpdatedAt:       meta.UpdatedAt,
	}
	index.UpdatedAt = s.now()

	return writeJSON(s.indexPath, index)
}

// writeJSON replaces path atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
