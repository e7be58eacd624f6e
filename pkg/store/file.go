package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/conceptmap/pkg/concept"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
)

// FileStore is a file-based map store for CLI usage.
// Each map is stored as <id>.json in a single directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/conceptmap/maps/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "conceptmap", "maps")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create map dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Dir returns the directory maps are stored in.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) mapPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Save writes rec to <id>.json, replacing any previous version.
func (s *FileStore) Save(ctx context.Context, rec Record) error {
	if err := apperr.ValidateMapID(rec.ID); err != nil {
		return err
	}
	rec.Map = concept.Normalize(rec.Map)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal map: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temp file first so readers never see a partial map.
	tmp, err := os.CreateTemp(s.baseDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write map file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close map file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.mapPath(rec.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename map file: %w", err)
	}
	return nil
}

// Get reads the map with the given id.
//
// Besides records written by Save, the file may hold a bare document
// ({"map": ..., "depth": n}) or a bare graph, as exported by other tools.
// Such files are adopted with the file name as id.
func (s *FileStore) Get(ctx context.Context, id string) (Record, error) {
	if err := apperr.ValidateMapID(id); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *FileStore) read(id string) (Record, error) {
	path := s.mapPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("read map file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse map %s: %w", id, err)
	}
	if rec.ID != "" {
		rec.Map = concept.Normalize(rec.Map)
		return rec, nil
	}

	doc, err := concept.DecodeDocument(data)
	if err != nil && !errors.Is(err, concept.ErrEmptyGraph) {
		return Record{}, fmt.Errorf("parse map %s: %w", id, err)
	}
	rec = Record{
		ID:       id,
		Name:     concept.Name(doc.Map.Topic),
		Class:    classFromID(id),
		Document: doc,
	}
	if info, err := os.Stat(path); err == nil {
		rec.CreatedAt = info.ModTime().UTC()
	}
	return rec, nil
}

// List returns every stored map, newest first. Files that cannot be parsed
// are skipped.
func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read map dir: %w", err)
	}

	recs := make([]Record, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if apperr.ValidateMapID(id) != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.read(id)
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	sortNewestFirst(recs)
	return recs, nil
}

// Delete removes the map with the given id.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := apperr.ValidateMapID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.mapPath(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete map file: %w", err)
	}
	return nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error { return nil }

// classFromID recovers the class of a "<class>-<millis>" id, falling back
// to the default class.
func classFromID(id string) string {
	i := strings.LastIndex(id, "-")
	if i <= 0 || strings.HasPrefix(id, "map-") {
		return concept.DefaultClass
	}
	for _, r := range id[i+1:] {
		if r < '0' || r > '9' {
			return concept.DefaultClass
		}
	}
	return id[:i]
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
