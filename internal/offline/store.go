package offline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMiss is returned when an asset is not in the cache.
var ErrMiss = errors.New("asset not cached")

// Entry is a cached asset body with its content type.
type Entry struct {
	Body        []byte
	ContentType string
}

type entryMeta struct {
	ContentType string `json:"contentType"`
}

// Store is a disk-backed asset cache. Each generation lives in its own
// directory; asset keys are hashed so arbitrary URL paths become safe
// file names. Bodies and their .meta sidecars are written in a staging
// directory first and promoted with a single rename, so a crashed
// install never leaves a half-filled generation behind.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return &Store{root: root}, nil
}

func assetFileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Get loads a cached asset. A missing or unreadable entry is a miss.
func (s *Store) Get(generation, key string) (Entry, error) {
	base := filepath.Join(s.root, generation, assetFileName(key))

	body, err := os.ReadFile(base)
	if err != nil {
		return Entry{}, ErrMiss
	}
	metaRaw, err := os.ReadFile(base + ".meta")
	if err != nil {
		return Entry{}, ErrMiss
	}
	var meta entryMeta
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return Entry{}, ErrMiss
	}
	return Entry{Body: body, ContentType: meta.ContentType}, nil
}

// Put writes a single asset into an already installed generation.
func (s *Store) Put(generation, key string, e Entry) error {
	return writeEntry(filepath.Join(s.root, generation), key, e)
}

// Has reports whether a generation directory exists.
func (s *Store) Has(generation string) bool {
	info, err := os.Stat(filepath.Join(s.root, generation))
	return err == nil && info.IsDir()
}

// Generations lists all installed generation tags.
func (s *Store) Generations() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read cache root: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), stagingPrefix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// Remove deletes a generation and all its assets.
func (s *Store) Remove(generation string) error {
	if err := os.RemoveAll(filepath.Join(s.root, generation)); err != nil {
		return fmt.Errorf("remove generation %s: %w", generation, err)
	}
	return nil
}

const stagingPrefix = ".staging-"

// Staging collects a full generation before it becomes visible.
type Staging struct {
	store      *Store
	dir        string
	generation string
}

// Stage opens a staging area for the given generation.
func (s *Store) Stage(generation string) (*Staging, error) {
	dir, err := os.MkdirTemp(s.root, stagingPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Staging{store: s, dir: dir, generation: generation}, nil
}

// Put writes an asset into the staging area.
func (st *Staging) Put(key string, e Entry) error {
	return writeEntry(st.dir, key, e)
}

// Commit atomically promotes the staged assets to the live generation,
// replacing any previous install of the same generation.
func (st *Staging) Commit() error {
	target := filepath.Join(st.store.root, st.generation)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("clear old generation: %w", err)
	}
	if err := os.Rename(st.dir, target); err != nil {
		return fmt.Errorf("promote generation %s: %w", st.generation, err)
	}
	return nil
}

// Discard throws the staged assets away.
func (st *Staging) Discard() error {
	return os.RemoveAll(st.dir)
}

func writeEntry(dir, key string, e Entry) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create generation dir: %w", err)
	}
	base := filepath.Join(dir, assetFileName(key))

	meta, err := json.Marshal(entryMeta{ContentType: e.ContentType})
	if err != nil {
		return fmt.Errorf("marshal asset meta: %w", err)
	}
	if err := os.WriteFile(base+".meta", meta, 0644); err != nil {
		return fmt.Errorf("write asset meta %s: %w", key, err)
	}
	if err := os.WriteFile(base, e.Body, 0644); err != nil {
		return fmt.Errorf("write asset %s: %w", key, err)
	}
	return nil
}
