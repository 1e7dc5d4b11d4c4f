// Package fetchcache provides a content-keyed store for upstream API
// responses. Each entry is keyed by a fingerprint of the full request —
// endpoint, parameters, and the requested gene set — so identical requests
// always resolve to the same entry and different gene sets never collide.
package fetchcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Store persists cached responses as files under a directory, one file per
// fingerprint. Writes are atomic (tmp + rename), so a key is either fully
// present or absent; concurrent writers of the same key are idempotent.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Key computes the cache fingerprint for a request. The fingerprint covers
// the endpoint, every parameter, and the sorted gene-identifier set. The
// gene set is part of the key on purpose: keying on endpoint and parameters
// alone lets responses for one chromosome's genes answer requests for
// another's.
func Key(endpoint string, params map[string]string, entrezIDs []int64) string {
	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('\n')

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
		b.WriteByte('\n')
	}

	ids := make([]int64, len(entrezIDs))
	copy(ids, entrezIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		b.WriteString(strconv.FormatInt(id, 10))
		b.WriteByte(',')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for key, or ok=false when absent.
func (s *Store) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	return data, true, nil
}

// Put stores a response under key. The write goes to a temp file first and
// is renamed into place, so readers never observe a partial entry.
func (s *Store) Put(key string, data []byte) error {
	dest := s.path(key)
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename cache entry: %w", err)
	}
	return nil
}

// Flush removes every entry in the store. Intended for use between batch
// runs when a forced refresh is requested.
func (s *Store) Flush() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("remove cache entry: %w", err)
		}
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
