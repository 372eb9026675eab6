package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// memFile holds a stored object's data and metadata.
type memFile struct {
	data    []byte
	modTime time.Time
}

// Store is a concurrency-safe object map.
type Store struct {
	mu    sync.RWMutex
	files map[string]*memFile
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{files: make(map[string]*memFile)}
}

func (s *Store) get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

func (s *Store) has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[path]
	return ok
}

// create stores data only if path is free.
func (s *Store) create(path string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.files[path]; exists {
		return false
	}
	s.files[path] = &memFile{data: append([]byte(nil), data...), modTime: time.Now()}
	return true
}

func (s *Store) set(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = &memFile{data: append([]byte(nil), data...), modTime: time.Now()}
}

func (s *Store) remove(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	delete(s.files, path)
	return ok
}

// Paths returns the stored paths sorted.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Reset removes every object.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]*memFile)
}

// Snapshot returns a deep copy of the store's content.
func (s *Store) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]*memFile, len(s.files))
	for k, v := range s.files {
		cp := *v
		cp.data = append([]byte(nil), v.data...)
		snap[k] = &cp
	}
	return snap
}

// Restore replaces the content with a value returned by Snapshot.
func (s *Store) Restore(snap any) error {
	m, ok := snap.(map[string]*memFile)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string]*memFile, got %T", snap)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]*memFile, len(m))
	for k, v := range m {
		cp := *v
		cp.data = append([]byte(nil), v.data...)
		s.files[k] = &cp
	}
	return nil
}

// Stores hands out one Store per namespace.
type Stores struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewStores returns an empty set of stores.
func NewStores() *Stores {
	return &Stores{stores: make(map[string]*Store)}
}

// Get returns the store for namespace, creating it on first use.
func (s *Stores) Get(namespace string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[namespace]
	if !ok {
		st = NewStore()
		s.stores[namespace] = st
	}
	return st
}
