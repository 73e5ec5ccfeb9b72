package draft

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store implementation for tests and embedded
// use.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	flags  map[string]bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]*Draft),
		flags:  make(map[string]bool),
	}
}

func memoryStoreCompileCheck() Store {
	return &MemoryStore{}
}

// Get returns the draft stored under key, or nil when absent.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drafts[key]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, nil
}

// Set stores a draft under key.
func (s *MemoryStore) Set(ctx context.Context, key string, draft *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *draft
	copied.Key = key
	s.drafts[key] = &copied
	return nil
}

// Remove deletes the draft and its use-for-save flag.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	delete(s.flags, key+useForSaveSuffix)
	return nil
}

// MarkUseForSave flags the draft under key for the next save.
func (s *MemoryStore) MarkUseForSave(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key+useForSaveSuffix] = true
	return nil
}

// ConsumeForSave clears the flag and returns the draft if flagged. The flag
// is get-and-clear: a second call without a new mark falls through to the
// persisted element.
func (s *MemoryStore) ConsumeForSave(ctx context.Context, key string) (*Draft, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flagKey := key + useForSaveSuffix
	if !s.flags[flagKey] {
		return nil, false, nil
	}
	delete(s.flags, flagKey)
	d, ok := s.drafts[key]
	if !ok {
		// Orphaned flag; the draft is gone, report no draft.
		return nil, false, nil
	}
	copied := *d
	return &copied, true, nil
}
