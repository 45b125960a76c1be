package cloud

import (
	"sync"
)

// Registry hands out one Storage per user over a shared ObjectStore. Each
// user's documents live in their own folder, named after the configured
// folder name and the user id.
type Registry struct {
	store ObjectStore
	opts  Options

	mu       sync.Mutex
	storages map[string]*Storage
}

// NewRegistry creates a Registry. opts.FolderName is the prefix of every
// user folder.
func NewRegistry(store ObjectStore, opts Options) *Registry {
	if opts.FolderName == "" {
		opts.FolderName = DefaultFolderName
	}
	return &Registry{
		store:    store,
		opts:     opts,
		storages: make(map[string]*Storage),
	}
}

// For returns the Storage of userID, creating it on first use.
func (r *Registry) For(userID string) *Storage {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.storages[userID]; ok {
		return s
	}
	opts := r.opts
	opts.FolderName = r.opts.FolderName + "-" + userID
	s := NewStorage(r.store, opts)
	r.storages[userID] = s
	return s
}

// Store returns the underlying ObjectStore.
func (r *Registry) Store() ObjectStore { return r.store }

// ResetCache clears the folder caches of every Storage.
func (r *Registry) ResetCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.storages {
		s.ResetCache()
	}
}
