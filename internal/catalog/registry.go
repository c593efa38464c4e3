package catalog

import (
	"sync"
	"tubarchive/internal/domain/consts"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry hands out one Catalog per channel, keeping the most recently used ones.
type Registry struct {
	mu       sync.Mutex
	lister   Lister
	catalogs *lru.Cache[string, *Catalog]
}

// NewRegistry returns a registry holding at most size catalogs (default if size <= 0).
func NewRegistry(l Lister, size int) (*Registry, error) {
	if size <= 0 {
		size = consts.DefaultCatalogCache
	}
	c, err := lru.New[string, *Catalog](size)
	if err != nil {
		return nil, err
	}
	return &Registry{lister: l, catalogs: c}, nil
}

// Catalog returns the catalog for channelID, creating it if needed.
//
// uploadsPlaylist is only used when a new catalog is created.
func (r *Registry) Catalog(channelID, uploadsPlaylist string) *Catalog {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.catalogs.Get(channelID); ok {
		return c
	}
	c := New(channelID, uploadsPlaylist, r.lister)
	r.catalogs.Add(channelID, c)
	return c
}

// Lister returns the upstream the registry's catalogs list from.
func (r *Registry) Lister() Lister {
	return r.lister
}

// Forget drops the catalog for channelID.
func (r *Registry) Forget(channelID string) {
	r.catalogs.Remove(channelID)
}

// Len returns the number of held catalogs.
func (r *Registry) Len() int {
	return r.catalogs.Len()
}
