// Package cache keeps process-lifetime snapshots of backend entities, one
// region per backend service, plus the IM channel anchor.
package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

const (
	regionPrefix = "region:"
	anchorKey    = "im_channel_id"
)

// Store is the shared backing store. Entries never expire and there is no
// janitor; regions are replaced wholesale on refresh.
type Store struct {
	items *gocache.Cache
}

func NewStore() *Store {
	return &Store{items: gocache.New(gocache.NoExpiration, 0)}
}

// Region is the snapshot of one service's entities, keyed by key(entity).
type Region[T any] struct {
	store *Store
	name  string
	key   func(T) string
}

func NewRegion[T any](store *Store, name string, key func(T) string) *Region[T] {
	return &Region[T]{store: store, name: regionPrefix + name, key: key}
}

// Refresh replaces the region's content with entities. Nothing from the
// previous snapshot survives.
func (r *Region[T]) Refresh(entities []T) {
	snapshot := make(map[string]T, len(entities))
	for _, e := range entities {
		snapshot[r.key(e)] = e
	}
	r.store.items.Set(r.name, snapshot, gocache.NoExpiration)
}

// Get looks key up in the current snapshot. A missing region is a miss.
func (r *Region[T]) Get(key string) (T, bool) {
	var zero T

	snapshot, ok := r.snapshot()
	if !ok {
		return zero, false
	}
	e, ok := snapshot[key]
	if !ok {
		return zero, false
	}
	return e, true
}

// Populated reports whether the region has been refreshed at least once.
func (r *Region[T]) Populated() bool {
	_, ok := r.snapshot()
	return ok
}

func (r *Region[T]) Len() int {
	snapshot, _ := r.snapshot()
	return len(snapshot)
}

func (r *Region[T]) snapshot() (map[string]T, bool) {
	v, ok := r.store.items.Get(r.name)
	if !ok {
		return nil, false
	}
	snapshot, ok := v.(map[string]T)
	return snapshot, ok
}
