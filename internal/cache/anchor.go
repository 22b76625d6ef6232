package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// Anchor remembers the first direct-message channel seen by the process. It
// is the delivery target for out-of-band fault reports.
type Anchor struct {
	store *Store
}

func NewAnchor(store *Store) *Anchor {
	return &Anchor{store: store}
}

// SetIfUnset stores channel unless an anchor already exists. It reports
// whether this call set it.
func (a *Anchor) SetIfUnset(channel string) bool {
	if channel == "" {
		return false
	}
	return a.store.items.Add(anchorKey, channel, gocache.NoExpiration) == nil
}

func (a *Anchor) Channel() (string, bool) {
	v, ok := a.store.items.Get(anchorKey)
	if !ok {
		return "", false
	}
	channel, ok := v.(string)
	return channel, ok
}
