package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entity struct {
	Email string
	Name  string
}

func byEmail(e entity) string { return e.Email }

func TestRegionRefreshAndGet(t *testing.T) {
	region := NewRegion(NewStore(), "identity", byEmail)
	e1 := entity{Email: "a@example.com", Name: "A"}
	e2 := entity{Email: "b@example.com", Name: "B"}

	region.Refresh([]entity{e1, e2})

	for _, e := range []entity{e1, e2} {
		got, ok := region.Get(e.Email)
		require.True(t, ok)
		assert.Equal(t, e, got)
	}
	assert.Equal(t, 2, region.Len())
}

func TestRegionRefreshReplacesSnapshot(t *testing.T) {
	region := NewRegion(NewStore(), "identity", byEmail)
	e1 := entity{Email: "a@example.com"}
	e3 := entity{Email: "c@example.com"}

	region.Refresh([]entity{e1})
	region.Refresh([]entity{e3})

	_, ok := region.Get(e1.Email)
	assert.False(t, ok)
	got, ok := region.Get(e3.Email)
	require.True(t, ok)
	assert.Equal(t, e3, got)
}

func TestRegionMissingRegionIsMiss(t *testing.T) {
	region := NewRegion(NewStore(), "identity", byEmail)

	_, ok := region.Get("a@example.com")
	assert.False(t, ok)
	assert.False(t, region.Populated())
	assert.Equal(t, 0, region.Len())

	region.Refresh(nil)
	assert.True(t, region.Populated())
}

func TestRegionsAreIndependent(t *testing.T) {
	store := NewStore()
	left := NewRegion(store, "left", byEmail)
	right := NewRegion(store, "right", byEmail)

	left.Refresh([]entity{{Email: "a@example.com"}})

	_, ok := right.Get("a@example.com")
	assert.False(t, ok)
	assert.False(t, right.Populated())
}

func TestAnchorFirstChannelWins(t *testing.T) {
	anchor := NewAnchor(NewStore())

	_, ok := anchor.Channel()
	require.False(t, ok)

	assert.False(t, anchor.SetIfUnset(""))
	assert.True(t, anchor.SetIfUnset("D001"))
	assert.False(t, anchor.SetIfUnset("D002"))

	channel, ok := anchor.Channel()
	require.True(t, ok)
	assert.Equal(t, "D001", channel)
}

func TestAnchorConcurrentSetIfUnset(t *testing.T) {
	anchor := NewAnchor(NewStore())

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for _, ch := range []string{"D1", "D2", "D3", "D4", "D5", "D6", "D7", "D8"} {
		wg.Add(1)
		go func(ch string) {
			defer wg.Done()
			if anchor.SetIfUnset(ch) {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}(ch)
	}
	wg.Wait()

	assert.Equal(t, 1, won)
}
