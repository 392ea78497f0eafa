package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_TTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clock.Now)

	c.Set("k", "v")
	clock.Advance(30 * time.Second)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	clock.Advance(31 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_SetOverwrites(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())

	c.Delete("a")
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_CleanExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute).WithClock(clock.Now)
	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(2 * time.Minute)
	c.Set("c", 3)

	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
}

func TestManager_SweepAndRun(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Second).WithClock(clock.Now)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	assert.Equal(t, 0, m.Sweep())

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, m.Sweep())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 10*time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
