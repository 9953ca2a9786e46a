package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devq-ai/ptolemies-sub002/internal/query"
)

func newTestStore(timeout time.Duration) *MemoryStore {
	return NewMemoryStore(timeout, 3, zerolog.Nop())
}

func TestGetOrCreateInitializesContext(t *testing.T) {
	s := newTestStore(time.Minute)

	ctx := s.GetOrCreate("s1", "u1")
	assert.Equal(t, "s1", ctx.SessionID)
	assert.Equal(t, "u1", ctx.UserID)
	assert.NotNil(t, ctx.PreviousQueries)
	assert.NotNil(t, ctx.History)
	assert.NotNil(t, ctx.Preferences)
	assert.False(t, ctx.LastActive.IsZero())
	assert.Equal(t, 1, s.Len())
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	s := newTestStore(time.Minute)

	s.GetOrCreate("s1", "u1")
	s.Update("s1", func(c *Context) {
		c.Preferences["prefer_examples"] = "true"
	})

	ctx := s.GetOrCreate("s1", "")
	assert.Equal(t, "u1", ctx.UserID)
	assert.Equal(t, "true", ctx.Preferences["prefer_examples"])
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotReturnsClone(t *testing.T) {
	s := newTestStore(time.Minute)
	s.GetOrCreate("s1", "")

	snap, ok := s.Snapshot("s1")
	require.True(t, ok)

	// Mutating the snapshot must not leak into the store.
	snap.Preferences["k"] = "v"
	snap.PreviousQueries = append(snap.PreviousQueries, "q")

	fresh, ok := s.Snapshot("s1")
	require.True(t, ok)
	assert.Empty(t, fresh.Preferences)
	assert.Empty(t, fresh.PreviousQueries)
}

func TestSnapshotMissing(t *testing.T) {
	s := newTestStore(time.Minute)
	_, ok := s.Snapshot("nope")
	assert.False(t, ok)
}

func TestRecordBoundsHistory(t *testing.T) {
	s := newTestStore(time.Minute)
	s.GetOrCreate("s1", "")

	for i := 0; i < 5; i++ {
		q := string(rune('a' + i))
		s.Update("s1", func(c *Context) {
			c.Record(q, query.IntentSearch, s.MaxHistory(), time.Now().UTC())
		})
	}

	snap, ok := s.Snapshot("s1")
	require.True(t, ok)
	assert.Equal(t, []string{"c", "d", "e"}, snap.PreviousQueries)
	require.Len(t, snap.History, 3)
	assert.Equal(t, "c", snap.History[0].Query)
	assert.Equal(t, "e", snap.History[2].Query)
}

func TestDelete(t *testing.T) {
	s := newTestStore(time.Minute)
	s.GetOrCreate("s1", "")

	assert.True(t, s.Delete("s1"))
	assert.False(t, s.Delete("s1"))
	assert.Equal(t, 0, s.Len())
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	s := newTestStore(time.Minute)
	s.GetOrCreate("stale", "")
	s.GetOrCreate("fresh", "")

	s.Update("stale", func(c *Context) {
		c.LastActive = time.Now().UTC().Add(-2 * time.Minute)
	})

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, ok := s.Snapshot("stale")
	assert.False(t, ok)
	_, ok = s.Snapshot("fresh")
	assert.True(t, ok)
}

func TestSweepNothingToEvict(t *testing.T) {
	s := newTestStore(time.Minute)
	s.GetOrCreate("s1", "")
	assert.Zero(t, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestSweepWaitsForInFlightUpdate(t *testing.T) {
	s := newTestStore(time.Minute)
	s.GetOrCreate("s1", "")
	s.Update("s1", func(c *Context) {
		c.LastActive = time.Now().UTC().Add(-2 * time.Minute)
	})

	entered := make(chan struct{})
	release := make(chan struct{})
	updated := make(chan struct{})
	go func() {
		s.Update("s1", func(c *Context) {
			close(entered)
			<-release
			c.Record("follow-up", query.IntentSearch, s.MaxHistory(), time.Now().UTC())
		})
		close(updated)
	}()
	<-entered

	swept := make(chan int, 1)
	go func() { swept <- s.Sweep() }()

	// The sweep must not evict the session while the update holds it.
	select {
	case <-swept:
		t.Fatal("sweep ran while an update was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-updated
	assert.Zero(t, <-swept)

	snap, ok := s.Snapshot("s1")
	require.True(t, ok)
	assert.Equal(t, []string{"follow-up"}, snap.PreviousQueries)
}

func TestGetOrCreateRefreshesActivity(t *testing.T) {
	s := newTestStore(time.Minute)
	s.GetOrCreate("s1", "")
	s.Update("s1", func(c *Context) {
		c.LastActive = time.Now().UTC().Add(-2 * time.Minute)
	})

	// Touching the session through GetOrCreate resets the idle clock.
	s.GetOrCreate("s1", "")
	assert.Zero(t, s.Sweep())
}
