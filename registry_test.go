package backoffice_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	backoffice "github.com/proveeduria/backoffice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreate(t *testing.T) {
	registry := backoffice.NewRegistry()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	session := registry.Create("user-1", backoffice.RoleComprador, now)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, backoffice.RoleComprador, session.Role)
	assert.Equal(t, now, session.CreatedAt)
	assert.Equal(t, now, session.LastActivityAt)

	_, err := uuid.Parse(session.ID)
	assert.NoError(t, err, "session id should be a uuid")

	got, ok := registry.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, session, got)
}

func TestRegistryCreateAllowsMultipleSessionsPerUser(t *testing.T) {
	registry := backoffice.NewRegistry()
	now := time.Now()

	first := registry.Create("user-1", backoffice.RoleAdmin, now)
	second := registry.Create("user-1", backoffice.RoleAdmin, now)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, registry.Len())
}

func TestRegistryGetUnknown(t *testing.T) {
	registry := backoffice.NewRegistry()

	_, ok := registry.Get("nope")
	assert.False(t, ok)

	_, ok = registry.Get("")
	assert.False(t, ok)
}

func TestRegistryTouch(t *testing.T) {
	registry := backoffice.NewRegistry()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	session := registry.Create("user-1", backoffice.RoleComprador, start)

	t.Run("advances the activity marker", func(t *testing.T) {
		later := start.Add(5 * time.Minute)
		registry.Touch(session.ID, later)

		got, ok := registry.Get(session.ID)
		require.True(t, ok)
		assert.Equal(t, later, got.LastActivityAt)
		assert.Equal(t, start, got.CreatedAt, "created at never moves")
	})

	t.Run("older timestamp loses", func(t *testing.T) {
		before, _ := registry.Get(session.ID)

		registry.Touch(session.ID, start.Add(-time.Hour))

		got, ok := registry.Get(session.ID)
		require.True(t, ok)
		assert.Equal(t, before.LastActivityAt, got.LastActivityAt)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		registry.Touch("missing", time.Now())
	})
}

func TestRegistryTouchConcurrentMaxWins(t *testing.T) {
	registry := backoffice.NewRegistry()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	session := registry.Create("user-1", backoffice.RoleComprador, start)

	const workers = 32
	max := start.Add(workers * time.Second)

	var wg sync.WaitGroup
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			registry.Touch(session.ID, start.Add(time.Duration(offset)*time.Second))
		}(i)
	}
	wg.Wait()

	got, ok := registry.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, max, got.LastActivityAt, "latest instant wins regardless of arrival order")
}

func TestRegistryConcurrentCreateUniqueIDs(t *testing.T) {
	registry := backoffice.NewRegistry()
	now := time.Now()

	const workers = 64
	ids := make(chan string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- registry.Create("user-1", backoffice.RoleComprador, now).ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
	assert.Equal(t, workers, registry.Len())
}

func TestRegistryRemove(t *testing.T) {
	registry := backoffice.NewRegistry()
	session := registry.Create("user-1", backoffice.RoleComprador, time.Now())

	registry.Remove(session.ID)
	_, ok := registry.Get(session.ID)
	assert.False(t, ok)

	// idempotent
	registry.Remove(session.ID)
	registry.Remove("never-existed")
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryPurgeIdle(t *testing.T) {
	registry := backoffice.NewRegistry()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	idleTimeout := 30 * time.Minute

	stale := registry.Create("user-1", backoffice.RoleComprador, start)
	fresh := registry.Create("user-2", backoffice.RoleAdmin, start)
	registry.Touch(fresh.ID, start.Add(45*time.Minute))

	purged := registry.PurgeIdle(start.Add(65*time.Minute), idleTimeout)

	assert.Equal(t, 1, purged)
	_, ok := registry.Get(stale.ID)
	assert.False(t, ok)
	_, ok = registry.Get(fresh.ID)
	assert.True(t, ok)
}

func TestIsExpiredBoundary(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	idleTimeout := 30 * time.Minute

	session := backoffice.Session{LastActivityAt: start}

	assert.False(t, backoffice.IsExpired(session, start.Add(idleTimeout), idleTimeout),
		"exactly the threshold is still live")
	assert.True(t, backoffice.IsExpired(session, start.Add(idleTimeout+time.Nanosecond), idleTimeout))
	assert.False(t, backoffice.IsExpired(session, start, idleTimeout))
}
