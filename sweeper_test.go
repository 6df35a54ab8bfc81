package backoffice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSweeperPurgesIdleSessions(t *testing.T) {
	registry := NewRegistry()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	stale := registry.Create("user-1", RoleComprador, start)
	fresh := registry.Create("user-2", RoleAdmin, start)
	registry.Touch(fresh.ID, start.Add(50*time.Minute))

	sweeper := NewSweeper(registry, 30*time.Minute, time.Millisecond)
	sweeper.clock = func() time.Time { return start.Add(time.Hour) }

	sweeper.Start()
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		_, ok := registry.Get(stale.ID)
		return !ok
	}, time.Second, 5*time.Millisecond, "stale session should be swept")

	_, ok := registry.Get(fresh.ID)
	assert.True(t, ok, "fresh session survives the sweep")
}

func TestSweeperDefaultsIntervalToIdleTimeout(t *testing.T) {
	sweeper := NewSweeper(NewRegistry(), 30*time.Minute, 0)
	assert.Equal(t, 30*time.Minute, sweeper.interval)
}

func TestSweeperStopTerminatesLoop(t *testing.T) {
	sweeper := NewSweeper(NewRegistry(), time.Minute, time.Millisecond)
	sweeper.Start()
	sweeper.Stop()
}

func TestSweeperStopIsIdempotent(t *testing.T) {
	sweeper := NewSweeper(NewRegistry(), time.Minute, time.Millisecond)
	sweeper.Start()

	assert.NotPanics(t, func() {
		sweeper.Stop()
		sweeper.Stop()
	})
}
