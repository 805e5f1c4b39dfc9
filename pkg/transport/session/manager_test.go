package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m := NewManager(ttl, func(id string) Session {
		return NewSSESession(id)
	})
	t.Cleanup(m.Stop)
	return m
}

func TestManager_AddAndGet(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute)

	s, err := m.AddWithID("session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", s.ID())
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, s, got)

	_, ok = m.Get("session-2")
	assert.False(t, ok)
}

func TestManager_RejectsEmptyID(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute)

	_, err := m.AddWithID("")
	assert.Error(t, err)
	assert.Equal(t, 0, m.Count())
}

func TestManager_RejectsDuplicateID(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute)

	_, err := m.AddWithID("session-1")
	require.NoError(t, err)

	_, err = m.AddWithID("session-1")
	assert.ErrorContains(t, err, "already exists")
	assert.Equal(t, 1, m.Count())
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute)

	_, err := m.AddWithID("session-1")
	require.NoError(t, err)

	m.Delete("session-1")
	assert.Equal(t, 0, m.Count())

	_, ok := m.Get("session-1")
	assert.False(t, ok)
}

func TestManager_Range(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute)
	for i := 0; i < 5; i++ {
		_, err := m.AddWithID(fmt.Sprintf("session-%d", i))
		require.NoError(t, err)
	}

	seen := 0
	m.Range(func(string, Session) bool {
		seen++
		return true
	})
	assert.Equal(t, 5, seen)

	seen = 0
	m.Range(func(string, Session) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen, "Range must stop when f returns false")
}

func TestManager_CleanupExpired(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, 20*time.Millisecond)

	stale, err := m.AddWithID("stale")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = m.AddWithID("fresh")
	require.NoError(t, err)

	m.CleanupExpired()

	_, ok := m.Get("stale")
	assert.False(t, ok, "expired session must be removed")
	_, ok = m.Get("fresh")
	assert.True(t, ok, "active session must survive cleanup")

	// Expired SSE sessions are disconnected so writers unblock.
	err = stale.(*SSESession).SendMessage("late")
	assert.ErrorIs(t, err, ErrSessionDisconnected)
}

func TestManager_GetRefreshesActivity(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, 50*time.Millisecond)

	_, err := m.AddWithID("session-1")
	require.NoError(t, err)

	// Keep touching the session past its TTL; it must survive.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		_, ok := m.Get("session-1")
		require.True(t, ok)
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute)
	m.Stop()
	assert.NotPanics(t, m.Stop)
}
