package collab

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectral/vectral/backend-go/internal/geometry"
)

type evictLog struct {
	mu    sync.Mutex
	users []string
}

func (l *evictLog) record(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users = append(l.users, userID)
}

func (l *evictLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.users...)
}

func testCursor(userID string, x, y float64) Cursor {
	return Cursor{
		UserID:     userID,
		UserName:   "name-" + userID,
		Color:      "#22aaff",
		Position:   geometry.Point{X: x, Y: y},
		Tool:       "select",
		Visible:    true,
		LastUpdate: time.Now().UnixMilli(),
	}
}

func TestCursorRegistryObserveAndList(t *testing.T) {
	reg := NewCursorRegistry(0, nil)

	reg.Observe(testCursor("user_b", 5, 6))
	reg.Observe(testCursor("user_a", 1, 2))

	got, ok := reg.Get("user_a")
	require.True(t, ok)
	assert.Equal(t, geometry.Point{X: 1, Y: 2}, got.Position)

	all := reg.Cursors()
	require.Len(t, all, 2)
	assert.Equal(t, "user_a", all[0].UserID)
	assert.Equal(t, "user_b", all[1].UserID)
}

func TestCursorRegistryEvictsIdleCursor(t *testing.T) {
	log := &evictLog{}
	reg := NewCursorRegistry(50*time.Millisecond, log.record)

	reg.Observe(testCursor("user_a", 10, 10))

	require.Eventually(t, func() bool {
		_, ok := reg.Get("user_a")
		return !ok && len(log.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The eviction must fire exactly once.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"user_a"}, log.snapshot())
}

func TestCursorRegistryRefreshExtendsTTL(t *testing.T) {
	log := &evictLog{}
	ttl := 500 * time.Millisecond
	reg := NewCursorRegistry(ttl, log.record)

	reg.Observe(testCursor("user_a", 0, 0))
	time.Sleep(ttl / 2)
	reg.Observe(testCursor("user_a", 30, 40))
	time.Sleep(350 * time.Millisecond)

	// Past the original deadline but inside the refreshed one.
	got, ok := reg.Get("user_a")
	require.True(t, ok, "a refreshed cursor must outlive its original deadline")
	assert.Equal(t, geometry.Point{X: 30, Y: 40}, got.Position)
	assert.Empty(t, log.snapshot())

	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCursorRegistryRemoveIsSilent(t *testing.T) {
	log := &evictLog{}
	reg := NewCursorRegistry(50*time.Millisecond, log.record)

	reg.Observe(testCursor("user_a", 10, 10))
	reg.Remove("user_a")

	_, ok := reg.Get("user_a")
	assert.False(t, ok)

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, log.snapshot(), "an explicit remove must not report an eviction")
}

func TestCursorRegistryClearStopsTimers(t *testing.T) {
	log := &evictLog{}
	reg := NewCursorRegistry(50*time.Millisecond, log.record)

	reg.Observe(testCursor("user_a", 1, 1))
	reg.Observe(testCursor("user_b", 2, 2))
	reg.Clear()

	assert.Empty(t, reg.Cursors())

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, log.snapshot())
}
