package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Begin(1)

	sess, ok := store.Get(1)
	require.True(t, ok)
	sess.Query = "кардиолог"

	// Изменение копии не должно просочиться в хранилище без Put
	again, _ := store.Get(1)
	assert.Empty(t, again.Query)

	store.Put(sess)
	again, _ = store.Get(1)
	assert.Equal(t, "кардиолог", again.Query)
}

func TestStoreSweep(t *testing.T) {
	store := NewStore()

	stale := store.Begin(1)
	stale.HeldSlotID = "S1"
	stale.TouchedAt = time.Now().Add(-time.Hour)
	store.mu.Lock()
	store.sessions[stale.ChatID] = stale // Put перештамповал бы TouchedAt
	store.mu.Unlock()

	store.Begin(2)

	expired := store.Sweep(30 * time.Minute)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(1), expired[0].ChatID)
	assert.Equal(t, "S1", expired[0].HeldSlotID)

	assert.False(t, store.Active(1))
	assert.True(t, store.Active(2))
}

func TestStoreEnd(t *testing.T) {
	store := NewStore()
	store.Begin(1)
	require.True(t, store.Active(1))

	store.End(1)
	assert.False(t, store.Active(1))
}
