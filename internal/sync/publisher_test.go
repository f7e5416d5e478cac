package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famvault/famvault/internal/archive/models"
)

func TestPublisher_DeliversInRegistrationOrder(t *testing.T) {
	p := NewPublisher()

	var order []string
	p.Subscribe(func(models.SyncStatus) { order = append(order, "first") })
	p.Subscribe(func(models.SyncStatus) { order = append(order, "second") })
	p.Subscribe(func(models.SyncStatus) { order = append(order, "third") })

	p.Update(func(st *models.SyncStatus) { st.State = models.SyncSyncing })

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestPublisher_UnsubscribeStopsDelivery(t *testing.T) {
	p := NewPublisher()

	var kept, dropped int
	p.Subscribe(func(models.SyncStatus) { kept++ })
	unsub := p.Subscribe(func(models.SyncStatus) { dropped++ })

	p.Update(func(st *models.SyncStatus) { st.PendingOperations = 1 })
	unsub()
	unsub() // second call is a no-op
	p.Update(func(st *models.SyncStatus) { st.PendingOperations = 2 })

	assert.Equal(t, 2, kept)
	assert.Equal(t, 1, dropped)
}

func TestPublisher_ListenerGetsACopy(t *testing.T) {
	p := NewPublisher()

	now := time.Now().UTC()
	var seen models.SyncStatus
	p.Subscribe(func(st models.SyncStatus) { seen = st })

	p.Update(func(st *models.SyncStatus) {
		st.IsOnline = true
		st.LastSyncTime = &now
		st.PendingOperations = 3
	})

	// mutating the received value must not leak back
	seen.PendingOperations = 99
	assert.Equal(t, 3, p.Current().PendingOperations)
}

func TestPublisher_CurrentReflectsLatestUpdate(t *testing.T) {
	p := NewPublisher()
	require.Equal(t, models.SyncIdle, p.Current().State)

	p.Update(func(st *models.SyncStatus) { st.State = models.SyncError })
	assert.Equal(t, models.SyncError, p.Current().State)
}
