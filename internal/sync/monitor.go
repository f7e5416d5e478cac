package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/famvault/famvault/internal/archive/models"
	"github.com/famvault/famvault/internal/logging"
	"github.com/famvault/famvault/internal/remote"
)

const pingTimeout = 3 * time.Second

// Monitor probes remote reachability on a ticker and drives the
// online/offline transitions: going online publishes SYNCING and
// triggers a drain, going offline publishes the OFFLINE state. Transitions are serialized, so a
// probe result and an external SetOnline cannot interleave.
type Monitor struct {
	remote     remote.Store
	engine     *Engine
	pub        *Publisher
	archiveKey string
	interval   time.Duration
	log        logging.Logger

	mu stdsync.Mutex
}

func NewMonitor(rem remote.Store, engine *Engine, pub *Publisher, archiveKey string, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		remote:     rem,
		engine:     engine,
		pub:        pub,
		archiveKey: archiveKey,
		interval:   interval,
		log:        log,
	}
}

// Start blocks until ctx is done, probing on the configured interval.
// The first probe runs immediately so startup state settles without
// waiting a full tick. Callers run it in its own goroutine.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := m.remote.Ping(pctx)
	cancel()
	m.SetOnline(ctx, err == nil)
}

// SetOnline applies a reachability observation. Exposed for tests and
// for environments with an external connectivity signal. A repeat of the
// current state is a no-op.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if online == m.engine.Online() {
		return
	}
	m.engine.SetOnline(online)

	if !online {
		m.log.Info(ctx, "remote unreachable, entering offline mode")
		m.pub.Update(func(st *models.SyncStatus) {
			st.IsOnline = false
			st.SyncInProgress = false
			st.State = models.SyncOffline
		})
		return
	}

	m.log.Info(ctx, "remote reachable, draining queued operations")
	m.pub.Update(func(st *models.SyncStatus) {
		st.IsOnline = true
		st.State = models.SyncSyncing
	})
	if err := m.engine.Drain(ctx, m.archiveKey); err != nil {
		m.log.Error(ctx, "reconnect drain failed", "error", err)
	}
}
