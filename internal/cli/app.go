package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	stdsync "sync"
	"time"

	"github.com/famvault/famvault/internal/archive/gate"
	"github.com/famvault/famvault/internal/archive/models"
	"github.com/famvault/famvault/internal/archive/store"
	"github.com/famvault/famvault/internal/config"
	"github.com/famvault/famvault/internal/logging"
	"github.com/famvault/famvault/internal/remote"
	"github.com/famvault/famvault/internal/sync"

	_ "modernc.org/sqlite"
)

// App wires the offline-first machinery behind the REPL: local store,
// remote client, sync engine, reachability monitor and the live remote
// projection.
type App struct {
	config  *config.Config
	store   *store.Store
	engine  *sync.Engine
	monitor *sync.Monitor
	pub     *sync.Publisher
	sub     *sync.Subscriber
	gate    *gate.Gate
	log     logging.Logger
	reader  *bufio.Reader

	treeMu stdsync.Mutex
	tree   models.MemoryTree
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewDefault(os.Stderr, slog.LevelInfo)

	st, err := store.Open(ctx, c.DatabasePath, log)
	if err != nil {
		log.Error(ctx, "initializing local database failed", "error", err)
		return nil, err
	}

	httpStore := remote.NewHTTPStore(c.RemoteBaseURL, c.PollInterval, log)

	var blobs remote.Blobs
	if c.S3Bucket != "" {
		blobs, err = remote.NewS3Blobs(ctx, remote.S3Config{
			Region:       c.S3Region,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3Endpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	} else {
		blobs = remote.NewHTTPBlobs(httpStore)
	}

	pub := sync.NewPublisher()
	engine := sync.NewEngine(st, httpStore, blobs, pub, log)
	monitor := sync.NewMonitor(httpStore, engine, pub, c.ArchiveKey, c.OnlineCheckInterval, log)

	return &App{
		config:  c,
		store:   st,
		engine:  engine,
		monitor: monitor,
		pub:     pub,
		sub:     sync.NewSubscriber(httpStore, log),
		gate:    gate.New(c.GatePhrase),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run unlocks the gate, restores persisted sync state, starts the
// reachability watcher and the remote projection streams, then hands
// control to the REPL. It returns when the user exits.
func (a *App) Run(ctx context.Context) error {
	defer func() { _ = a.store.Close() }()

	if !a.unlock(ctx) {
		fmt.Println("Too many failed attempts.")
		return nil
	}

	if err := a.engine.Restore(ctx, a.config.ArchiveKey); err != nil {
		a.log.Warn(ctx, "restoring sync status failed", "error", err)
	}
	a.restoreSession(ctx)
	if err := a.seedTree(ctx); err != nil {
		a.log.Warn(ctx, "seeding projection from local cache failed", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.monitor.Start(ctx)

	stop, err := a.sub.Subscribe(a.config.ArchiveKey, a.onTreeUpdate, func(err error) {
		a.log.Warn(ctx, "projection stream error", "error", err)
	})
	if err != nil {
		a.log.Warn(ctx, "starting projection streams failed", "error", err)
	} else {
		defer stop()
	}

	a.Root(ctx)

	a.saveSession(ctx)
	return nil
}

const sessionKey = "cli_session"

type sessionState struct {
	LastVisit  time.Time `json:"lastVisit"`
	ArchiveKey string    `json:"archiveKey"`
}

func (a *App) restoreSession(ctx context.Context) {
	raw, err := a.store.LoadSessionState(ctx, sessionKey)
	if err != nil {
		a.log.Warn(ctx, "loading session state failed", "error", err)
		return
	}
	if raw == nil {
		return
	}
	var s sessionState
	if err := json.Unmarshal(raw, &s); err != nil {
		a.log.Warn(ctx, "corrupt session state", "error", err)
		return
	}
	if s.ArchiveKey == a.config.ArchiveKey && !s.LastVisit.IsZero() {
		fmt.Printf("Welcome back. Last visit: %s\n", s.LastVisit.Format("2006-01-02 15:04 MST"))
	}
}

func (a *App) saveSession(ctx context.Context) {
	raw, err := json.Marshal(sessionState{
		LastVisit:  time.Now().UTC(),
		ArchiveKey: a.config.ArchiveKey,
	})
	if err != nil {
		return
	}
	if err := a.store.SaveSessionState(ctx, sessionKey, raw); err != nil {
		a.log.Warn(ctx, "saving session state failed", "error", err)
	}
}

const maxUnlockAttempts = 3

func (a *App) unlock(ctx context.Context) bool {
	if !a.gate.Enabled() {
		return true
	}
	for i := 0; i < maxUnlockAttempts; i++ {
		phrase, err := GetPassword(os.Stdout, "Enter the archive phrase: ")
		if err != nil {
			a.log.Error(ctx, "reading phrase failed", "error", err)
			return false
		}
		if a.gate.Check(phrase) {
			return true
		}
		fmt.Println("That's not it.")
	}
	return false
}

// seedTree primes the projection from the local cache so views work
// before (or without) the first remote snapshot.
func (a *App) seedTree(ctx context.Context) error {
	people, err := a.store.GetPeople(ctx, a.config.ArchiveKey)
	if err != nil {
		return err
	}
	mems, err := a.store.GetMemories(ctx, a.config.ArchiveKey)
	if err != nil {
		return err
	}
	bio, err := a.store.GetFamilyBio(ctx, a.config.ArchiveKey)
	if err != nil {
		return err
	}

	a.treeMu.Lock()
	defer a.treeMu.Unlock()
	a.tree = models.MemoryTree{
		ArchiveKey: a.config.ArchiveKey,
		FamilyBio:  bio,
		People:     people,
		Memories:   mems,
	}
	return nil
}

func (a *App) onTreeUpdate(u sync.TreeUpdate) {
	a.treeMu.Lock()
	defer a.treeMu.Unlock()
	a.tree = sync.MergeTree(a.tree, u)
}

func (a *App) currentTree() models.MemoryTree {
	a.treeMu.Lock()
	defer a.treeMu.Unlock()
	return a.tree
}

func (a *App) out() io.Writer {
	return os.Stdout
}
