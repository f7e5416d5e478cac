package cli

import (
	"context"
	"fmt"
)

func (a *App) syncNow(ctx context.Context) {
	if !a.engine.Online() {
		fmt.Println("Offline. Changes stay queued until the backend is reachable.")
		return
	}
	if err := a.engine.Drain(ctx, a.config.ArchiveKey); err != nil {
		fmt.Println("Sync finished with errors:", err)
		return
	}
	fmt.Println("Synced.")
}

// syncAll queues a full re-push of every cached entity before draining.
func (a *App) syncAll(ctx context.Context) {
	if err := a.store.EnqueueFullSync(ctx, a.config.ArchiveKey); err != nil {
		a.log.Error(ctx, "queueing full sync failed", "error", err)
		return
	}
	a.afterLocalWrite(ctx)
	fmt.Println("Full sync queued.")
}

func (a *App) status() {
	st := a.pub.Current()

	online := "offline"
	if st.IsOnline {
		online = "online"
	}
	fmt.Printf("State:      %s (%s)\n", st.State, online)
	fmt.Printf("Pending:    %d operation(s)\n", st.PendingOperations)
	if st.SyncInProgress {
		fmt.Println("A sync pass is running.")
	}
	if st.LastSyncTime != nil {
		fmt.Printf("Last sync:  %s\n", st.LastSyncTime.Format("2006-01-02 15:04:05 MST"))
	} else {
		fmt.Println("Last sync:  never")
	}
}
