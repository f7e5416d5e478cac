package cli

import (
	"context"
	"fmt"
)

// reset wipes the local database after an explicit confirmation. Queued
// operations are lost with it; anything already synced stays remote.
func (a *App) reset(ctx context.Context) {
	answer, err := GetSimpleText(a.reader,
		"This wipes the local archive, including unsynced changes. Type YES to continue:", a.out())
	if err != nil || answer != "YES" {
		fmt.Println("Reset cancelled.")
		return
	}

	if err := a.store.ClearAll(ctx); err != nil {
		a.log.Error(ctx, "reset failed", "error", err)
		return
	}
	a.engine.NoteLocalWrite(ctx, a.config.ArchiveKey)
	if err := a.seedTree(ctx); err != nil {
		a.log.Warn(ctx, "refreshing projection failed", "error", err)
	}
	fmt.Println("Local archive cleared.")
}
