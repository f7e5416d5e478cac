package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/famvault/famvault/internal/archive/export"
)

func (a *App) export(ctx context.Context, file string) {
	data, err := export.JSON(ctx, a.store, a.config.ArchiveKey)
	if err != nil {
		a.log.Error(ctx, "export failed", "error", err)
		return
	}
	if err := os.WriteFile(file, data, 0o600); err != nil {
		a.log.Error(ctx, "writing export file failed", "error", err)
		return
	}
	fmt.Println("Exported to", file)
}

func (a *App) verify(ctx context.Context) {
	rep, err := export.VerifyIntegrity(ctx, a.store, a.config.ArchiveKey)
	if err != nil {
		a.log.Error(ctx, "integrity check failed", "error", err)
		return
	}

	fmt.Printf("Integrity: %s (%d people, %d memories)\n",
		rep.Status, rep.PeopleCount, rep.MemoriesCount)
	for _, e := range rep.Errors {
		fmt.Println(" -", e)
	}
}
