package cli

import (
	"context"
	"fmt"
)

func (a *App) showBio(ctx context.Context) {
	bio, err := a.store.GetFamilyBio(ctx, a.config.ArchiveKey)
	if err != nil {
		a.log.Error(ctx, "loading family bio failed", "error", err)
		return
	}
	if bio == "" {
		fmt.Println("No family bio yet. Use 'bio set'.")
		return
	}
	fmt.Println(bio)
}

func (a *App) setBio(ctx context.Context) {
	bio, err := GetMultiline(a.reader, "Family bio:", a.out())
	if err != nil || bio == "" {
		fmt.Println("Nothing to save.")
		return
	}
	if err := a.store.PutFamilyBio(ctx, bio, a.config.ArchiveKey); err != nil {
		a.log.Error(ctx, "saving family bio failed", "error", err)
		return
	}
	fmt.Println("Saved.")

	a.afterLocalWrite(ctx)
}
