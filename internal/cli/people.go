package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/famvault/famvault/internal/archive/models"
)

func (a *App) people(ctx context.Context) {
	people, err := a.store.GetPeople(ctx, a.config.ArchiveKey)
	if err != nil {
		a.log.Error(ctx, "listing people failed", "error", err)
		return
	}
	if len(people) == 0 {
		fmt.Println("No people yet. Use 'addperson'.")
		return
	}
	for _, p := range people {
		line := fmt.Sprintf("%s  %s", p.ID, p.Name)
		if p.BirthYear != 0 {
			line += fmt.Sprintf(" (b. %d)", p.BirthYear)
		}
		fmt.Println(line)
	}
}

func (a *App) addPerson(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Name:", a.out())
	if err != nil || name == "" {
		fmt.Println("A name is required.")
		return
	}

	yearText, _ := GetSimpleText(a.reader, "Birth year (optional):", a.out())
	year := 0
	if yearText != "" {
		year, err = strconv.Atoi(yearText)
		if err != nil {
			fmt.Println("Not a year:", yearText)
			return
		}
	}

	bio, _ := GetMultiline(a.reader, "Bio (optional):", a.out())

	p := &models.Person{
		ID:        uuid.NewString(),
		Name:      name,
		BirthYear: year,
		Bio:       bio,
	}
	if err := a.store.PutPerson(ctx, p, a.config.ArchiveKey); err != nil {
		a.log.Error(ctx, "saving person failed", "error", err)
		return
	}
	fmt.Println("Saved", p.ID)

	a.afterLocalWrite(ctx)
}

// afterLocalWrite refreshes the published pending count, re-seeds the
// local projection and kicks a drain (a no-op while offline).
func (a *App) afterLocalWrite(ctx context.Context) {
	a.engine.NoteLocalWrite(ctx, a.config.ArchiveKey)
	if err := a.seedTree(ctx); err != nil {
		a.log.Warn(ctx, "refreshing projection failed", "error", err)
	}
	if err := a.engine.Drain(ctx, a.config.ArchiveKey); err != nil {
		a.log.Warn(ctx, "sync after save failed", "error", err)
	}
}
