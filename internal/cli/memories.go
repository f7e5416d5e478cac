package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/famvault/famvault/internal/archive/models"
)

func (a *App) memories(ctx context.Context, args []string) {
	var (
		mems []models.Memory
		err  error
	)
	if len(args) > 0 {
		mems, err = a.store.GetMemoriesForPerson(ctx, a.config.ArchiveKey, args[0])
	} else {
		mems, err = a.store.GetMemories(ctx, a.config.ArchiveKey)
	}
	if err != nil {
		a.log.Error(ctx, "listing memories failed", "error", err)
		return
	}
	if len(mems) == 0 {
		fmt.Println("No memories yet. Use 'addmemory'.")
		return
	}
	for _, m := range mems {
		tag := strings.Join(m.Tags.PersonIDs, ",")
		if m.Tags.IsFamilyMemory {
			tag = "family"
		}
		fmt.Printf("%s  [%s]  %s  (%s)  %s\n",
			m.ID, m.Type, m.Caption(), m.Timestamp.Format("2006-01-02"), tag)
	}
}

func (a *App) addMemory(ctx context.Context) {
	kind, _ := GetSimpleText(a.reader, "Type (text/image/audio/video/document/pdf) [text]:", a.out())
	if kind == "" {
		kind = string(models.MemoryTypeText)
	}

	caption, err := GetSimpleText(a.reader, "Caption:", a.out())
	if err != nil || caption == "" {
		fmt.Println("A caption is required.")
		return
	}

	content := caption
	if kind != string(models.MemoryTypeText) {
		media, _ := GetSimpleText(a.reader, "Media (URL or data: payload):", a.out())
		content = models.JoinContent(caption, media)
	}

	location, _ := GetSimpleText(a.reader, "Location (optional):", a.out())

	family, _ := GetSimpleText(a.reader, "Family memory? (y/N):", a.out())
	var tags models.MemoryTags
	if strings.EqualFold(family, "y") {
		tags.IsFamilyMemory = true
	} else {
		ids, _ := GetSimpleText(a.reader, "Person IDs (comma separated):", a.out())
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				tags.PersonIDs = append(tags.PersonIDs, id)
			}
		}
	}

	m := &models.Memory{
		ID:        uuid.NewString(),
		Type:      models.MemoryType(kind),
		Content:   content,
		Location:  location,
		Timestamp: time.Now().UTC(),
		Tags:      tags,
	}
	if err := a.store.PutMemory(ctx, m, a.config.ArchiveKey); err != nil {
		a.log.Error(ctx, "saving memory failed", "error", err)
		fmt.Println("Not saved:", err)
		return
	}
	fmt.Println("Saved", m.ID)

	a.afterLocalWrite(ctx)
}
