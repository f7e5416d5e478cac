package sync

import (
	"context"
	stdsync "sync"

	"github.com/famvault/famvault/internal/archive/models"
	"github.com/famvault/famvault/internal/logging"
	"github.com/famvault/famvault/internal/remote"
)

// TreeUpdate carries one stream's worth of fresh remote state. A nil
// slice (or nil Metadata) means that part was not touched by this update
// and the consumer's current value must be kept.
type TreeUpdate struct {
	Metadata *models.ArchiveMetadata
	People   []models.Person
	Memories []models.Memory
}

// MergeTree folds an update into the current projection without
// clearing untouched parts. An empty but non-nil slice is a real
// observation (the collection is empty remotely) and replaces.
func MergeTree(current models.MemoryTree, u TreeUpdate) models.MemoryTree {
	if u.Metadata != nil {
		if u.Metadata.ArchiveKey != "" {
			current.ArchiveKey = u.Metadata.ArchiveKey
		}
		current.FamilyName = u.Metadata.FamilyName
		current.FamilyBio = u.Metadata.FamilyBio
	}
	if u.People != nil {
		current.People = u.People
	}
	if u.Memories != nil {
		current.Memories = u.Memories
	}
	return current
}

// Subscriber maintains the live remote projection of one archive.
type Subscriber struct {
	remote remote.Store
	log    logging.Logger
}

func NewSubscriber(rem remote.Store, log logging.Logger) *Subscriber {
	return &Subscriber{remote: rem, log: log}
}

// Subscribe opens three independent streams (tree document, people,
// memories) and forwards each snapshot as a partial TreeUpdate. A stream
// error goes to onError and leaves the sibling streams running. The
// returned stop function cancels all three; calling it twice is a no-op.
func (s *Subscriber) Subscribe(archiveKey string, onUpdate func(TreeUpdate), onError func(error)) (func(), error) {
	treePath := "trees/" + archiveKey

	var stops []func()
	cancelAll := func() {
		for _, stop := range stops {
			stop()
		}
	}

	stop, err := s.remote.Subscribe(treePath, func(docs []remote.Document) {
		if len(docs) == 0 {
			return
		}
		md := models.MetadataFromDocument(docs[0])
		onUpdate(TreeUpdate{Metadata: &md})
	}, onError)
	if err != nil {
		return nil, err
	}
	stops = append(stops, stop)

	stop, err = s.remote.Subscribe(peoplePath(archiveKey), func(docs []remote.Document) {
		people := make([]models.Person, 0, len(docs))
		for _, d := range docs {
			people = append(people, models.PersonFromDocument(d))
		}
		onUpdate(TreeUpdate{People: people})
	}, onError)
	if err != nil {
		cancelAll()
		return nil, err
	}
	stops = append(stops, stop)

	stop, err = s.remote.Subscribe(memoriesPath(archiveKey), func(docs []remote.Document) {
		mems := make([]models.Memory, 0, len(docs))
		for _, d := range docs {
			mems = append(mems, models.MemoryFromDocument(d))
		}
		onUpdate(TreeUpdate{Memories: mems})
	}, onError)
	if err != nil {
		cancelAll()
		return nil, err
	}
	stops = append(stops, stop)

	s.log.Debug(context.Background(), "projection streams started", "archive", archiveKey)

	var once stdsync.Once
	return func() {
		once.Do(cancelAll)
	}, nil
}
