// Package tree builds the hierarchical projection of an archive: a
// family root, one node per person with their memories underneath, and
// a bucket for memories belonging to the whole family. Views derive
// from this model instead of querying collections directly.
package tree

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/famvault/famvault/internal/archive/models"
)

type Kind string

const (
	KindFamily         Kind = "family"
	KindPerson         Kind = "person"
	KindMemory         Kind = "memory"
	KindFamilyMemories Kind = "family-memories"
)

// FamilyMemoriesID is the fixed node ID of the family-memories bucket.
const FamilyMemoriesID = "family-memories"

// Node is one element of the projection. Person is set on person nodes,
// Memory on memory nodes; Count and LastModified roll up the subtree.
type Node struct {
	ID           string
	Kind         Kind
	Label        string
	Person       *models.Person
	Memory       *models.Memory
	Children     []*Node
	Count        int
	LastModified time.Time
}

// Build assembles the full projection from a merged tree snapshot. The
// root count covers every memory; a person node counts only the
// memories tagged with that person. Memories with no matching person
// land nowhere except the family bucket when family-tagged; integrity
// checking reports them separately.
func Build(t models.MemoryTree) *Node {
	root := &Node{
		ID:    "root",
		Kind:  KindFamily,
		Label: t.FamilyName,
		Count: len(t.Memories),
	}

	for _, m := range t.Memories {
		if m.Timestamp.After(root.LastModified) {
			root.LastModified = m.Timestamp
		}
	}

	for i := range t.People {
		p := t.People[i]
		node := &Node{
			ID:     p.ID,
			Kind:   KindPerson,
			Label:  p.Name,
			Person: &p,
		}
		for j := range t.Memories {
			m := t.Memories[j]
			if !taggedWith(m, p.ID) {
				continue
			}
			node.Children = append(node.Children, memoryNode(m))
			node.Count++
			if m.Timestamp.After(node.LastModified) {
				node.LastModified = m.Timestamp
			}
		}
		root.Children = append(root.Children, node)
	}

	bucket := &Node{
		ID:    FamilyMemoriesID,
		Kind:  KindFamilyMemories,
		Label: "Family Memories",
	}
	for i := range t.Memories {
		m := t.Memories[i]
		if !m.Tags.IsFamilyMemory {
			continue
		}
		bucket.Children = append(bucket.Children, memoryNode(m))
		bucket.Count++
		if m.Timestamp.After(bucket.LastModified) {
			bucket.LastModified = m.Timestamp
		}
	}
	if bucket.Count > 0 {
		root.Children = append(root.Children, bucket)
	}

	return root
}

func taggedWith(m models.Memory, personID string) bool {
	for _, id := range m.Tags.PersonIDs {
		if id == personID {
			return true
		}
	}
	return false
}

func memoryNode(m models.Memory) *Node {
	label := m.Caption()
	if label == "" {
		label = fmt.Sprintf("%s from %d", m.Type, m.Timestamp.Year())
	}
	mm := m
	return &Node{
		ID:           m.ID,
		Kind:         KindMemory,
		Label:        label,
		Memory:       &mm,
		Count:        1,
		LastModified: m.Timestamp,
	}
}

// People returns the person entities in tree order.
func People(root *Node) []models.Person {
	var out []models.Person
	for _, n := range root.Children {
		if n.Kind == KindPerson {
			out = append(out, *n.Person)
		}
	}
	return out
}

// PersonMemories returns the memories under one person node.
func PersonMemories(root *Node, personID string) []models.Memory {
	for _, n := range root.Children {
		if n.Kind != KindPerson || n.ID != personID {
			continue
		}
		out := make([]models.Memory, 0, len(n.Children))
		for _, c := range n.Children {
			out = append(out, *c.Memory)
		}
		return out
	}
	return nil
}

// Stats summarizes the projection for dashboards.
type Stats struct {
	TotalPeople   int
	TotalMemories int
	MemoryTypes   map[models.MemoryType]int
	YearMin       int
	YearMax       int
}

// Statistics walks person nodes and the family bucket. A memory tagged
// with several people is counted once per tag, matching what each
// person's view shows.
func Statistics(root *Node) Stats {
	st := Stats{MemoryTypes: map[models.MemoryType]int{}}

	for _, n := range root.Children {
		if n.Kind == KindPerson {
			st.TotalPeople++
		}
		for _, c := range n.Children {
			if c.Kind != KindMemory {
				continue
			}
			st.TotalMemories++
			st.MemoryTypes[c.Memory.Type]++
			y := c.Memory.Timestamp.Year()
			if st.YearMin == 0 || y < st.YearMin {
				st.YearMin = y
			}
			if y > st.YearMax {
				st.YearMax = y
			}
		}
	}
	return st
}

// Search returns every node whose label, or memory content, contains
// the query (case-insensitive).
func Search(root *Node, query string) []*Node {
	q := strings.ToLower(query)
	var results []*Node

	var walk func(n *Node)
	walk = func(n *Node) {
		if strings.Contains(strings.ToLower(n.Label), q) ||
			(n.Kind == KindMemory && strings.Contains(strings.ToLower(n.Memory.Content), q)) {
			results = append(results, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return results
}

// TimelineItem pairs a memory with the label of the node it hangs
// under.
type TimelineItem struct {
	Memory     models.Memory
	PersonName string
}

// Timeline flattens the projection into a newest-first list. Family
// bucket memories carry the family name as their person label.
func Timeline(root *Node) []TimelineItem {
	var items []TimelineItem
	for _, n := range root.Children {
		name := n.Label
		if n.Kind == KindFamilyMemories {
			name = root.Label
		}
		for _, c := range n.Children {
			items = append(items, TimelineItem{Memory: *c.Memory, PersonName: name})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Memory.Timestamp.After(items[j].Memory.Timestamp)
	})
	return items
}
