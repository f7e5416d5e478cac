package cli

import (
	"fmt"
	"strings"

	"github.com/famvault/famvault/internal/archive/tree"
)

func (a *App) showTree() {
	root := tree.Build(a.currentTree())

	printNode(root, 0)

	st := tree.Statistics(root)
	fmt.Printf("\n%d people, %d memories", st.TotalPeople, st.TotalMemories)
	if st.YearMin != 0 {
		fmt.Printf(", %d-%d", st.YearMin, st.YearMax)
	}
	fmt.Println()
}

func printNode(n *tree.Node, depth int) {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	suffix := ""
	if n.Kind != tree.KindMemory {
		suffix = fmt.Sprintf(" (%d)", n.Count)
	}
	fmt.Printf("%s%s%s\n", strings.Repeat("  ", depth), label, suffix)
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}

func (a *App) showTimeline() {
	items := tree.Timeline(tree.Build(a.currentTree()))
	if len(items) == 0 {
		fmt.Println("No memories yet.")
		return
	}
	for _, it := range items {
		fmt.Printf("%s  %-12s  %s\n",
			it.Memory.Timestamp.Format("2006-01-02"), it.PersonName, it.Memory.Caption())
	}
}

func (a *App) search(query string) {
	hits := tree.Search(tree.Build(a.currentTree()), query)
	if len(hits) == 0 {
		fmt.Println("Nothing found.")
		return
	}
	for _, n := range hits {
		fmt.Printf("[%s] %s\n", n.Kind, n.Label)
	}
}
