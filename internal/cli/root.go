package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	st := a.pub.Current()
	s := string(st.State)
	if st.PendingOperations > 0 {
		s = fmt.Sprintf("%s, %d pending", s, st.PendingOperations)
	}
	return fmt.Sprintf("(%s)", s)
}

// Root runs the REPL until the user exits or stdin closes.
func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to famvault (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("famvault %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: people, addperson, memories [person-id], addmemory,")
			fmt.Println("  bio, bio set, tree, timeline, search <text>, sync, sync all, status,")
			fmt.Println("  export [file], verify, reset, exit")

		case "people":
			a.people(ctx)
		case "addperson":
			a.addPerson(ctx)
		case "memories":
			a.memories(ctx, args)
		case "addmemory":
			a.addMemory(ctx)
		case "bio":
			if len(args) > 0 && args[0] == "set" {
				a.setBio(ctx)
			} else {
				a.showBio(ctx)
			}
		case "tree":
			a.showTree()
		case "timeline":
			a.showTimeline()
		case "search":
			if len(args) == 0 {
				fmt.Println("Usage: search <text>")
				continue
			}
			a.search(strings.Join(args, " "))
		case "sync":
			if len(args) > 0 && args[0] == "all" {
				a.syncAll(ctx)
			} else {
				a.syncNow(ctx)
			}
		case "status":
			a.status()
		case "export":
			file := "famvault-export.json"
			if len(args) > 0 {
				file = args[0]
			}
			a.export(ctx, file)
		case "verify":
			a.verify(ctx)
		case "reset":
			a.reset(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
