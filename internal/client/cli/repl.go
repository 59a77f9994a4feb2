package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isEditing() bool

	Collections(ctx context.Context) error
	Create(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	Info(ctx context.Context) error
	EditInfo(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Tag(ctx context.Context, args []string) error
	Relate(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	ClearSearch(ctx context.Context) error
	Sort(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
	URL(ctx context.Context, args []string) error
	CloseCollection(ctx context.Context) error
}

const (
	homeHelp = "Available commands: collections, create <name>, open <uuid|/editor/uuid>, " +
		"import <file>, restore <key>, url <key>, delete <uuid>, exit"
	editorHelp = "Available commands: info, edit-info, (l)ist, show <id>, add, edit <id>, rm <id>, " +
		"tag <id> <tag...>, relate <id> <target> <label>, search <clause>, clear, sort <key> [asc|desc], " +
		"export [file], backup, url <key>, close, collections, exit"
)

// runREPL starts the read-eval-print loop of the charkeeper CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments. The
// loop exits on EOF, when ctx is done, or when the user types "exit" or "quit".
//
// On the home view only collection-level commands are available; editor
// commands require an open collection and are rejected with a hint otherwise.
//
// Errors returned by command handlers are ignored here; handlers print
// their own user-facing messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ck%s> ", prompt(statusFn())))

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !dispatchHome(ctx, a, cmd, args) {
			switch {
			case cmd == "exit" || cmd == "quit":
				printlnFn("Bye!")
				return
			case cmd == "help":
				if a.isEditing() {
					printlnFn(editorHelp)
				} else {
					printlnFn(homeHelp)
				}
			case !isEditorCommand(cmd):
				printlnFn("Unknown command:", cmd)
			case !a.isEditing():
				printlnFn("No collection is open. Use 'open <uuid>' first.")
			default:
				dispatchEditor(ctx, a, cmd, args)
			}
		}

		if err != nil {
			return
		}
	}
}

func prompt(status string) string {
	if status == "" {
		return ""
	}
	return " " + status
}

// dispatchHome runs commands that work on any view and reports whether cmd
// was one of them.
func dispatchHome(ctx context.Context, a execIface, cmd string, args []string) bool {
	switch cmd {
	case "collections", "home":
		_ = a.Collections(ctx)
	case "create":
		_ = a.Create(ctx, args)
	case "open":
		_ = a.Open(ctx, args)
	case "import":
		_ = a.Import(ctx, args)
	case "restore":
		_ = a.Restore(ctx, args)
	case "url":
		_ = a.URL(ctx, args)
	case "delete":
		_ = a.Delete(ctx, args)
	default:
		return false
	}
	return true
}

var editorCommands = map[string]struct{}{
	"info": {}, "edit-info": {}, "l": {}, "list": {}, "show": {}, "add": {},
	"edit": {}, "rm": {}, "tag": {}, "relate": {}, "search": {}, "clear": {},
	"sort": {}, "export": {}, "backup": {}, "close": {},
}

func isEditorCommand(cmd string) bool {
	_, ok := editorCommands[cmd]
	return ok
}

func dispatchEditor(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "info":
		_ = a.Info(ctx)
	case "edit-info":
		_ = a.EditInfo(ctx)
	case "l", "list":
		_ = a.List(ctx)
	case "show":
		_ = a.Show(ctx, args)
	case "add":
		_ = a.Add(ctx)
	case "edit":
		_ = a.Edit(ctx, args)
	case "rm":
		_ = a.Remove(ctx, args)
	case "tag":
		_ = a.Tag(ctx, args)
	case "relate":
		_ = a.Relate(ctx, args)
	case "search":
		_ = a.Search(ctx, args)
	case "clear":
		_ = a.ClearSearch(ctx)
	case "sort":
		_ = a.Sort(ctx, args)
	case "export":
		_ = a.Export(ctx, args)
	case "backup":
		_ = a.Backup(ctx)
	case "close":
		_ = a.CloseCollection(ctx)
	}
}
