package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	ListBoxes(ctx context.Context, search string) error
	ShowBox(ctx context.Context, id string) error
	AddBox(ctx context.Context) error
	EditBox(ctx context.Context, id string) error
	DeleteBox(ctx context.Context, id string) error
	AddLog(ctx context.Context, boxID string) error

	ListBaits(ctx context.Context) error
	ShowBait(ctx context.Context, id string) error
	AddBait(ctx context.Context) error
	EditBait(ctx context.Context, id string) error
	InspectBait(ctx context.Context, id string) error
	DeleteBait(ctx context.Context, id string) error
	Overdue(ctx context.Context) error

	Stats(ctx context.Context) error
	Settings(ctx context.Context) error
	Sync(ctx context.Context) error
	Export(ctx context.Context, dest string) error
	Import(ctx context.Context, src string) error
	Reset(ctx context.Context) error
}

const helpText = `Available commands:
  boxes [search]          list boxes, optionally filtered by name or id
  box <id>                show a box and its management history
  addbox                  register a new box
  editbox <id>            edit a box
  delbox <id>             delete a box and its history
  addlog <box id>         record a management event
  baits                   list bait traps
  bait <id>               show a bait trap
  addbait                 install a new bait trap
  editbait <id>           edit a bait trap
  inspect <id>            mark a bait as inspected today
  delbait <id>            delete a bait trap
  overdue                 baits past their inspection date
  stats                   dashboard and production figures
  settings                edit user name, inspection interval and theme
  sync                    push pending changes now
  export [path|s3://key]  write a backup
  import <path|s3://key>  replace local data with a backup
  reset                   erase all local data
  exit | quit             leave the program`

// usage maps commands that need an argument to their usage line.
var usage = map[string]string{
	"box":      "Usage: box <id>",
	"show":     "Usage: box <id>",
	"editbox":  "Usage: editbox <id>",
	"delbox":   "Usage: delbox <id>",
	"addlog":   "Usage: addlog <box id>",
	"bait":     "Usage: bait <id>",
	"editbait": "Usage: editbait <id>",
	"inspect":  "Usage: inspect <id>",
	"delbait":  "Usage: delbait <id>",
	"import":   "Usage: import <path|s3://key>",
}

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF or when the user types "exit" or "quit". Handler
// errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("melitton %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if u, ok := usage[cmd]; ok && len(args) == 0 {
			printlnFn(u)
			continue
		}
		arg := strings.Join(args, " ")

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "boxes", "ls":
			cmdErr = a.ListBoxes(ctx, arg)
		case "box", "show":
			cmdErr = a.ShowBox(ctx, args[0])
		case "addbox":
			cmdErr = a.AddBox(ctx)
		case "editbox":
			cmdErr = a.EditBox(ctx, args[0])
		case "delbox":
			cmdErr = a.DeleteBox(ctx, args[0])
		case "addlog":
			cmdErr = a.AddLog(ctx, args[0])

		case "baits":
			cmdErr = a.ListBaits(ctx)
		case "bait":
			cmdErr = a.ShowBait(ctx, args[0])
		case "addbait":
			cmdErr = a.AddBait(ctx)
		case "editbait":
			cmdErr = a.EditBait(ctx, args[0])
		case "inspect":
			cmdErr = a.InspectBait(ctx, args[0])
		case "delbait":
			cmdErr = a.DeleteBait(ctx, args[0])
		case "overdue":
			cmdErr = a.Overdue(ctx)

		case "stats":
			cmdErr = a.Stats(ctx)
		case "settings":
			cmdErr = a.Settings(ctx)
		case "sync":
			cmdErr = a.Sync(ctx)
		case "export":
			cmdErr = a.Export(ctx, arg)
		case "import":
			cmdErr = a.Import(ctx, arg)
		case "reset":
			cmdErr = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
