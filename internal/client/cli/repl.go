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

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type execIface interface {
	SetUser(ctx context.Context, args []string) error
	Online(ctx context.Context) error
	AddOfficer(ctx context.Context) error
	AddOwner(ctx context.Context) error
	AddIncident(ctx context.Context) error
	List(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	History(ctx context.Context, args []string) error
}

const helpText = "Available commands: user [name], online, addofficer, addowner, addincident, (l)ist, sync, status, history [n], exit"

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop ends on EOF, "exit" or "quit". promptFn returns the prompt to
// print before each line; an empty prompt is not printed.
//
// Handler errors are ignored here. Handlers print their own messages.
func runREPL(ctx context.Context, a execIface, promptFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		if p := promptFn(); p != "" {
			printlnFn(p)
		}

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)
		case "user":
			_ = a.SetUser(ctx, args)
		case "online":
			_ = a.Online(ctx)
		case "addofficer":
			_ = a.AddOfficer(ctx)
		case "addowner":
			_ = a.AddOwner(ctx)
		case "addincident":
			_ = a.AddIncident(ctx)
		case "l", "list":
			_ = a.List(ctx)
		case "sync":
			_ = a.Sync(ctx)
		case "status":
			_ = a.Status(ctx)
		case "history":
			_ = a.History(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
