package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/citizenportal/internal/client/gate"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Cancel(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Status(ctx context.Context, appID string) error
	Eligibility(ctx context.Context, scheme string) error
	Download(ctx context.Context, kind string) error
	Lang(ctx context.Context, code string) error
	State(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit" and
// dispatches them to a. Handler errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("portal %s> ", statusFn()))
		line, readErr := reader.ReadString('\n')
		if line == "" && readErr != nil {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, profile, status <id>, eligibility <scheme>, download <doc>, login, logout, lang <en|te|hi>, state, exit")
			} else {
				printlnFn("Available commands: login, cancel, lang <en|te|hi>, state, exit")
				printlnFn("After login: whoami, profile, status <id>, eligibility <scheme>, download <doc>")
			}

		case "login":
			err = a.Login(ctx)

		case "cancel":
			err = a.Cancel(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "profile":
			err = a.Profile(ctx)

		case "status":
			if len(args) == 0 {
				printlnFn("Usage: status <application-id>")
				continue
			}
			err = a.Status(ctx, args[0])

		case "eligibility":
			if len(args) == 0 {
				printlnFn("Usage: eligibility <scheme>")
				continue
			}
			err = a.Eligibility(ctx, args[0])

		case "download":
			if len(args) == 0 {
				printlnFn("Usage: download <document>")
				continue
			}
			err = a.Download(ctx, args[0])

		case "lang":
			code := ""
			if len(args) > 0 {
				code = args[0]
			}
			err = a.Lang(ctx, code)

		case "state":
			err = a.State(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		report(err)
		if readErr != nil {
			return
		}
	}
}

// report prints a handler error. Gate denials were already announced.
func report(err error) {
	if err == nil || errors.Is(err, gate.ErrLoginRequired) {
		return
	}
	printlnFn("Error:", err)
}
