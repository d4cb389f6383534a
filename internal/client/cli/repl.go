package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

const prompt = "tb> "

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	helpText() string

	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	Navigate(ctx context.Context, target string) error
	Show(ctx context.Context) error

	AddTask(ctx context.Context) error
	EditTask(ctx context.Context, ref string) error
	FinishTask(ctx context.Context, ref string) error
	ArchiveTask(ctx context.Context, ref string) error

	MarkRead(ctx context.Context, ref string) error
	MarkAllRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, ref string) error
	EnableNotifications(ctx context.Context) error

	RenameUser(ctx context.Context, ref string) error
	DeleteUser(ctx context.Context, ref string) error
	FilterAudit(ctx context.Context, action string) error
	ExportAudit(ctx context.Context, action string) error

	ChangeUsername(ctx context.Context) error
	ChangePassword(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit", or
// until ctx is cancelled. The first token is the command, the rest its
// argument. Command errors are printed and the loop continues.
//
// Commands read their own prompts from the same reader, so input typed
// ahead is never lost between the loop and a command.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(statusFn() + prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], strings.Join(parts[1:], " ")

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, arg); err != nil {
			printlnFn("error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd, arg string) error {
	switch cmd {
	case "help":
		printlnFn(a.helpText())
		return nil
	case "signup", "register":
		return a.SignUp(ctx)
	case "signin", "login":
		return a.SignIn(ctx)
	}

	if !a.isLoggedIn() {
		printlnFn("Unknown command:", cmd, "(type 'help')")
		return nil
	}

	switch cmd {
	case "signout", "logout":
		return a.SignOut(ctx)
	case "go", "cd":
		return a.Navigate(ctx, arg)
	case "active", "finished", "archived", "notifications", "users", "audit", "settings", "home", "dashboard", "admin":
		return a.Navigate(ctx, cmd)
	case "l", "ls", "list", "show":
		return a.Show(ctx)
	case "add", "new":
		return a.AddTask(ctx)
	case "edit":
		return a.EditTask(ctx, arg)
	case "finish", "done":
		return a.FinishTask(ctx, arg)
	case "archive":
		return a.ArchiveTask(ctx, arg)
	case "read":
		return a.MarkRead(ctx, arg)
	case "readall":
		return a.MarkAllRead(ctx)
	case "rm", "delete":
		return a.DeleteNotification(ctx, arg)
	case "notify":
		return a.EnableNotifications(ctx)
	case "rename":
		return a.RenameUser(ctx, arg)
	case "deluser":
		return a.DeleteUser(ctx, arg)
	case "filter":
		return a.FilterAudit(ctx, arg)
	case "export":
		return a.ExportAudit(ctx, arg)
	case "username":
		return a.ChangeUsername(ctx)
	case "password":
		return a.ChangePassword(ctx)
	}

	printlnFn("Unknown command:", cmd, "(type 'help')")
	return nil
}
