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
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Feed(ctx context.Context) error
	Trending(ctx context.Context) error
	ShowPost(ctx context.Context) error
	NewPost(ctx context.Context) error
	EditPost(ctx context.Context) error
	DeletePost(ctx context.Context) error
	LikePost(ctx context.Context) error
	VotePost(ctx context.Context) error
	NewComment(ctx context.Context) error
	VoteComment(ctx context.Context) error
	ShowUser(ctx context.Context) error
	Leaderboard(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Threadly CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - feed | trending — browse posts
//	  - show           — show a post and its comments (interactive ID prompt)
//	  - user           — show a user's profile
//	  - top            — show the leaderboard
//	  - exit | quit    — leave the program
//
//	Logged in, additionally:
//	  - whoami         — show the signed-in profile
//	  - post           — create a post
//	  - edit           — edit a post
//	  - delete         — delete a post
//	  - like           — toggle a like on a post
//	  - vote           — vote on a post
//	  - comment        — comment on a post
//	  - cvote          — vote on a comment
//	  - logout         — log out
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("threadly %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: feed, trending, show, post, edit, delete, like, vote, comment, cvote, user, top, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, feed, trending, show, user, top, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Profile(ctx)

		case "f", "feed":
			_ = a.Feed(ctx)

		case "trending":
			_ = a.Trending(ctx)

		case "show":
			_ = a.ShowPost(ctx)

		case "post":
			_ = a.NewPost(ctx)

		case "edit":
			_ = a.EditPost(ctx)

		case "delete":
			_ = a.DeletePost(ctx)

		case "like":
			_ = a.LikePost(ctx)

		case "vote":
			_ = a.VotePost(ctx)

		case "comment":
			_ = a.NewComment(ctx)

		case "cvote":
			_ = a.VoteComment(ctx)

		case "user":
			_ = a.ShowUser(ctx)

		case "top":
			_ = a.Leaderboard(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
