package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// getStatus renders the prompt suffix: the signed-in display name, with a
// marker when the stored credential has expired.
func (a *App) getStatus() string {
	u := a.session.User(context.Background())
	if u == nil {
		return "(anonymous)"
	}
	if a.session.IsExpired() {
		return fmt.Sprintf("(%s, session expired)", u.DisplayName)
	}
	return fmt.Sprintf("(%s)", u.DisplayName)
}

// Root starts the interactive loop and blocks until the user exits.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to Threadly CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
