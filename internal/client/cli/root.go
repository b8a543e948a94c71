package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := a.store.Settings().UserName
	if m := a.Mode(); m != "" {
		if s != "" {
			s += " "
		}
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root greets the user, probes connectivity once so the first prompt shows
// the right mode, and runs the REPL until exit.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Melitton CLI (type 'help' for commands)")
	a.checkOnline(ctx)
	if n := a.store.Pending(); n > 0 {
		fmt.Fprintf(a.out, "%d change(s) waiting to be synchronized\n", n)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
