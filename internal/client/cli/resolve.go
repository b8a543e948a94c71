package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/melitton/internal/client/state"
)

// resolveID accepts a full id or an unambiguous prefix of one.
func resolveID(kind, want string, ids []string) (string, error) {
	var matches []string
	for _, id := range ids {
		if id == want {
			return id, nil
		}
		if strings.HasPrefix(id, want) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, want, state.ErrUnknownID)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, want, len(matches))
	}
}

func (a *App) resolveBoxID(want string) (string, error) {
	if b, ok := a.store.Box(want); ok {
		return b.ID, nil
	}
	snap := a.store.Snapshot()
	ids := make([]string, 0, len(snap.Boxes))
	for _, b := range snap.Boxes {
		ids = append(ids, b.ID)
	}
	return resolveID("box", want, ids)
}

func (a *App) resolveBaitID(want string) (string, error) {
	if b, ok := a.store.Bait(want); ok {
		return b.ID, nil
	}
	snap := a.store.Snapshot()
	ids := make([]string, 0, len(snap.Baits))
	for _, b := range snap.Baits {
		ids = append(ids, b.ID)
	}
	return resolveID("bait", want, ids)
}
