package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/melitton/internal/models"
)

// Export writes boxes and baits as an indented JSON backup.
func (s *Store) Export(w io.Writer) error {
	s.mu.Lock()
	snap := s.state.Clone()
	s.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(models.Backup{Boxes: snap.Boxes, Baits: snap.Baits})
}

// DecodeBackup parses and validates a backup document.
func DecodeBackup(r io.Reader) (models.Backup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Backup{}, fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return models.Backup{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedImport)
	}

	var b models.Backup
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&b); err != nil {
		return models.Backup{}, fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}
	if b.Boxes == nil {
		b.Boxes = []models.Box{}
	}
	if b.Baits == nil {
		b.Baits = []models.Bait{}
	}

	ids := make(map[string]bool)
	for i := range b.Boxes {
		box := &b.Boxes[i]
		if err := checkImported(box.ID, ids, box.Validate); err != nil {
			return models.Backup{}, fmt.Errorf("box %d: %w", i, err)
		}
		box.InstallDate = models.NormalizeDate(box.InstallDate)
		box.SyncState = importedSyncState(box.ID, box.SyncState)
		if box.ManagementHistory == nil {
			box.ManagementHistory = []models.ManagementLog{}
		}
		for k := range box.ManagementHistory {
			l := &box.ManagementHistory[k]
			if err := checkImported(l.ID, ids, l.Validate); err != nil {
				return models.Backup{}, fmt.Errorf("box %d log %d: %w", i, k, err)
			}
			l.Date = models.NormalizeDate(l.Date)
			l.SyncState = importedSyncState(l.ID, l.SyncState)
		}
		models.SortLogs(box.ManagementHistory)
	}
	for i := range b.Baits {
		bait := &b.Baits[i]
		if err := checkImported(bait.ID, ids, bait.Validate); err != nil {
			return models.Backup{}, fmt.Errorf("bait %d: %w", i, err)
		}
		bait.SyncState = importedSyncState(bait.ID, bait.SyncState)
	}
	return b, nil
}

func checkImported(id string, seen map[string]bool, validate func() error) error {
	if id == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedImport)
	}
	if seen[id] {
		return fmt.Errorf("%w: duplicate id %q", ErrMalformedImport, id)
	}
	seen[id] = true
	if err := validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}
	return nil
}

// importedSyncState fills in the tag for backups written without one.
func importedSyncState(id string, st models.SyncState) models.SyncState {
	switch {
	case st == models.SyncPending || st == models.SyncConfirmed:
		return st
	case models.IsLocalID(id):
		return models.SyncPending
	default:
		return models.SyncConfirmed
	}
}

// Import replaces the whole local state with the backup read from r. On
// any error the current state is left untouched.
func (s *Store) Import(ctx context.Context, r io.Reader) (models.Backup, error) {
	b, err := DecodeBackup(r)
	if err != nil {
		return models.Backup{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := models.State{Boxes: b.Boxes, Baits: b.Baits}.Clone()
	if err := s.local.SaveState(ctx, next); err != nil {
		return models.Backup{}, fmt.Errorf("save local state: %w", err)
	}
	s.state = next
	s.aliases = make(map[string]string)
	s.rejected = make(map[string]uint64)
	s.gen++
	// A listing already in flight must not drop what was just imported.
	for _, box := range next.Boxes {
		s.touchLocked(box.ID)
	}
	for _, bait := range next.Baits {
		s.touchLocked(bait.ID)
	}
	return b, nil
}
