package state

import (
	"slices"

	"github.com/dmitrijs2005/melitton/internal/models"
)

// changedSince reports whether id was mutated after sequence number start.
func (s *Store) changedSince(id string, start uint64) bool {
	return s.rev[id] > start
}

// mergeBoxesLocked combines a fresh server listing with the local copy.
// Server order is kept; records that exist only locally go first so new
// work stays on top. start is the sequence number observed before the
// listing was requested.
func (s *Store) mergeBoxesLocked(remote []models.Box, start uint64) []models.Box {
	local := make(map[string]models.Box, len(s.state.Boxes))
	for _, b := range s.state.Boxes {
		local[b.ID] = b
	}

	fresh := func(l models.ManagementLog) bool { return s.changedSince(l.ID, start) }

	seen := make(map[string]bool, len(remote))
	merged := make([]models.Box, 0, len(remote)+len(s.state.Boxes))
	for _, rb := range remote {
		if slices.Contains(s.state.PendingDeletes.Boxes, rb.ID) {
			continue
		}
		// Deleted locally while the listing was in flight.
		if _, ok := local[rb.ID]; !ok && s.changedSince(rb.ID, start) {
			continue
		}
		seen[rb.ID] = true

		lb, ok := local[rb.ID]
		// Pending, or written after the listing was requested: the local
		// copy is newer than what the server sent.
		if ok && (lb.SyncState == models.SyncPending || s.changedSince(rb.ID, start)) {
			lb = lb.Clone()
			lb.ManagementHistory = mergeLogs(rb.ManagementHistory, lb.ManagementHistory, fresh)
			merged = append(merged, lb)
			continue
		}

		rb = rb.Clone()
		rb.SyncState = models.SyncConfirmed
		var cached []models.ManagementLog
		if ok {
			cached = lb.ManagementHistory
		}
		rb.ManagementHistory = mergeLogs(rb.ManagementHistory, cached, fresh)
		merged = append(merged, rb)
	}

	var localOnly []models.Box
	for _, lb := range s.state.Boxes {
		if seen[lb.ID] {
			continue
		}
		if models.IsLocalID(lb.ID) || s.changedSince(lb.ID, start) {
			localOnly = append(localOnly, lb.Clone())
		}
	}
	return append(localOnly, merged...)
}

// mergeLogs returns the server logs plus the cached logs missing from them
// that are still pending or for which keep returns true, newest first.
func mergeLogs(remote, cached []models.ManagementLog, keep func(models.ManagementLog) bool) []models.ManagementLog {
	out := make([]models.ManagementLog, 0, len(remote)+len(cached))
	ids := make(map[string]bool, len(remote))
	for _, l := range remote {
		l.SyncState = models.SyncConfirmed
		ids[l.ID] = true
		out = append(out, l)
	}
	for _, l := range cached {
		if ids[l.ID] {
			continue
		}
		if l.SyncState == models.SyncPending || (keep != nil && keep(l)) {
			out = append(out, l)
		}
	}
	models.SortLogs(out)
	return out
}

func (s *Store) mergeBaitsLocked(remote []models.Bait, start uint64) []models.Bait {
	local := make(map[string]models.Bait, len(s.state.Baits))
	for _, b := range s.state.Baits {
		local[b.ID] = b
	}

	seen := make(map[string]bool, len(remote))
	merged := make([]models.Bait, 0, len(remote)+len(s.state.Baits))
	for _, rb := range remote {
		if slices.Contains(s.state.PendingDeletes.Baits, rb.ID) {
			continue
		}
		if _, ok := local[rb.ID]; !ok && s.changedSince(rb.ID, start) {
			continue
		}
		seen[rb.ID] = true

		if lb, ok := local[rb.ID]; ok && (lb.SyncState == models.SyncPending || s.changedSince(rb.ID, start)) {
			merged = append(merged, lb.Clone())
			continue
		}
		rb = rb.Clone()
		rb.SyncState = models.SyncConfirmed
		merged = append(merged, rb)
	}

	var localOnly []models.Bait
	for _, lb := range s.state.Baits {
		if seen[lb.ID] {
			continue
		}
		if models.IsLocalID(lb.ID) || s.changedSince(lb.ID, start) {
			localOnly = append(localOnly, lb.Clone())
		}
	}
	return append(localOnly, merged...)
}
