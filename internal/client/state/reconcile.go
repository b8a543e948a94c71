package state

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/models"
)

const DefaultReconcileInterval = 5 * time.Minute

// Jobs carry the revision they were read at and the state generation, so a
// result that arrives after the record or the whole state changed is not
// applied over it.
type boxJob struct {
	box models.Box
	rev uint64
	gen uint64
}

type logJob struct {
	boxID string
	log   models.ManagementLog
	rev   uint64
	gen   uint64
}

type baitJob struct {
	bait models.Bait
	rev  uint64
	gen  uint64
}

// Reconcile pushes every pending change to the server: deletes first, then
// boxes, their logs and finally baits. Records that fail stay pending. A
// record the server rejected is not resent until it is edited again. The
// error is non-nil only when the local copy could not be saved.
func (s *Store) Reconcile(ctx context.Context) (ReconcileReport, error) {
	s.sweep.Lock()
	defer s.sweep.Unlock()

	var rep ReconcileReport
	steps := []func(context.Context, *ReconcileReport) error{
		s.pushDeletes,
		s.pushBoxes,
		s.pushLogs,
		s.pushBaits,
	}
	for _, step := range steps {
		if ctx.Err() != nil {
			break
		}
		if err := step(ctx, &rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func (s *Store) pushDeletes(ctx context.Context, rep *ReconcileReport) error {
	s.mu.Lock()
	boxes := slices.Clone(s.state.PendingDeletes.Boxes)
	baits := slices.Clone(s.state.PendingDeletes.Baits)
	s.mu.Unlock()

	var done []string
	for _, id := range boxes {
		if err := s.remote.DeleteBox(ctx, id); err != nil && !errors.Is(err, client.ErrNotFound) {
			s.logger.Debug(ctx, "box delete still failing", "id", id, "err", err)
			rep.Failed++
			continue
		}
		done = append(done, id)
		rep.Pushed++
	}
	var doneBaits []string
	for _, id := range baits {
		if err := s.remote.DeleteBait(ctx, id); err != nil && !errors.Is(err, client.ErrNotFound) {
			s.logger.Debug(ctx, "bait delete still failing", "id", id, "err", err)
			rep.Failed++
			continue
		}
		doneBaits = append(doneBaits, id)
		rep.Pushed++
	}
	if len(done) == 0 && len(doneBaits) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PendingDeletes.Boxes = slices.DeleteFunc(s.state.PendingDeletes.Boxes, func(id string) bool {
		return slices.Contains(done, id)
	})
	s.state.PendingDeletes.Baits = slices.DeleteFunc(s.state.PendingDeletes.Baits, func(id string) bool {
		return slices.Contains(doneBaits, id)
	})
	return s.persistLocked(ctx)
}

func (s *Store) pushBoxes(ctx context.Context, rep *ReconcileReport) error {
	s.mu.Lock()
	var jobs []boxJob
	for _, b := range s.state.Boxes {
		if b.SyncState != models.SyncPending {
			continue
		}
		if s.heldLocked(b.ID) {
			rep.Failed++
			continue
		}
		jobs = append(jobs, boxJob{box: b.Clone(), rev: s.rev[b.ID], gen: s.gen})
	}
	s.mu.Unlock()

	for _, j := range jobs {
		if ctx.Err() != nil {
			return nil
		}
		var err error
		if models.IsLocalID(j.box.ID) {
			err = s.pushNewBox(ctx, j, rep)
		} else {
			err = s.pushBoxUpdate(ctx, j, rep)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pushFailed counts a push that did not go through. A rejected payload is
// parked at the revision that was sent.
func (s *Store) pushFailed(ctx context.Context, what, id string, rev uint64, err error, rep *ReconcileReport) {
	rep.Failed++
	if !errors.Is(err, client.ErrRejected) {
		s.logger.Debug(ctx, what+" still failing", "id", id, "err", err)
		return
	}
	s.logger.Warn(ctx, what+" rejected by server, holding it until edited", "id", id, "err", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rev[id] == rev {
		s.rejected[id] = rev
	}
}

func (s *Store) pushNewBox(ctx context.Context, j boxJob, rep *ReconcileReport) error {
	created, rerr := s.remote.CreateBox(ctx, j.box)
	if rerr != nil {
		s.pushFailed(ctx, "box create", j.box.ID, j.rev, rerr, rep)
		return nil
	}
	rep.Pushed++

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != j.gen {
		// Reset or Import replaced the state meanwhile; the server copy is
		// left alone.
		s.logger.Info(ctx, "local state replaced during box create", "id", created.ID)
		return nil
	}

	next := s.state.Clone()
	i := s.boxIndexLocked(j.box.ID)
	if i < 0 {
		// Deleted locally while the create was in flight.
		next.PendingDeletes.Boxes = append(next.PendingDeletes.Boxes, created.ID)
		return s.commitLocked(ctx, next)
	}

	cur := next.Boxes[i]
	box := created.Clone()
	box.SyncState = models.SyncConfirmed
	if s.rev[cur.ID] != j.rev {
		// Edited meanwhile: take the server id but keep the newer fields.
		box = cur.Clone()
		box.ID = created.ID
		box.SyncState = models.SyncPending
	}
	box.ManagementHistory = cur.ManagementHistory
	next.Boxes[i] = box
	if err := s.commitLocked(ctx, next); err != nil {
		return err
	}

	s.aliases[cur.ID] = created.ID
	delete(s.rev, cur.ID)
	delete(s.rejected, cur.ID)
	s.touchLocked(created.ID)
	s.logger.Info(ctx, "box synchronized", "local_id", cur.ID, "id", created.ID)
	return nil
}

func (s *Store) pushBoxUpdate(ctx context.Context, j boxJob, rep *ReconcileReport) error {
	updated, rerr := s.remote.UpdateBox(ctx, j.box)
	if errors.Is(rerr, client.ErrNotFound) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.boxIndexLocked(j.box.ID); i >= 0 && s.gen == j.gen {
			s.state.Boxes = slices.Delete(s.state.Boxes, i, i+1)
			s.touchLocked(j.box.ID)
			rep.Dropped++
			s.logger.Info(ctx, "box gone on server, dropped", "id", j.box.ID)
			return s.persistLocked(ctx)
		}
		return nil
	}
	if rerr != nil {
		s.pushFailed(ctx, "box update", j.box.ID, j.rev, rerr, rep)
		return nil
	}
	rep.Pushed++

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.boxIndexLocked(j.box.ID)
	if i < 0 || s.gen != j.gen || s.rev[j.box.ID] != j.rev {
		return nil
	}
	updated.ManagementHistory = s.state.Boxes[i].ManagementHistory
	updated.SyncState = models.SyncConfirmed
	s.state.Boxes[i] = updated.Clone()
	s.touchLocked(j.box.ID)
	return s.persistLocked(ctx)
}

// pushLogs sends pending logs of boxes the server already knows.
func (s *Store) pushLogs(ctx context.Context, rep *ReconcileReport) error {
	s.mu.Lock()
	var jobs []logJob
	for _, b := range s.state.Boxes {
		if models.IsLocalID(b.ID) {
			continue
		}
		for _, l := range b.ManagementHistory {
			if l.SyncState != models.SyncPending {
				continue
			}
			if s.heldLocked(l.ID) {
				rep.Failed++
				continue
			}
			jobs = append(jobs, logJob{boxID: b.ID, log: l, rev: s.rev[l.ID], gen: s.gen})
		}
	}
	s.mu.Unlock()

	for _, j := range jobs {
		if ctx.Err() != nil {
			return nil
		}
		created, rerr := s.remote.AddLog(ctx, j.boxID, j.log)
		if rerr != nil {
			s.pushFailed(ctx, "log create", j.log.ID, j.rev, rerr, rep)
			continue
		}
		rep.Pushed++

		if err := s.confirmLog(ctx, j, created); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) confirmLog(ctx context.Context, j logJob, created models.ManagementLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.boxIndexLocked(j.boxID)
	if i < 0 || s.gen != j.gen {
		return nil
	}
	next := s.state.Clone()
	history := next.Boxes[i].ManagementHistory
	k := slices.IndexFunc(history, func(l models.ManagementLog) bool { return l.ID == j.log.ID })
	if k < 0 {
		return nil
	}
	created.SyncState = models.SyncConfirmed
	history[k] = created
	models.SortLogs(history)
	if err := s.commitLocked(ctx, next); err != nil {
		return err
	}
	s.aliases[j.log.ID] = created.ID
	delete(s.rejected, j.log.ID)
	// A listing already in flight must not drop the confirmed log.
	s.touchLocked(created.ID)
	return nil
}

func (s *Store) pushBaits(ctx context.Context, rep *ReconcileReport) error {
	s.mu.Lock()
	var jobs []baitJob
	for _, b := range s.state.Baits {
		if b.SyncState != models.SyncPending {
			continue
		}
		if s.heldLocked(b.ID) {
			rep.Failed++
			continue
		}
		jobs = append(jobs, baitJob{bait: b.Clone(), rev: s.rev[b.ID], gen: s.gen})
	}
	s.mu.Unlock()

	for _, j := range jobs {
		if ctx.Err() != nil {
			return nil
		}
		var err error
		if models.IsLocalID(j.bait.ID) {
			err = s.pushNewBait(ctx, j, rep)
		} else {
			err = s.pushBaitUpdate(ctx, j, rep)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) pushNewBait(ctx context.Context, j baitJob, rep *ReconcileReport) error {
	created, rerr := s.remote.CreateBait(ctx, j.bait)
	if rerr != nil {
		s.pushFailed(ctx, "bait create", j.bait.ID, j.rev, rerr, rep)
		return nil
	}
	rep.Pushed++

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != j.gen {
		s.logger.Info(ctx, "local state replaced during bait create", "id", created.ID)
		return nil
	}

	next := s.state.Clone()
	i := s.baitIndexLocked(j.bait.ID)
	if i < 0 {
		next.PendingDeletes.Baits = append(next.PendingDeletes.Baits, created.ID)
		return s.commitLocked(ctx, next)
	}

	cur := next.Baits[i]
	bait := created.Clone()
	bait.SyncState = models.SyncConfirmed
	if s.rev[cur.ID] != j.rev {
		bait = cur.Clone()
		bait.ID = created.ID
		bait.SyncState = models.SyncPending
	}
	next.Baits[i] = bait
	if err := s.commitLocked(ctx, next); err != nil {
		return err
	}

	s.aliases[cur.ID] = created.ID
	delete(s.rev, cur.ID)
	delete(s.rejected, cur.ID)
	s.touchLocked(created.ID)
	s.logger.Info(ctx, "bait synchronized", "local_id", cur.ID, "id", created.ID)
	return nil
}

func (s *Store) pushBaitUpdate(ctx context.Context, j baitJob, rep *ReconcileReport) error {
	updated, rerr := s.remote.UpdateBait(ctx, j.bait)
	if errors.Is(rerr, client.ErrNotFound) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.baitIndexLocked(j.bait.ID); i >= 0 && s.gen == j.gen {
			s.state.Baits = slices.Delete(s.state.Baits, i, i+1)
			s.touchLocked(j.bait.ID)
			rep.Dropped++
			s.logger.Info(ctx, "bait gone on server, dropped", "id", j.bait.ID)
			return s.persistLocked(ctx)
		}
		return nil
	}
	if rerr != nil {
		s.pushFailed(ctx, "bait update", j.bait.ID, j.rev, rerr, rep)
		return nil
	}
	rep.Pushed++

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.baitIndexLocked(j.bait.ID)
	if i < 0 || s.gen != j.gen || s.rev[j.bait.ID] != j.rev {
		return nil
	}
	updated.SyncState = models.SyncConfirmed
	s.state.Baits[i] = updated.Clone()
	s.touchLocked(j.bait.ID)
	return s.persistLocked(ctx)
}

// Run reconciles once immediately and then every interval until ctx ends.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}

	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Store) runOnce(ctx context.Context) {
	rep, err := s.Reconcile(ctx)
	switch {
	case err != nil:
		s.logger.Error(ctx, "reconcile failed", "err", err)
	case rep.Failed > 0:
		s.logger.Warn(ctx, "reconcile incomplete", "pushed", rep.Pushed, "failed", rep.Failed, "dropped", rep.Dropped)
	case !rep.Empty():
		s.logger.Info(ctx, "reconcile done", "pushed", rep.Pushed, "dropped", rep.Dropped)
	}
}
