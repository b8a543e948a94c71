package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/models"
)

// NewBox returns the form defaults for a new box.
func (s *Store) NewBox() models.Box {
	return models.Box{
		Species:           models.SpeciesJatai,
		Origin:            models.OriginCapture,
		Status:            models.BoxActive,
		InstallDate:       s.today(),
		ManagementHistory: []models.ManagementLog{},
	}
}

// ListBoxes fetches boxes from the server and merges them with local
// changes. When the server is unreachable the cached list is returned.
func (s *Store) ListBoxes(ctx context.Context) (Result[[]models.Box], error) {
	s.mu.Lock()
	start := s.seq
	s.mu.Unlock()

	remote, rerr := s.remote.ListBoxes(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if rerr != nil {
		s.logger.Warn(ctx, "box list failed, using local copy", "err", rerr)
		return Result[[]models.Box]{Record: s.cloneBoxesLocked(), Source: SourceLocal, Err: rerr}, nil
	}

	s.state.Boxes = s.mergeBoxesLocked(remote, start)
	if err := s.persistLocked(ctx); err != nil {
		return Result[[]models.Box]{}, err
	}
	return Result[[]models.Box]{Record: s.cloneBoxesLocked(), Source: SourceRemote}, nil
}

func (s *Store) cloneBoxesLocked() []models.Box {
	out := make([]models.Box, 0, len(s.state.Boxes))
	for _, b := range s.state.Boxes {
		out = append(out, b.Clone())
	}
	return out
}

// CreateBox validates box and stores it on the server, or locally under a
// placeholder id when the server cannot be reached or refuses it.
func (s *Store) CreateBox(ctx context.Context, box models.Box) (Result[models.Box], error) {
	if err := box.Validate(); err != nil {
		return Result[models.Box]{}, err
	}
	box = box.Clone()

	created, rerr := s.remote.CreateBox(ctx, box)

	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result[models.Box]{Source: SourceRemote}
	if rerr == nil {
		created.SyncState = models.SyncConfirmed
		// The server starts every box with an empty history; logs typed
		// into the form still have to be pushed.
		created.ManagementHistory = pendingLogs(box.ManagementHistory, s.now())
		res.Record = created
	} else {
		s.logger.Warn(ctx, "box create failed, keeping it locally", "err", rerr)
		box.ID = models.NewLocalID(s.now())
		box.SyncState = models.SyncPending
		box.ManagementHistory = pendingLogs(box.ManagementHistory, s.now())
		res.Record, res.Source, res.Err = box, SourceLocal, rerr
	}

	s.state.Boxes = slices.Insert(s.state.Boxes, 0, res.Record.Clone())
	s.touchLocked(res.Record.ID)
	s.markRejectedLocked(res.Record.ID, rerr)
	if err := s.persistLocked(ctx); err != nil {
		return Result[models.Box]{}, err
	}
	return res, nil
}

// pendingLogs tags logs as unsynchronized, giving placeholder ids to those
// without one.
func pendingLogs(logs []models.ManagementLog, now time.Time) []models.ManagementLog {
	out := make([]models.ManagementLog, 0, len(logs))
	for _, l := range logs {
		if l.ID == "" || !models.IsLocalID(l.ID) {
			l.ID = models.NewLocalID(now)
		}
		l.Date = models.NormalizeDate(l.Date)
		l.SyncState = models.SyncPending
		out = append(out, l)
	}
	models.SortLogs(out)
	return out
}

// UpdateBox replaces the editable fields of a box. The cached management
// history is kept; logs are only added through AddLog.
func (s *Store) UpdateBox(ctx context.Context, box models.Box) (Result[models.Box], error) {
	if err := box.Validate(); err != nil {
		return Result[models.Box]{}, err
	}

	s.mu.Lock()
	box.ID = s.resolveLocked(box.ID)
	i := s.boxIndexLocked(box.ID)
	if i < 0 {
		s.mu.Unlock()
		return Result[models.Box]{}, fmt.Errorf("box %q: %w", box.ID, ErrUnknownID)
	}
	box = box.Clone()
	box.ManagementHistory = slices.Clone(s.state.Boxes[i].ManagementHistory)
	s.mu.Unlock()

	if models.IsLocalID(box.ID) {
		return s.storeBoxLocally(ctx, box, ErrNotSynced)
	}

	updated, rerr := s.remote.UpdateBox(ctx, box)
	if rerr != nil {
		s.logger.Warn(ctx, "box update failed, keeping it locally", "id", box.ID, "err", rerr)
		return s.storeBoxLocally(ctx, box, rerr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i = s.boxIndexLocked(box.ID)
	if i < 0 {
		// Deleted while the request was in flight.
		return Result[models.Box]{Record: updated, Source: SourceRemote}, nil
	}
	updated.ManagementHistory = s.state.Boxes[i].ManagementHistory
	updated.SyncState = models.SyncConfirmed
	s.state.Boxes[i] = updated.Clone()
	s.touchLocked(box.ID)
	if err := s.persistLocked(ctx); err != nil {
		return Result[models.Box]{}, err
	}
	return Result[models.Box]{Record: updated.Clone(), Source: SourceRemote}, nil
}

func (s *Store) storeBoxLocally(ctx context.Context, box models.Box, cause error) (Result[models.Box], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	box.ID = s.resolveLocked(box.ID)
	i := s.boxIndexLocked(box.ID)
	if i < 0 {
		return Result[models.Box]{}, fmt.Errorf("box %q: %w", box.ID, ErrUnknownID)
	}
	box.ManagementHistory = s.state.Boxes[i].ManagementHistory
	box.SyncState = models.SyncPending
	s.state.Boxes[i] = box.Clone()
	s.touchLocked(box.ID)
	s.markRejectedLocked(box.ID, cause)
	if err := s.persistLocked(ctx); err != nil {
		return Result[models.Box]{}, err
	}
	return Result[models.Box]{Record: box.Clone(), Source: SourceLocal, Err: cause}, nil
}

// DeleteBox removes a box locally and, when possible, on the server. A
// failed remote delete is remembered and retried by Reconcile.
func (s *Store) DeleteBox(ctx context.Context, id string) (Result[string], error) {
	s.mu.Lock()
	id = s.resolveLocked(id)
	s.mu.Unlock()

	var rerr error
	if !models.IsLocalID(id) {
		rerr = s.remote.DeleteBox(ctx, id)
		if errors.Is(rerr, client.ErrNotFound) {
			rerr = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.boxIndexLocked(id); i >= 0 {
		s.state.Boxes = slices.Delete(s.state.Boxes, i, i+1)
	}
	s.touchLocked(id)

	res := Result[string]{Record: id, Source: SourceRemote}
	switch {
	case models.IsLocalID(id):
		res.Source = SourceLocal
	case rerr != nil:
		s.logger.Warn(ctx, "box delete failed, will retry", "id", id, "err", rerr)
		if !slices.Contains(s.state.PendingDeletes.Boxes, id) {
			s.state.PendingDeletes.Boxes = append(s.state.PendingDeletes.Boxes, id)
		}
		res.Source, res.Err = SourceLocal, rerr
	}
	if err := s.persistLocked(ctx); err != nil {
		return Result[string]{}, err
	}
	return res, nil
}

// NewLog returns the form defaults for a management log.
func (s *Store) NewLog() models.ManagementLog {
	return models.ManagementLog{Date: s.today(), Type: models.LogInspection}
}

// AddLog appends a management event to a box. The box history stays sorted
// newest first.
func (s *Store) AddLog(ctx context.Context, boxID string, log models.ManagementLog) (Result[models.ManagementLog], error) {
	if err := log.Validate(); err != nil {
		return Result[models.ManagementLog]{}, err
	}
	log.Date = models.NormalizeDate(log.Date)

	s.mu.Lock()
	boxID = s.resolveLocked(boxID)
	if s.boxIndexLocked(boxID) < 0 {
		s.mu.Unlock()
		return Result[models.ManagementLog]{}, fmt.Errorf("box %q: %w", boxID, ErrUnknownID)
	}
	s.mu.Unlock()

	res := Result[models.ManagementLog]{Source: SourceRemote}
	if models.IsLocalID(boxID) {
		res.Err = ErrNotSynced
	} else {
		created, rerr := s.remote.AddLog(ctx, boxID, log)
		if rerr != nil {
			s.logger.Warn(ctx, "log create failed, keeping it locally", "box", boxID, "err", rerr)
			res.Err = rerr
		} else {
			created.SyncState = models.SyncConfirmed
			res.Record = created
		}
	}
	if res.Err != nil {
		log.ID = models.NewLocalID(s.now())
		log.SyncState = models.SyncPending
		res.Record, res.Source = log, SourceLocal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.boxIndexLocked(s.resolveLocked(boxID))
	if i < 0 {
		// Deleted meanwhile; the server drops the log with the box.
		return res, nil
	}
	box := &s.state.Boxes[i]
	box.ManagementHistory = slices.Insert(box.ManagementHistory, 0, res.Record)
	models.SortLogs(box.ManagementHistory)
	s.touchLocked(res.Record.ID)
	s.markRejectedLocked(res.Record.ID, res.Err)
	if err := s.persistLocked(ctx); err != nil {
		return Result[models.ManagementLog]{}, err
	}
	return res, nil
}
