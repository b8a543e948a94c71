package state

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/models"
)

// NewBait returns the form defaults for a new bait. The first inspection is
// due one inspection interval after today.
func (s *Store) NewBait() models.Bait {
	now := s.now()
	return models.Bait{
		TargetSpecies:      models.SpeciesJatai,
		InstallDate:        models.FormatDate(now),
		Status:             models.BaitStatus{State: models.BaitEmpty, LastInspection: models.FormatDate(now)},
		NextInspectionDate: models.AddDays(now, s.Settings().InspectionFrequencyDays),
	}
}

func (s *Store) ListBaits(ctx context.Context) (Result[[]models.Bait], error) {
	s.mu.Lock()
	start := s.seq
	s.mu.Unlock()

	remote, rerr := s.remote.ListBaits(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if rerr != nil {
		s.logger.Warn(ctx, "bait list failed, using local copy", "err", rerr)
		return Result[[]models.Bait]{Record: s.cloneBaitsLocked(), Source: SourceLocal, Err: rerr}, nil
	}

	s.state.Baits = s.mergeBaitsLocked(remote, start)
	if err := s.persistLocked(ctx); err != nil {
		return Result[[]models.Bait]{}, err
	}
	return Result[[]models.Bait]{Record: s.cloneBaitsLocked(), Source: SourceRemote}, nil
}

func (s *Store) cloneBaitsLocked() []models.Bait {
	out := make([]models.Bait, 0, len(s.state.Baits))
	for _, b := range s.state.Baits {
		out = append(out, b.Clone())
	}
	return out
}

func (s *Store) CreateBait(ctx context.Context, bait models.Bait) (Result[models.Bait], error) {
	if err := bait.Validate(); err != nil {
		return Result[models.Bait]{}, err
	}
	bait = bait.Clone()

	created, rerr := s.remote.CreateBait(ctx, bait)

	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result[models.Bait]{Record: created, Source: SourceRemote}
	if rerr == nil {
		res.Record.SyncState = models.SyncConfirmed
	} else {
		s.logger.Warn(ctx, "bait create failed, keeping it locally", "err", rerr)
		bait.ID = models.NewLocalID(s.now())
		bait.SyncState = models.SyncPending
		res.Record, res.Source, res.Err = bait, SourceLocal, rerr
	}

	s.state.Baits = slices.Insert(s.state.Baits, 0, res.Record.Clone())
	s.touchLocked(res.Record.ID)
	s.markRejectedLocked(res.Record.ID, rerr)
	if err := s.persistLocked(ctx); err != nil {
		return Result[models.Bait]{}, err
	}
	return res, nil
}

func (s *Store) UpdateBait(ctx context.Context, bait models.Bait) (Result[models.Bait], error) {
	if err := bait.Validate(); err != nil {
		return Result[models.Bait]{}, err
	}

	s.mu.Lock()
	bait.ID = s.resolveLocked(bait.ID)
	known := s.baitIndexLocked(bait.ID) >= 0
	s.mu.Unlock()
	if !known {
		return Result[models.Bait]{}, fmt.Errorf("bait %q: %w", bait.ID, ErrUnknownID)
	}
	bait = bait.Clone()

	if models.IsLocalID(bait.ID) {
		return s.storeBaitLocally(ctx, bait, ErrNotSynced)
	}

	updated, rerr := s.remote.UpdateBait(ctx, bait)
	if rerr != nil {
		s.logger.Warn(ctx, "bait update failed, keeping it locally", "id", bait.ID, "err", rerr)
		return s.storeBaitLocally(ctx, bait, rerr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated.SyncState = models.SyncConfirmed
	if i := s.baitIndexLocked(bait.ID); i >= 0 {
		s.state.Baits[i] = updated.Clone()
		s.touchLocked(bait.ID)
		if err := s.persistLocked(ctx); err != nil {
			return Result[models.Bait]{}, err
		}
	}
	return Result[models.Bait]{Record: updated, Source: SourceRemote}, nil
}

func (s *Store) storeBaitLocally(ctx context.Context, bait models.Bait, cause error) (Result[models.Bait], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bait.ID = s.resolveLocked(bait.ID)
	i := s.baitIndexLocked(bait.ID)
	if i < 0 {
		return Result[models.Bait]{}, fmt.Errorf("bait %q: %w", bait.ID, ErrUnknownID)
	}
	bait.SyncState = models.SyncPending
	s.state.Baits[i] = bait.Clone()
	s.touchLocked(bait.ID)
	s.markRejectedLocked(bait.ID, cause)
	if err := s.persistLocked(ctx); err != nil {
		return Result[models.Bait]{}, err
	}
	return Result[models.Bait]{Record: bait, Source: SourceLocal, Err: cause}, nil
}

// MarkBaitInspected records an inspection today and schedules the next one
// one inspection interval ahead. The occupancy state is left as it was.
func (s *Store) MarkBaitInspected(ctx context.Context, id string) (Result[models.Bait], error) {
	bait, ok := s.Bait(id)
	if !ok {
		return Result[models.Bait]{}, fmt.Errorf("bait %q: %w", id, ErrUnknownID)
	}
	now := s.now()
	bait.Status.LastInspection = models.FormatDate(now)
	bait.NextInspectionDate = models.AddDays(now, s.Settings().InspectionFrequencyDays)
	return s.UpdateBait(ctx, bait)
}

func (s *Store) DeleteBait(ctx context.Context, id string) (Result[string], error) {
	s.mu.Lock()
	id = s.resolveLocked(id)
	s.mu.Unlock()

	var rerr error
	if !models.IsLocalID(id) {
		rerr = s.remote.DeleteBait(ctx, id)
		if errors.Is(rerr, client.ErrNotFound) {
			rerr = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.baitIndexLocked(id); i >= 0 {
		s.state.Baits = slices.Delete(s.state.Baits, i, i+1)
	}
	s.touchLocked(id)

	res := Result[string]{Record: id, Source: SourceRemote}
	switch {
	case models.IsLocalID(id):
		res.Source = SourceLocal
	case rerr != nil:
		s.logger.Warn(ctx, "bait delete failed, will retry", "id", id, "err", rerr)
		if !slices.Contains(s.state.PendingDeletes.Baits, id) {
			s.state.PendingDeletes.Baits = append(s.state.PendingDeletes.Baits, id)
		}
		res.Source, res.Err = SourceLocal, rerr
	}
	if err := s.persistLocked(ctx); err != nil {
		return Result[string]{}, err
	}
	return res, nil
}
