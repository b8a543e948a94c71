package state

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NewBait_Defaults(t *testing.T) {
	s := newTestStore(t, newFakeRemote(), &memPersister{})

	b := s.NewBait()
	assert.Equal(t, "2026-05-10", b.InstallDate)
	assert.Equal(t, models.BaitEmpty, b.Status.State)
	assert.Equal(t, "2026-05-10", b.Status.LastInspection)
	assert.Equal(t, "2026-05-25", b.NextInspectionDate)
}

func TestStore_NewBait_UsesConfiguredInterval(t *testing.T) {
	settings := models.DefaultSettings()
	settings.InspectionFrequencyDays = 30
	s := newTestStore(t, newFakeRemote(), &memPersister{settings: &settings})

	assert.Equal(t, "2026-06-09", s.NewBait().NextInspectionDate)
}

func TestStore_CreateBait(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := newTestStore(t, remote, &memPersister{})

	res, err := s.CreateBait(ctx, sampleBait("Isca 1"))
	require.NoError(t, err)
	assert.True(t, res.Synced())
	assert.Equal(t, models.SyncConfirmed, res.Record.SyncState)
	require.Len(t, s.Snapshot().Baits, 1)

	bad := sampleBait("Isca 2")
	bad.Status.State = "quebrada"
	_, err = s.CreateBait(ctx, bad)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 1, remote.callCount("CreateBait"))
}

func TestStore_MarkBaitInspected_AdvancesDates(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	settings := models.DefaultSettings()
	settings.InspectionFrequencyDays = 7
	s := newTestStore(t, remote, &memPersister{settings: &settings})

	bait := sampleBait("Isca")
	bait.Status.State = models.BaitOccupied
	created, err := s.CreateBait(ctx, bait)
	require.NoError(t, err)

	res, err := s.MarkBaitInspected(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.True(t, res.Synced())
	assert.Equal(t, "2026-05-10", res.Record.Status.LastInspection)
	assert.Equal(t, "2026-05-17", res.Record.NextInspectionDate)
	assert.Equal(t, models.BaitOccupied, res.Record.Status.State)
	assert.Equal(t, "2026-05-17", remote.baits[0].NextInspectionDate)
}

func TestStore_MarkBaitInspected_Unknown(t *testing.T) {
	s := newTestStore(t, newFakeRemote(), &memPersister{})

	_, err := s.MarkBaitInspected(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownID)
}

func TestStore_UpdateBait_Offline(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := newTestStore(t, remote, &memPersister{})

	created, err := s.CreateBait(ctx, sampleBait("Isca"))
	require.NoError(t, err)

	remote.setOffline(true)
	edit := created.Record
	edit.Status.State = models.BaitCollected
	res, err := s.UpdateBait(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, models.SyncPending, res.Record.SyncState)

	got, _ := s.Bait(created.Record.ID)
	assert.Equal(t, models.BaitCollected, got.Status.State)
}

func TestStore_DeleteBait_Offline_Tombstoned(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	s := newTestStore(t, remote, &memPersister{})

	created, err := s.CreateBait(ctx, sampleBait("Isca"))
	require.NoError(t, err)

	remote.setOffline(true)
	res, err := s.DeleteBait(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, client.ErrUnavailable)
	assert.Empty(t, s.Snapshot().Baits)

	remote.setOffline(false)
	list, err := s.ListBaits(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Record)

	rep, err := s.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Pushed: 1}, rep)
	assert.Empty(t, remote.baits)
}
