package local

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadState_EmptyOnFirstRun(t *testing.T) {
	s := openMemory(t)

	st, err := s.LoadState(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, st.Boxes)
	assert.NotNil(t, st.Baits)
	assert.Empty(t, st.Boxes)
}

func TestLoadSettings_DefaultsOnFirstRun(t *testing.T) {
	s := openMemory(t)

	st, err := s.LoadSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), st)
}

func TestStateRoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	in := models.State{
		Boxes: []models.Box{{
			ID: "local-1-aaaa", Name: "Caixa", SyncState: models.SyncPending,
			ManagementHistory: []models.ManagementLog{{ID: "l1", Date: "2026-01-02", Type: models.LogInspection}},
		}},
		Baits:          []models.Bait{{ID: "b1", Name: "Isca", SyncState: models.SyncConfirmed}},
		PendingDeletes: models.Tombstones{Boxes: []string{"dead"}},
	}
	require.NoError(t, s.SaveState(ctx, in))

	out, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSettingsPartialDocumentKeepsDefaults(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.kv.Set(ctx, SettingsKey, []byte(`{"userName":"Ana"}`)))

	st, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", st.UserName)
	assert.Equal(t, models.DefaultInspectionFrequencyDays, st.InspectionFrequencyDays)
}

func TestLoadState_CorruptDocument(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.kv.Set(ctx, StateKey, []byte(`{"boxes": 12}`)))

	_, err := s.LoadState(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode "+StateKey)
}

func TestClear(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.SaveState(ctx, models.State{Boxes: []models.Box{{ID: "x"}}}))
	require.NoError(t, s.SaveSettings(ctx, models.Settings{UserName: "Z", InspectionFrequencyDays: 3, Theme: models.ThemeDark}))

	require.NoError(t, s.Clear(ctx))

	st, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Boxes)

	set, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), set)
}

func TestOpen_FileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "melitton.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSettings(ctx, models.Settings{UserName: "Rui", InspectionFrequencyDays: 7, Theme: models.ThemeDark}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, got.InspectionFrequencyDays)
}
