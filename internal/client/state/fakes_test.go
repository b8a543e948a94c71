package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/stretchr/testify/require"
)

var errOffline = fmt.Errorf("%w: dial tcp: connection refused", client.ErrUnavailable)

// fakeRemote is an in-memory server. When offline is set every call fails
// with errOffline. before, if set, runs at the start of each call with the
// operation name; tests use it to mutate the store mid-request.
type fakeRemote struct {
	mu      sync.Mutex
	offline bool
	fail    map[string]error
	before  func(op string)
	seq     int
	boxes   []models.Box
	baits   []models.Bait
	calls   []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{fail: map[string]error{}}
}

func (f *fakeRemote) enter(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	hook := f.before
	offline := f.offline
	err := f.fail[op]
	f.mu.Unlock()

	if hook != nil {
		hook(op)
	}
	if offline {
		return errOffline
	}
	return err
}

// onceBefore runs fn the first time op is called.
func (f *fakeRemote) onceBefore(op string, fn func()) {
	var fired atomic.Bool
	f.mu.Lock()
	defer f.mu.Unlock()
	f.before = func(got string) {
		if got == op && fired.CompareAndSwap(false, true) {
			fn()
		}
	}
}

func (f *fakeRemote) setFail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeRemote) setOffline(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = v
}

func (f *fakeRemote) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeRemote) nextID() string {
	f.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", f.seq)
}

// ListBoxes snapshots the collection before running the hook, so a hook
// models changes made while the response is on its way back.
func (f *fakeRemote) ListBoxes(ctx context.Context) ([]models.Box, error) {
	f.mu.Lock()
	out := make([]models.Box, 0, len(f.boxes))
	for _, b := range f.boxes {
		out = append(out, b.Clone())
	}
	f.mu.Unlock()

	if err := f.enter("ListBoxes"); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeRemote) CreateBox(ctx context.Context, box models.Box) (models.Box, error) {
	if err := f.enter("CreateBox"); err != nil {
		return models.Box{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	box = box.Clone()
	box.ID = f.nextID()
	box.SyncState = ""
	box.ManagementHistory = []models.ManagementLog{}
	f.boxes = append([]models.Box{box}, f.boxes...)
	return box.Clone(), nil
}

func (f *fakeRemote) UpdateBox(ctx context.Context, box models.Box) (models.Box, error) {
	if err := f.enter("UpdateBox"); err != nil {
		return models.Box{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.boxes, func(b models.Box) bool { return b.ID == box.ID })
	if i < 0 {
		return models.Box{}, client.ErrNotFound
	}
	box = box.Clone()
	box.SyncState = ""
	box.ManagementHistory = f.boxes[i].ManagementHistory
	f.boxes[i] = box
	return box.Clone(), nil
}

func (f *fakeRemote) DeleteBox(ctx context.Context, id string) error {
	if err := f.enter("DeleteBox"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boxes = slices.DeleteFunc(f.boxes, func(b models.Box) bool { return b.ID == id })
	return nil
}

func (f *fakeRemote) AddLog(ctx context.Context, boxID string, log models.ManagementLog) (models.ManagementLog, error) {
	if err := f.enter("AddLog"); err != nil {
		return models.ManagementLog{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.boxes, func(b models.Box) bool { return b.ID == boxID })
	if i < 0 {
		return models.ManagementLog{}, client.ErrNotFound
	}
	log.ID = f.nextID()
	log.SyncState = ""
	f.boxes[i].ManagementHistory = append([]models.ManagementLog{log}, f.boxes[i].ManagementHistory...)
	models.SortLogs(f.boxes[i].ManagementHistory)
	return log, nil
}

func (f *fakeRemote) ListBaits(ctx context.Context) ([]models.Bait, error) {
	f.mu.Lock()
	out := make([]models.Bait, 0, len(f.baits))
	for _, b := range f.baits {
		out = append(out, b.Clone())
	}
	f.mu.Unlock()

	if err := f.enter("ListBaits"); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeRemote) CreateBait(ctx context.Context, bait models.Bait) (models.Bait, error) {
	if err := f.enter("CreateBait"); err != nil {
		return models.Bait{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	bait = bait.Clone()
	bait.ID = f.nextID()
	bait.SyncState = ""
	f.baits = append([]models.Bait{bait}, f.baits...)
	return bait.Clone(), nil
}

func (f *fakeRemote) UpdateBait(ctx context.Context, bait models.Bait) (models.Bait, error) {
	if err := f.enter("UpdateBait"); err != nil {
		return models.Bait{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.baits, func(b models.Bait) bool { return b.ID == bait.ID })
	if i < 0 {
		return models.Bait{}, client.ErrNotFound
	}
	bait = bait.Clone()
	bait.SyncState = ""
	f.baits[i] = bait
	return bait.Clone(), nil
}

func (f *fakeRemote) DeleteBait(ctx context.Context, id string) error {
	if err := f.enter("DeleteBait"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baits = slices.DeleteFunc(f.baits, func(b models.Bait) bool { return b.ID == id })
	return nil
}

// memPersister keeps the last saved state in memory.
type memPersister struct {
	mu       sync.Mutex
	state    models.State
	settings *models.Settings
	saves    int
	saveErr  error
}

func (m *memPersister) LoadState(ctx context.Context) (models.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

func (m *memPersister) SaveState(ctx context.Context, st models.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.state = st.Clone()
	return nil
}

func (m *memPersister) LoadSettings(ctx context.Context) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return models.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *memPersister) SaveSettings(ctx context.Context, st models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = &st
	return nil
}

func (m *memPersister) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = models.State{}
	m.settings = nil
	return nil
}

func (m *memPersister) saved() models.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

var errDisk = errors.New("disk full")

// fixedNow is 2026-05-10 at noon local time.
func fixedNow() time.Time {
	return time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local)
}

func newTestStore(t *testing.T, remote *fakeRemote, local *memPersister) *Store {
	t.Helper()
	s, err := New(context.Background(), remote, local, WithClock(fixedNow))
	require.NoError(t, err)
	return s
}

func sampleBox(name string) models.Box {
	return models.Box{
		Name:              name,
		Species:           models.SpeciesJatai,
		BoxType:           "INPA",
		InstallDate:       "2026-01-10",
		Origin:            models.OriginCapture,
		Location:          models.Location{Description: "Quintal"},
		Status:            models.BoxActive,
		ManagementHistory: []models.ManagementLog{},
	}
}

func sampleBait(name string) models.Bait {
	return models.Bait{
		Name:               name,
		Type:               "Garrafa PET",
		Attractant:         "Cerume",
		InstallDate:        "2026-03-01",
		TargetSpecies:      models.SpeciesMandacaia,
		Status:             models.BaitStatus{State: models.BaitEmpty, LastInspection: "2026-03-01"},
		NextInspectionDate: "2026-03-16",
	}
}

func boxIDs(boxes []models.Box) []string {
	ids := make([]string, 0, len(boxes))
	for _, b := range boxes {
		ids = append(ids, b.ID)
	}
	return ids
}
