package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/client/config"
	"github.com/dmitrijs2005/melitton/internal/client/local"
	"github.com/dmitrijs2005/melitton/internal/client/state"
	"github.com/dmitrijs2005/melitton/internal/logging"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC) }

// stubServer is an in-memory persistence service that can be switched off.
type stubServer struct {
	mu      sync.Mutex
	offline bool
	seq     int
	boxes   []models.Box
	baits   []models.Bait
}

func (s *stubServer) setOffline(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = v
}

func (s *stubServer) check() error {
	if s.offline {
		return fmt.Errorf("%w: connection refused", client.ErrUnavailable)
	}
	return nil
}

func (s *stubServer) nextID() string {
	s.seq++
	return fmt.Sprintf("srv-%04d", s.seq)
}

func (s *stubServer) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check()
}

func (s *stubServer) ListBoxes(context.Context) ([]models.Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	out := make([]models.Box, 0, len(s.boxes))
	for _, b := range s.boxes {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (s *stubServer) CreateBox(_ context.Context, box models.Box) (models.Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return models.Box{}, err
	}
	box = box.Clone()
	box.ID = s.nextID()
	box.SyncState = ""
	box.ManagementHistory = []models.ManagementLog{}
	s.boxes = append([]models.Box{box}, s.boxes...)
	return box.Clone(), nil
}

func (s *stubServer) UpdateBox(_ context.Context, box models.Box) (models.Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return models.Box{}, err
	}
	i := slices.IndexFunc(s.boxes, func(b models.Box) bool { return b.ID == box.ID })
	if i < 0 {
		return models.Box{}, client.ErrNotFound
	}
	box = box.Clone()
	box.ManagementHistory = s.boxes[i].ManagementHistory
	s.boxes[i] = box
	return box.Clone(), nil
}

func (s *stubServer) DeleteBox(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	s.boxes = slices.DeleteFunc(s.boxes, func(b models.Box) bool { return b.ID == id })
	return nil
}

func (s *stubServer) AddLog(_ context.Context, boxID string, l models.ManagementLog) (models.ManagementLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return models.ManagementLog{}, err
	}
	i := slices.IndexFunc(s.boxes, func(b models.Box) bool { return b.ID == boxID })
	if i < 0 {
		return models.ManagementLog{}, client.ErrNotFound
	}
	l.ID = s.nextID()
	l.SyncState = ""
	s.boxes[i].ManagementHistory = append([]models.ManagementLog{l}, s.boxes[i].ManagementHistory...)
	return l, nil
}

func (s *stubServer) ListBaits(context.Context) ([]models.Bait, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	return slices.Clone(s.baits), nil
}

func (s *stubServer) CreateBait(_ context.Context, bait models.Bait) (models.Bait, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return models.Bait{}, err
	}
	bait.ID = s.nextID()
	bait.SyncState = ""
	s.baits = append([]models.Bait{bait}, s.baits...)
	return bait, nil
}

func (s *stubServer) UpdateBait(_ context.Context, bait models.Bait) (models.Bait, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return models.Bait{}, err
	}
	i := slices.IndexFunc(s.baits, func(b models.Bait) bool { return b.ID == bait.ID })
	if i < 0 {
		return models.Bait{}, client.ErrNotFound
	}
	s.baits[i] = bait
	return bait, nil
}

func (s *stubServer) DeleteBait(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	s.baits = slices.DeleteFunc(s.baits, func(b models.Bait) bool { return b.ID == id })
	return nil
}

// newTestApp wires an App over srv and an in-memory SQLite mirror. input is
// what the user types.
func newTestApp(t *testing.T, srv *stubServer, input string) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	db, err := local.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st, err := state.New(ctx, srv, db, state.WithClock(fixedNow))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &App{
		config: &config.Config{RequestTimeout: time.Second},
		api:    srv,
		store:  st,
		logger: logging.Discard(),
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    out,
		now:    fixedNow,
	}, out
}

// feed replaces the pending user input.
func (a *App) feed(input string) {
	a.reader = bufio.NewReader(strings.NewReader(input))
}

func lines(answers ...string) string {
	return strings.Join(answers, "\n") + "\n"
}

// boxAnswers fills every box form prompt, keeping defaults except name.
func boxAnswers(name string) string {
	// name, species, type, install date, origin, location, lat, lng,
	// status, observations, photo
	return lines(name, "", "INPA", "", "", "Quintal", "", "", "", "", "")
}
