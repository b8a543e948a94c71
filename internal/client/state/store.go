package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/logging"
	"github.com/dmitrijs2005/melitton/internal/models"
)

// Remote is the persistence service as seen by the store.
type Remote interface {
	ListBoxes(ctx context.Context) ([]models.Box, error)
	CreateBox(ctx context.Context, box models.Box) (models.Box, error)
	UpdateBox(ctx context.Context, box models.Box) (models.Box, error)
	DeleteBox(ctx context.Context, id string) error
	AddLog(ctx context.Context, boxID string, log models.ManagementLog) (models.ManagementLog, error)

	ListBaits(ctx context.Context) ([]models.Bait, error)
	CreateBait(ctx context.Context, bait models.Bait) (models.Bait, error)
	UpdateBait(ctx context.Context, bait models.Bait) (models.Bait, error)
	DeleteBait(ctx context.Context, id string) error
}

// Persister is the durable mirror of the in-memory state.
type Persister interface {
	LoadState(ctx context.Context) (models.State, error)
	SaveState(ctx context.Context, st models.State) error
	LoadSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, st models.Settings) error
	Clear(ctx context.Context) error
}

type Store struct {
	remote Remote
	local  Persister
	logger logging.Logger
	now    func() time.Time

	// sweep serializes reconciliations so a record is never pushed by two
	// sweeps at once.
	sweep sync.Mutex

	mu       sync.Mutex
	state    models.State
	settings models.Settings
	// seq numbers local mutations; rev holds the last one per record id.
	seq uint64
	rev map[string]uint64
	// aliases maps replaced placeholder ids to their server ids.
	aliases map[string]string
	// rejected holds the revision of each record the server refused with a
	// validation error; sweeps skip it until the record changes again.
	rejected map[string]uint64
	// gen changes whenever the whole state is replaced (Reset, Import).
	gen uint64
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New builds a Store seeded from the local persister.
func New(ctx context.Context, remote Remote, local Persister, opts ...Option) (*Store, error) {
	s := &Store{
		remote:   remote,
		local:    local,
		logger:   logging.Discard(),
		now:      time.Now,
		rev:      make(map[string]uint64),
		aliases:  make(map[string]string),
		rejected: make(map[string]uint64),
	}
	for _, o := range opts {
		o(s)
	}

	st, err := local.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load local state: %w", err)
	}
	settings, err := local.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if st.Boxes == nil {
		st.Boxes = []models.Box{}
	}
	if st.Baits == nil {
		st.Baits = []models.Bait{}
	}
	s.state = st
	s.settings = settings
	return s, nil
}

func (s *Store) today() string {
	return models.FormatDate(s.now())
}

// touchLocked records a mutation of id.
func (s *Store) touchLocked(id string) uint64 {
	s.seq++
	s.rev[id] = s.seq
	return s.seq
}

// resolveLocked follows placeholder ids that were replaced by a sweep.
func (s *Store) resolveLocked(id string) string {
	for i := 0; i < 4; i++ {
		next, ok := s.aliases[id]
		if !ok {
			break
		}
		id = next
	}
	return id
}

// markRejectedLocked parks the current revision of id when cause is a
// server validation error.
func (s *Store) markRejectedLocked(id string, cause error) {
	if errors.Is(cause, client.ErrRejected) {
		s.rejected[id] = s.rev[id]
	}
}

// heldLocked reports whether id is parked at its current revision.
func (s *Store) heldLocked(id string) bool {
	r, ok := s.rejected[id]
	if ok && r != s.rev[id] {
		delete(s.rejected, id)
		return false
	}
	return ok
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.local.SaveState(ctx, s.state.Clone()); err != nil {
		return fmt.Errorf("save local state: %w", err)
	}
	return nil
}

// commitLocked saves next and only then makes it the current state, so a
// failed save leaves memory matching the disk.
func (s *Store) commitLocked(ctx context.Context, next models.State) error {
	if err := s.local.SaveState(ctx, next.Clone()); err != nil {
		return fmt.Errorf("save local state: %w", err)
	}
	s.state = next
	return nil
}

func (s *Store) boxIndexLocked(id string) int {
	return slices.IndexFunc(s.state.Boxes, func(b models.Box) bool { return b.ID == id })
}

func (s *Store) baitIndexLocked(id string) int {
	return slices.IndexFunc(s.state.Baits, func(b models.Bait) bool { return b.ID == id })
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Box looks a box up by id, following replaced placeholder ids.
func (s *Store) Box(id string) (models.Box, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.boxIndexLocked(s.resolveLocked(id))
	if i < 0 {
		return models.Box{}, false
	}
	return s.state.Boxes[i].Clone(), true
}

func (s *Store) Bait(id string) (models.Bait, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.baitIndexLocked(s.resolveLocked(id))
	if i < 0 {
		return models.Bait{}, false
	}
	return s.state.Baits[i].Clone(), true
}

// Pending counts records, logs and deletes still waiting for the server.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.state.PendingDeletes.Boxes) + len(s.state.PendingDeletes.Baits)
	for _, b := range s.state.Boxes {
		if b.SyncState == models.SyncPending {
			n++
		}
		for _, l := range b.ManagementHistory {
			if l.SyncState == models.SyncPending {
				n++
			}
		}
	}
	for _, b := range s.state.Baits {
		if b.SyncState == models.SyncPending {
			n++
		}
	}
	return n
}

func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Store) UpdateSettings(ctx context.Context, st models.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.local.SaveSettings(ctx, st); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.settings = st
	return nil
}

// Reset wipes boxes, baits and settings locally. The server is untouched.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.local.Clear(ctx); err != nil {
		return fmt.Errorf("clear local store: %w", err)
	}
	s.state = models.State{Boxes: []models.Box{}, Baits: []models.Bait{}}
	s.settings = models.DefaultSettings()
	s.rev = make(map[string]uint64)
	s.aliases = make(map[string]string)
	s.rejected = make(map[string]uint64)
	s.gen++
	return nil
}
