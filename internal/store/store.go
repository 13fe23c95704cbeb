// Package store holds the in-memory state of the connection monitor: the
// connection and address collections, the table UI state and the signed-in
// user.  It is the single source of truth for every consumer; handlers read
// copies of it and change it only through its methods.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/connection-monitor/internal/model"
)

// ViewMode selects how consumers lay out the connection list.
type ViewMode string

const (
	ViewTable ViewMode = "table"
	ViewCards ViewMode = "cards"
)

// UIState is the scalar state shared by the table consumers.  Empty
// FilterType / FilterStatus mean "no filter".
type UIState struct {
	SearchTerm    string               `json:"searchTerm"`
	FilterType    model.ConnectionType `json:"filterType"`
	FilterStatus  model.Status         `json:"filterStatus"`
	SortByAddress bool                 `json:"sortByAddress"`
	ViewMode      ViewMode             `json:"viewMode"`
}

// Snapshot is a point-in-time deep copy of the whole store.
type Snapshot struct {
	Connections []model.Connection `json:"connections"`
	Addresses   []model.Address    `json:"addresses"`
	UI          UIState            `json:"ui"`
	User        *model.User        `json:"user,omitempty"`
}

// Dataset returns the persistable part of the snapshot.
func (s Snapshot) Dataset() model.Dataset {
	return model.Dataset{Connections: s.Connections, Addresses: s.Addresses}
}

type state struct {
	connections []model.Connection
	addresses   []model.Address
	ui          UIState
	user        *model.User
}

func (st state) clone() state {
	out := state{
		connections: make([]model.Connection, len(st.connections)),
		addresses:   append(make([]model.Address, 0, len(st.addresses)), st.addresses...),
		ui:          st.ui,
	}
	for i, c := range st.connections {
		out.connections[i] = c.Clone()
	}
	if st.user != nil {
		u := *st.user
		out.user = &u
	}
	return out
}

func (st state) snapshot() Snapshot {
	c := st.clone()
	return Snapshot{Connections: c.connections, Addresses: c.addresses, UI: c.ui, User: c.user}
}

// ConnectionStore is the observable state container.  It is safe for
// concurrent use: every mutation replaces the current state atomically under
// a write lock, reads take a read lock and return copies.
type ConnectionStore struct {
	mu    sync.RWMutex
	state state

	// notifyMu keeps listener delivery in commit order without holding mu.
	notifyMu sync.Mutex
	lmu      sync.Mutex
	subs     []subscription
	nextSub  int

	newID func() string
	now   func() time.Time
	auth  Authenticator
}

// Option configures a ConnectionStore.
type Option func(*ConnectionStore)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *ConnectionStore) { s.newID = fn }
}

// WithClock replaces time.Now for LastCheck defaults and photo timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *ConnectionStore) { s.now = fn }
}

// WithAuthenticator installs the collaborator used by Login and Logout.
func WithAuthenticator(a Authenticator) Option {
	return func(s *ConnectionStore) { s.auth = a }
}

// New builds a store seeded with a copy of seed.  Records whose id repeats an
// earlier record in the same collection are dropped so that ids stay unique.
func New(seed model.Dataset, opts ...Option) *ConnectionStore {
	s := &ConnectionStore{
		newID: uuid.NewString,
		now:   time.Now,
		state: state{ui: UIState{ViewMode: ViewTable}},
	}
	for _, opt := range opts {
		opt(s)
	}

	seenConn := make(map[string]bool, len(seed.Connections))
	for _, c := range seed.Connections {
		if seenConn[c.ID] {
			continue
		}
		seenConn[c.ID] = true
		c = c.Clone()
		c.Photos = uniquePhotos(c.Photos)
		c.Schedules = uniqueSchedules(c.Schedules)
		s.state.connections = append(s.state.connections, c)
	}
	seenAddr := make(map[string]bool, len(seed.Addresses))
	for _, a := range seed.Addresses {
		if seenAddr[a.ID] {
			continue
		}
		seenAddr[a.ID] = true
		s.state.addresses = append(s.state.addresses, a)
	}
	return s
}

func uniquePhotos(in []model.Photo) []model.Photo {
	out := make([]model.Photo, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

func uniqueSchedules(in []model.Schedule) []model.Schedule {
	out := make([]model.Schedule, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, sc := range in {
		if !seen[sc.ID] {
			seen[sc.ID] = true
			out = append(out, sc)
		}
	}
	return out
}

// commit runs fn on a private copy of the state.  When fn reports a change
// the copy becomes the current state and listeners are notified; otherwise
// the store is left untouched.
func (s *ConnectionStore) commit(fn func(st *state) (Change, bool)) bool {
	s.mu.Lock()
	next := s.state.clone()
	change, ok := fn(&next)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.state = next

	ls := s.listeners()
	if len(ls) == 0 {
		s.mu.Unlock()
		return true
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, l := range ls {
		l.StateChanged(change, next.snapshot())
	}
	return true
}

// uniqueID draws ids until one is not taken.  With the default UUID generator
// the loop runs once; it matters for injected generators.
func (s *ConnectionStore) uniqueID(taken func(string) bool) string {
	for {
		id := s.newID()
		if id != "" && !taken(id) {
			return id
		}
	}
}

// Snapshot returns a deep copy of the current state.
func (s *ConnectionStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.snapshot()
}

// Dataset returns a copy of the persistable collections.
func (s *ConnectionStore) Dataset() model.Dataset {
	return s.Snapshot().Dataset()
}

// Connections returns every connection in insertion order.
func (s *ConnectionStore) Connections() []model.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Connection, len(s.state.connections))
	for i, c := range s.state.connections {
		out[i] = c.Clone()
	}
	return out
}

// Connection looks a connection up by id.
func (s *ConnectionStore) Connection(id string) (model.Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexConnection(s.state.connections, id); i >= 0 {
		return s.state.connections[i].Clone(), true
	}
	return model.Connection{}, false
}

// Addresses returns every address in insertion order.
func (s *ConnectionStore) Addresses() []model.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Address(nil), s.state.addresses...)
}

// UIState returns the current table state.
func (s *ConnectionStore) UIState() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ui
}

// CurrentUser returns the signed-in profile, if any.
func (s *ConnectionStore) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.user == nil {
		return model.User{}, false
	}
	return *s.state.user, true
}

// Visible is the derived table view: the connections filtered and sorted by
// the current UI state.  It is computed on every call.
func (s *ConnectionStore) Visible() []model.Connection {
	s.mu.RLock()
	crit := s.state.ui.Criteria()
	conns := make([]model.Connection, len(s.state.connections))
	for i, c := range s.state.connections {
		conns[i] = c.Clone()
	}
	s.mu.RUnlock()
	return Filter(conns, crit)
}
