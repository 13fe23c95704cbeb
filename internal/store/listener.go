package store

// ChangeKind names the operation that produced a new state.
type ChangeKind string

const (
	ChangeConnectionAdded   ChangeKind = "connection.added"
	ChangeConnectionUpdated ChangeKind = "connection.updated"
	ChangeConnectionRemoved ChangeKind = "connection.removed"
	ChangeAddressAdded      ChangeKind = "address.added"
	ChangeAddressRemoved    ChangeKind = "address.removed"
	ChangePhotoAdded        ChangeKind = "photo.added"
	ChangePhotoRemoved      ChangeKind = "photo.removed"
	ChangeScheduleAdded     ChangeKind = "schedule.added"
	ChangeScheduleUpdated   ChangeKind = "schedule.updated"
	ChangeScheduleRemoved   ChangeKind = "schedule.removed"
	ChangeSortToggled       ChangeKind = "ui.sort_toggled"
	ChangeSearchTerm        ChangeKind = "ui.search_term"
	ChangeFilterType        ChangeKind = "ui.filter_type"
	ChangeFilterStatus      ChangeKind = "ui.filter_status"
	ChangeViewMode          ChangeKind = "ui.view_mode"
	ChangeLogin             ChangeKind = "auth.login"
	ChangeLogout            ChangeKind = "auth.logout"
)

// IsData reports whether the change touched connections or addresses, as
// opposed to UI or session state.  Persistence listeners use it to skip
// saves that would write identical data.
func (k ChangeKind) IsData() bool {
	switch k {
	case ChangeSortToggled, ChangeSearchTerm, ChangeFilterType, ChangeFilterStatus,
		ChangeViewMode, ChangeLogin, ChangeLogout:
		return false
	}
	return true
}

// Change describes a single committed mutation.  ID is the id of the entity
// that changed; ConnectionID is set for photo and schedule changes and for
// connection changes themselves.
type Change struct {
	Kind         ChangeKind `json:"kind"`
	ID           string     `json:"id,omitempty"`
	ConnectionID string     `json:"connectionId,omitempty"`
}

// StateListener observes committed store changes.  StateChanged receives the
// change and a private copy of the resulting snapshot.  Listeners are called
// one at a time in commit order and must not mutate the store synchronously.
type StateListener interface {
	StateChanged(change Change, snap Snapshot)
}

// ListenerFunc adapts a plain function to StateListener.
type ListenerFunc func(change Change, snap Snapshot)

func (f ListenerFunc) StateChanged(change Change, snap Snapshot) { f(change, snap) }

type subscription struct {
	id       int
	listener StateListener
}

// Subscribe registers l and returns a function that removes it.  Calling the
// returned function more than once is harmless.
func (s *ConnectionStore) Subscribe(l StateListener) func() {
	s.lmu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, listener: l})
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *ConnectionStore) listeners() []StateListener {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	out := make([]StateListener, len(s.subs))
	for i, sub := range s.subs {
		out[i] = sub.listener
	}
	return out
}
