package store

import (
	"github.com/iliyamo/connection-monitor/internal/model"
)

// AddConnection appends a new connection with a fresh id and empty photo
// and schedule lists.  A zero LastCheck is stamped with the store clock.
// No validation is performed; the form layer owns that.
func (s *ConnectionStore) AddConnection(in model.ConnectionInput) model.Connection {
	var created model.Connection
	s.commit(func(st *state) (Change, bool) {
		created = model.Connection{
			ID: s.uniqueID(func(id string) bool {
				return indexConnection(st.connections, id) >= 0
			}),
			ClientName:     in.ClientName,
			Address:        in.Address,
			Office:         in.Office,
			ConnectionType: in.ConnectionType,
			Status:         in.Status,
			Speed:          in.Speed,
			Price:          in.Price,
			Contact:        in.Contact,
			LastCheck:      in.LastCheck,
			Notes:          in.Notes,
			Photos:         []model.Photo{},
			Schedules:      []model.Schedule{},
		}
		if created.LastCheck.IsZero() {
			created.LastCheck = s.now()
		}
		st.connections = append(st.connections, created)
		return Change{Kind: ChangeConnectionAdded, ID: created.ID, ConnectionID: created.ID}, true
	})
	return created.Clone()
}

// UpdateConnection merges p into the connection with the given id.  It
// reports false and changes nothing when the id is unknown.
func (s *ConnectionStore) UpdateConnection(id string, p model.ConnectionPatch) bool {
	return s.commit(func(st *state) (Change, bool) {
		i := indexConnection(st.connections, id)
		if i < 0 {
			return Change{}, false
		}
		st.connections[i] = p.Apply(st.connections[i])
		return Change{Kind: ChangeConnectionUpdated, ID: id, ConnectionID: id}, true
	})
}

// RemoveConnection deletes the connection together with its photos and
// schedules.  Removing an unknown id is a no-op.
func (s *ConnectionStore) RemoveConnection(id string) bool {
	return s.commit(func(st *state) (Change, bool) {
		i := indexConnection(st.connections, id)
		if i < 0 {
			return Change{}, false
		}
		st.connections = append(st.connections[:i:i], st.connections[i+1:]...)
		return Change{Kind: ChangeConnectionRemoved, ID: id, ConnectionID: id}, true
	})
}

// AddAddress appends a new address with a fresh id.
func (s *ConnectionStore) AddAddress(in model.AddressInput) model.Address {
	var created model.Address
	s.commit(func(st *state) (Change, bool) {
		created = model.Address{
			ID: s.uniqueID(func(id string) bool {
				return indexAddress(st.addresses, id) >= 0
			}),
			Street:   in.Street,
			Building: in.Building,
		}
		st.addresses = append(st.addresses, created)
		return Change{Kind: ChangeAddressAdded, ID: created.ID}, true
	})
	return created
}

// RemoveAddress deletes an address.  Connections that copied its label keep
// their text unchanged.
func (s *ConnectionStore) RemoveAddress(id string) bool {
	return s.commit(func(st *state) (Change, bool) {
		i := indexAddress(st.addresses, id)
		if i < 0 {
			return Change{}, false
		}
		st.addresses = append(st.addresses[:i:i], st.addresses[i+1:]...)
		return Change{Kind: ChangeAddressRemoved, ID: id}, true
	})
}

// ToggleSortByAddress flips the sort flag.  The collection itself is never
// reordered; Visible applies the order at read time.
func (s *ConnectionStore) ToggleSortByAddress() {
	s.commit(func(st *state) (Change, bool) {
		st.ui.SortByAddress = !st.ui.SortByAddress
		return Change{Kind: ChangeSortToggled}, true
	})
}

func (s *ConnectionStore) SetSearchTerm(term string) {
	s.commit(func(st *state) (Change, bool) {
		st.ui.SearchTerm = term
		return Change{Kind: ChangeSearchTerm}, true
	})
}

func (s *ConnectionStore) SetFilterType(t model.ConnectionType) {
	s.commit(func(st *state) (Change, bool) {
		st.ui.FilterType = t
		return Change{Kind: ChangeFilterType}, true
	})
}

func (s *ConnectionStore) SetFilterStatus(status model.Status) {
	s.commit(func(st *state) (Change, bool) {
		st.ui.FilterStatus = status
		return Change{Kind: ChangeFilterStatus}, true
	})
}

func (s *ConnectionStore) SetViewMode(mode ViewMode) {
	s.commit(func(st *state) (Change, bool) {
		st.ui.ViewMode = mode
		return Change{Kind: ChangeViewMode}, true
	})
}

// AddPhoto appends a photo to the connection's list.  It reports false when
// the connection does not exist.
func (s *ConnectionStore) AddPhoto(connectionID string, in model.PhotoInput) (model.Photo, bool) {
	var created model.Photo
	ok := s.commit(func(st *state) (Change, bool) {
		i := indexConnection(st.connections, connectionID)
		if i < 0 {
			return Change{}, false
		}
		conn := &st.connections[i]
		created = model.Photo{
			ID: s.uniqueID(func(id string) bool {
				return indexPhoto(conn.Photos, id) >= 0
			}),
			URL:          in.URL,
			Caption:      in.Caption,
			ConnectionID: connectionID,
			CreatedAt:    s.now(),
		}
		conn.Photos = append(conn.Photos, created)
		return Change{Kind: ChangePhotoAdded, ID: created.ID, ConnectionID: connectionID}, true
	})
	return created, ok
}

// RemovePhoto deletes a photo from its connection; unknown ids are ignored.
func (s *ConnectionStore) RemovePhoto(connectionID, photoID string) bool {
	return s.commit(func(st *state) (Change, bool) {
		i := indexConnection(st.connections, connectionID)
		if i < 0 {
			return Change{}, false
		}
		conn := &st.connections[i]
		j := indexPhoto(conn.Photos, photoID)
		if j < 0 {
			return Change{}, false
		}
		conn.Photos = append(conn.Photos[:j:j], conn.Photos[j+1:]...)
		return Change{Kind: ChangePhotoRemoved, ID: photoID, ConnectionID: connectionID}, true
	})
}

// AddSchedule appends a service visit to the connection's list.
func (s *ConnectionStore) AddSchedule(connectionID string, in model.ScheduleInput) (model.Schedule, bool) {
	var created model.Schedule
	ok := s.commit(func(st *state) (Change, bool) {
		i := indexConnection(st.connections, connectionID)
		if i < 0 {
			return Change{}, false
		}
		conn := &st.connections[i]
		created = model.Schedule{
			ID: s.uniqueID(func(id string) bool {
				return indexSchedule(conn.Schedules, id) >= 0
			}),
			ConnectionID: connectionID,
			Title:        in.Title,
			Description:  in.Description,
			Date:         in.Date,
			Type:         in.Type,
			Status:       in.Status,
		}
		conn.Schedules = append(conn.Schedules, created)
		return Change{Kind: ChangeScheduleAdded, ID: created.ID, ConnectionID: connectionID}, true
	})
	return created, ok
}

// UpdateSchedule merges p into a schedule of the given connection.
func (s *ConnectionStore) UpdateSchedule(connectionID, scheduleID string, p model.SchedulePatch) bool {
	return s.commit(func(st *state) (Change, bool) {
		i := indexConnection(st.connections, connectionID)
		if i < 0 {
			return Change{}, false
		}
		conn := &st.connections[i]
		j := indexSchedule(conn.Schedules, scheduleID)
		if j < 0 {
			return Change{}, false
		}
		conn.Schedules[j] = p.Apply(conn.Schedules[j])
		return Change{Kind: ChangeScheduleUpdated, ID: scheduleID, ConnectionID: connectionID}, true
	})
}

// RemoveSchedule deletes a schedule from its connection.
func (s *ConnectionStore) RemoveSchedule(connectionID, scheduleID string) bool {
	return s.commit(func(st *state) (Change, bool) {
		i := indexConnection(st.connections, connectionID)
		if i < 0 {
			return Change{}, false
		}
		conn := &st.connections[i]
		j := indexSchedule(conn.Schedules, scheduleID)
		if j < 0 {
			return Change{}, false
		}
		conn.Schedules = append(conn.Schedules[:j:j], conn.Schedules[j+1:]...)
		return Change{Kind: ChangeScheduleRemoved, ID: scheduleID, ConnectionID: connectionID}, true
	})
}

func indexConnection(list []model.Connection, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexAddress(list []model.Address, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexPhoto(list []model.Photo, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexSchedule(list []model.Schedule, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
