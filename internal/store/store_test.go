package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/connection-monitor/internal/model"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestStore(seed model.Dataset, opts ...Option) *ConnectionStore {
	n := 0
	base := []Option{
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(seed, append(base, opts...)...)
}

func sampleInput(name, address string) model.ConnectionInput {
	return model.ConnectionInput{
		ClientName:     name,
		Address:        address,
		Office:         "Офіс 1",
		ConnectionType: model.ConnectionFiber,
		Status:         model.StatusActive,
		Speed:          model.Speed100,
		Price:          400,
		Contact:        "+380501234567",
	}
}

func TestAddConnection(t *testing.T) {
	s := newTestStore(model.Dataset{})
	before := len(s.Connections())

	c := s.AddConnection(sampleInput("Іван Петренко", "вул. Шевченка 25"))
	if len(s.Connections()) != before+1 {
		t.Fatalf("expected %d connections, got %d", before+1, len(s.Connections()))
	}
	got, ok := s.Connection(c.ID)
	if !ok {
		t.Fatalf("expected connection %s to be retrievable", c.ID)
	}
	if got.ClientName != "Іван Петренко" {
		t.Fatalf("unexpected client name %q", got.ClientName)
	}
	if got.Photos == nil || len(got.Photos) != 0 || got.Schedules == nil || len(got.Schedules) != 0 {
		t.Fatalf("expected empty owned lists, got photos=%v schedules=%v", got.Photos, got.Schedules)
	}
	if !got.LastCheck.Equal(fixedNow) {
		t.Fatalf("expected lastCheck stamped with clock, got %s", got.LastCheck)
	}
}

func TestAddConnectionKeepsLastCheck(t *testing.T) {
	s := newTestStore(model.Dataset{})
	in := sampleInput("A", "B")
	in.LastCheck = fixedNow.Add(-time.Hour)
	c := s.AddConnection(in)
	if !c.LastCheck.Equal(in.LastCheck) {
		t.Fatalf("expected supplied lastCheck, got %s", c.LastCheck)
	}
}

func TestAddConnectionSkipsTakenIDs(t *testing.T) {
	ids := []string{"1", "1", "", "2"}
	s := New(model.ExampleDataset(fixedNow), WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	c := s.AddConnection(sampleInput("A", "B"))
	if c.ID != "2" {
		t.Fatalf("expected generator to skip taken and empty ids, got %q", c.ID)
	}
}

func TestAddConnectionStoresOutOfRangeValues(t *testing.T) {
	s := newTestStore(model.Dataset{})
	in := sampleInput("", "")
	in.Price = -10
	in.Speed = "7"
	c := s.AddConnection(in)
	got, _ := s.Connection(c.ID)
	if got.Price != -10 || got.Speed != "7" {
		t.Fatalf("expected values stored as given, got price=%v speed=%q", got.Price, got.Speed)
	}
}

func TestUpdateConnectionChangesOnlyPatchedFields(t *testing.T) {
	s := newTestStore(model.Dataset{})
	c := s.AddConnection(sampleInput("Іван", "вул. Шевченка 25"))

	price := 500.0
	if !s.UpdateConnection(c.ID, model.ConnectionPatch{Price: &price}) {
		t.Fatalf("expected update to apply")
	}
	got, _ := s.Connection(c.ID)
	want := c
	want.Price = 500
	if fmt.Sprintf("%+v", got) != fmt.Sprintf("%+v", want) {
		t.Fatalf("unexpected record after update:\n got %+v\nwant %+v", got, want)
	}
}

func TestUpdateConnectionUnknownIDIsNoop(t *testing.T) {
	s := newTestStore(model.ExampleDataset(fixedNow))
	before := s.Snapshot()
	name := "x"
	if s.UpdateConnection("missing", model.ConnectionPatch{ClientName: &name}) {
		t.Fatalf("expected no-op for unknown id")
	}
	if fmt.Sprintf("%+v", s.Snapshot()) != fmt.Sprintf("%+v", before) {
		t.Fatalf("expected state unchanged")
	}
}

func TestUpdateConnectionDoesNotTouchAddresses(t *testing.T) {
	s := newTestStore(model.Dataset{})
	a := s.AddAddress(model.AddressInput{Street: "вул. Шевченка", Building: "25"})
	c := s.AddConnection(sampleInput("Іван", a.Label()))
	other := "вул. Грушевського 3"
	s.UpdateConnection(c.ID, model.ConnectionPatch{Address: &other})

	addrs := s.Addresses()
	if len(addrs) != 1 || addrs[0] != a {
		t.Fatalf("expected address record untouched, got %+v", addrs)
	}
}

func TestRemoveConnectionDropsOwnedChildren(t *testing.T) {
	s := newTestStore(model.Dataset{})
	c := s.AddConnection(sampleInput("Іван", "вул. Шевченка 25"))
	p, _ := s.AddPhoto(c.ID, model.PhotoInput{URL: "https://example.test/1.jpg"})
	sc, _ := s.AddSchedule(c.ID, model.ScheduleInput{Title: "install", Type: model.ScheduleInstallation})

	if !s.RemoveConnection(c.ID) {
		t.Fatalf("expected removal")
	}
	if _, ok := s.Connection(c.ID); ok {
		t.Fatalf("expected connection to be gone")
	}
	if s.RemovePhoto(c.ID, p.ID) || s.RemoveSchedule(c.ID, sc.ID) {
		t.Fatalf("expected owned photo and schedule to be unreachable")
	}
	for _, conn := range s.Connections() {
		for _, ph := range conn.Photos {
			if ph.ID == p.ID {
				t.Fatalf("photo survived its connection")
			}
		}
	}
}

func TestRemoveConnectionIsIdempotent(t *testing.T) {
	s := newTestStore(model.ExampleDataset(fixedNow))
	s.AddConnection(sampleInput("A", "B"))
	if !s.RemoveConnection("1") {
		t.Fatalf("expected first removal to apply")
	}
	after := fmt.Sprintf("%+v", s.Snapshot())
	if s.RemoveConnection("1") {
		t.Fatalf("expected second removal to be a no-op")
	}
	if fmt.Sprintf("%+v", s.Snapshot()) != after {
		t.Fatalf("second removal changed state")
	}
}

func TestRemoveConnectionKeepsAddresses(t *testing.T) {
	s := newTestStore(model.ExampleDataset(fixedNow))
	s.RemoveConnection("1")
	if len(s.Addresses()) != 1 {
		t.Fatalf("expected address to survive connection removal")
	}
}

func TestAddressLifecycle(t *testing.T) {
	s := newTestStore(model.Dataset{})
	a := s.AddAddress(model.AddressInput{Street: "вул. Грушевського", Building: "3"})
	b := s.AddAddress(model.AddressInput{Street: "вул. Шевченка", Building: "25"})
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids")
	}
	if got := s.Addresses(); len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("expected insertion order, got %+v", got)
	}
	if !s.RemoveAddress(a.ID) || s.RemoveAddress(a.ID) {
		t.Fatalf("expected single effective removal")
	}
}

func TestPhotoOperations(t *testing.T) {
	s := newTestStore(model.Dataset{})
	c := s.AddConnection(sampleInput("A", "B"))

	if _, ok := s.AddPhoto("missing", model.PhotoInput{URL: "u"}); ok {
		t.Fatalf("expected add to unknown connection to be ignored")
	}
	p1, ok := s.AddPhoto(c.ID, model.PhotoInput{URL: "u1", Caption: "щит"})
	if !ok {
		t.Fatalf("expected photo to be added")
	}
	p2, _ := s.AddPhoto(c.ID, model.PhotoInput{URL: "u2"})
	if p1.ConnectionID != c.ID || !p1.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected photo %+v", p1)
	}
	if s.RemovePhoto(c.ID, "missing") {
		t.Fatalf("expected unknown photo removal to be ignored")
	}
	if !s.RemovePhoto(c.ID, p1.ID) {
		t.Fatalf("expected photo removal")
	}
	got, _ := s.Connection(c.ID)
	if len(got.Photos) != 1 || got.Photos[0].ID != p2.ID {
		t.Fatalf("expected only second photo left, got %+v", got.Photos)
	}
}

func TestScheduleOperations(t *testing.T) {
	s := newTestStore(model.Dataset{})
	c := s.AddConnection(sampleInput("A", "B"))
	sc, ok := s.AddSchedule(c.ID, model.ScheduleInput{
		Title:  "Планове ТО",
		Date:   fixedNow.Add(24 * time.Hour),
		Type:   model.ScheduleMaintenance,
		Status: model.SchedulePending,
	})
	if !ok {
		t.Fatalf("expected schedule to be added")
	}

	done := model.ScheduleCompleted
	if !s.UpdateSchedule(c.ID, sc.ID, model.SchedulePatch{Status: &done}) {
		t.Fatalf("expected schedule update")
	}
	if s.UpdateSchedule(c.ID, "missing", model.SchedulePatch{Status: &done}) {
		t.Fatalf("expected unknown schedule update to be ignored")
	}
	got, _ := s.Connection(c.ID)
	if got.Schedules[0].Status != model.ScheduleCompleted || got.Schedules[0].Title != "Планове ТО" {
		t.Fatalf("unexpected schedule after update %+v", got.Schedules[0])
	}
	if !s.RemoveSchedule(c.ID, sc.ID) || s.RemoveSchedule(c.ID, sc.ID) {
		t.Fatalf("expected single effective schedule removal")
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := newTestStore(model.Dataset{})
	c := s.AddConnection(sampleInput("A", "B"))
	s.AddPhoto(c.ID, model.PhotoInput{URL: "u"})

	got, _ := s.Connection(c.ID)
	got.ClientName = "changed"
	got.Photos[0].URL = "changed"

	again, _ := s.Connection(c.ID)
	if again.ClientName != "A" || again.Photos[0].URL != "u" {
		t.Fatalf("store state leaked through a read")
	}
}

func TestNewDropsDuplicateSeedIDs(t *testing.T) {
	seed := model.ExampleDataset(fixedNow)
	seed.Connections = append(seed.Connections, seed.Connections[0])
	seed.Addresses = append(seed.Addresses, seed.Addresses[0])
	s := newTestStore(seed)
	if len(s.Connections()) != 1 || len(s.Addresses()) != 1 {
		t.Fatalf("expected duplicates dropped, got %d connections %d addresses",
			len(s.Connections()), len(s.Addresses()))
	}
}

func TestUISetters(t *testing.T) {
	s := newTestStore(model.Dataset{})
	if s.UIState().ViewMode != ViewTable {
		t.Fatalf("expected table view by default")
	}
	s.SetSearchTerm("Шевченка")
	s.SetFilterType(model.ConnectionDSL)
	s.SetFilterStatus(model.StatusInactive)
	s.SetViewMode(ViewCards)
	s.ToggleSortByAddress()

	ui := s.UIState()
	want := UIState{SearchTerm: "Шевченка", FilterType: model.ConnectionDSL, FilterStatus: model.StatusInactive, SortByAddress: true, ViewMode: ViewCards}
	if ui != want {
		t.Fatalf("expected %+v, got %+v", want, ui)
	}
	s.ToggleSortByAddress()
	if s.UIState().SortByAddress {
		t.Fatalf("expected sort flag cleared")
	}
}

func TestListenersReceiveChanges(t *testing.T) {
	s := newTestStore(model.Dataset{})
	var got []Change
	var lastCount int
	unsubscribe := s.Subscribe(ListenerFunc(func(ch Change, snap Snapshot) {
		got = append(got, ch)
		lastCount = len(snap.Connections)
	}))

	c := s.AddConnection(sampleInput("A", "B"))
	s.RemoveConnection("missing")
	s.ToggleSortByAddress()
	s.RemoveConnection(c.ID)

	want := []ChangeKind{ChangeConnectionAdded, ChangeSortToggled, ChangeConnectionRemoved}
	if len(got) != len(want) {
		t.Fatalf("expected %d notifications, got %+v", len(want), got)
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Fatalf("notification %d: expected %s, got %s", i, k, got[i].Kind)
		}
	}
	if got[0].ID != c.ID || lastCount != 0 {
		t.Fatalf("unexpected change payload %+v / count %d", got[0], lastCount)
	}

	unsubscribe()
	unsubscribe()
	s.ToggleSortByAddress()
	if len(got) != len(want) {
		t.Fatalf("expected no notifications after unsubscribe")
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	s := New(model.Dataset{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := s.AddConnection(sampleInput("A", "B"))
			s.AddPhoto(c.ID, model.PhotoInput{URL: "u"})
			_ = s.Visible()
		}()
	}
	wg.Wait()
	conns := s.Connections()
	if len(conns) != 50 {
		t.Fatalf("expected 50 connections, got %d", len(conns))
	}
	seen := map[string]bool{}
	for _, c := range conns {
		if seen[c.ID] {
			t.Fatalf("duplicate id %s", c.ID)
		}
		seen[c.ID] = true
		if len(c.Photos) != 1 {
			t.Fatalf("expected one photo on %s, got %d", c.ID, len(c.Photos))
		}
	}
}

type fakeAuth struct {
	user      model.User
	err       error
	signedOut int
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	u := f.user
	u.Email = email
	return u, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signedOut++
	return nil
}

func TestLoginStoresProfile(t *testing.T) {
	fa := &fakeAuth{user: model.User{ID: "u1", Role: model.RoleAdmin}}
	s := newTestStore(model.Dataset{}, WithAuthenticator(fa))

	u, err := s.Login(context.Background(), "admin@isp.ua", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	cur, ok := s.CurrentUser()
	if !ok || cur != u || cur.Email != "admin@isp.ua" {
		t.Fatalf("expected profile stored, got %+v ok=%v", cur, ok)
	}

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := s.CurrentUser(); ok {
		t.Fatalf("expected profile cleared")
	}
	if fa.signedOut != 1 {
		t.Fatalf("expected remote sign out, got %d calls", fa.signedOut)
	}
}

func TestLoginFailurePropagatesUnmodified(t *testing.T) {
	errRejected := errors.New("rejected")
	s := newTestStore(model.Dataset{}, WithAuthenticator(&fakeAuth{err: errRejected}))
	before := fmt.Sprintf("%+v", s.Snapshot())

	_, err := s.Login(context.Background(), "a@b.c", "bad")
	if err != errRejected {
		t.Fatalf("expected the collaborator error itself, got %v", err)
	}
	if fmt.Sprintf("%+v", s.Snapshot()) != before {
		t.Fatalf("expected state unchanged after failed login")
	}
}

func TestLoginWithoutAuthenticator(t *testing.T) {
	s := newTestStore(model.Dataset{})
	if _, err := s.Login(context.Background(), "a", "b"); !errors.Is(err, ErrNoAuthenticator) {
		t.Fatalf("expected ErrNoAuthenticator, got %v", err)
	}
}
