package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"cinema-tui/model"
	"cinema-tui/store"
	"cinema-tui/viewstate"
)

type fakeAPI struct {
	rooms      []model.Room
	room       model.Room
	screenings []model.Screening
	screening  model.Screening
	seats      []model.Seat
	booking    model.Booking
	bookingErr error
	requests   []model.BookingRequest
}

func (f *fakeAPI) ListRooms(context.Context) ([]model.Room, error) { return f.rooms, nil }
func (f *fakeAPI) GetRoom(context.Context, int) (model.Room, error) {
	return f.room, nil
}
func (f *fakeAPI) ListScreeningsByRoom(context.Context, int) ([]model.Screening, error) {
	return f.screenings, nil
}
func (f *fakeAPI) GetScreening(context.Context, int) (model.Screening, error) {
	return f.screening, nil
}
func (f *fakeAPI) ListSeatsByScreening(context.Context, int) ([]model.Seat, error) {
	return f.seats, nil
}
func (f *fakeAPI) CreateBooking(_ context.Context, req model.BookingRequest) (model.Booking, error) {
	f.requests = append(f.requests, req)
	return f.booking, f.bookingErr
}

func setTestConfigDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("AppData", root)
}

func newFilterModel(rooms ...string) *appModel {
	m := New(&fakeAPI{}, nil).(appModel)
	m.state = stateSelectRoom
	entries := make([]viewstate.RoomEntry, 0, len(rooms))
	for i, name := range rooms {
		entries = append(entries, viewstate.RoomEntry{Room: model.Room{Id: i + 1, Name: name, Capacity: 50}})
	}
	m.roomList.SetItems(buildRoomItems(entries))
	return &m
}

// collect runs cmd and every command batched under it, returning the messages
// in order.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, collect(c)...)
	}
	return msgs
}

// settle feeds the results of cmd back into the model until no load is left.
func settle(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	for _, msg := range collect(cmd) {
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		var next tea.Cmd
		m, next = update(t, m, msg)
		m = settle(t, m, next)
	}
	return m
}

func update(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(appModel)
	if !ok {
		t.Fatalf("expected appModel, got %T", next)
	}
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func seatMapModel(t *testing.T, seats ...model.Seat) appModel {
	t.Helper()
	m := New(&fakeAPI{}, nil, WithScreening(7)).(appModel)
	page := viewstate.ScreeningPage{
		ScreeningID: 7,
		Status:      viewstate.StatusReady,
		Screening: model.Screening{
			Id:         7,
			Movie:      3,
			Room:       1,
			StartTime:  time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
			MovieTitle: "Heat",
			RoomName:   "Main",
		},
		Seats: seats,
	}
	m, _ = update(t, m, screeningMsg{token: m.token, page: page})
	if m.state != stateSeatMap {
		t.Fatalf("expected seat map state, got %v", m.state)
	}
	return m
}

func TestHandleFilterInput_NarrowsRoomList(t *testing.T) {
	m := newFilterModel("Main", "Blue")

	if !m.handleFilterInput(runes("b")) {
		t.Fatal("expected filter input to be handled")
	}
	if !m.handleFilterInput(runes("L")) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.roomList.FilterValue(); got != "bL" {
		t.Fatalf("expected filter value to be %q, got %q", "bL", got)
	}
	visible := m.roomList.VisibleItems()
	if len(visible) != 1 || visible[0].(roomItem).entry.Room.Name != "Blue" {
		t.Fatalf("expected only Blue to match, got %+v", visible)
	}
}

func TestHandleFilterInput_BackspaceToEmptyResetsFilter(t *testing.T) {
	m := newFilterModel("Main", "Blue", "Café")

	_ = m.handleFilterInput(runes("café"))
	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace}) {
		t.Fatal("expected backspace to be handled")
	}
	if got := m.roomList.FilterValue(); got != "caf" {
		t.Fatalf("expected filter value to be %q, got %q", "caf", got)
	}

	for range 3 {
		_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if m.roomList.IsFiltered() {
		t.Fatal("expected filter to be cleared")
	}
	if got := len(m.roomList.VisibleItems()); got != 3 {
		t.Fatalf("expected all rooms visible, got %d", got)
	}
	if m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace}) {
		t.Fatal("expected backspace on an empty filter to fall through")
	}
}

func TestHandleFilterInput_Space(t *testing.T) {
	m := newFilterModel("Big Screen", "Main")

	_ = m.handleFilterInput(runes("big"))
	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeySpace}) {
		t.Fatal("expected space to be handled")
	}
	if got := m.roomList.FilterValue(); got != "big " {
		t.Fatalf("expected filter value to be %q, got %q", "big ", got)
	}
}

func TestHandleFilterInput_FiltersScreeningsByMovie(t *testing.T) {
	m := New(&fakeAPI{}, nil, WithRoom(1)).(appModel)
	page := viewstate.RoomPage{
		RoomID: 1,
		Status: viewstate.StatusReady,
		Room:   model.Room{Id: 1, Name: "Main", Capacity: 50},
		Screenings: []model.Screening{
			{Id: 7, Room: 1, MovieTitle: "Heat"},
			{Id: 8, Room: 1, MovieTitle: "Ronin"},
		},
	}
	m, _ = update(t, m, roomMsg{token: m.token, page: page})

	m, _ = update(t, m, runes("ron"))

	visible := m.screeningList.VisibleItems()
	if len(visible) != 1 || visible[0].(screeningItem).screening.Id != 8 {
		t.Fatalf("expected only Ronin to match, got %+v", visible)
	}
	if !strings.Contains(m.View(), "Filter: ron") {
		t.Fatalf("expected filter line in header, got %q", m.View())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateSelectScreening || m.screeningList.IsFiltered() {
		t.Fatalf("expected esc to clear the filter first, got state %v", m.state)
	}
}

func TestRoomsMsg_EmptyListShowsMessage(t *testing.T) {
	m := New(&fakeAPI{}, nil).(appModel)

	m, _ = update(t, m, roomsMsg{token: m.token, list: viewstate.RoomList{Status: viewstate.StatusReady}})

	if m.state != stateSelectRoom {
		t.Fatalf("expected select room state, got %v", m.state)
	}
	if !strings.Contains(m.View(), viewstate.NoRoomsMessage) {
		t.Fatalf("expected empty rooms message, got %q", m.View())
	}
}

func TestRoomMsg_NoScreeningsShowsMessage(t *testing.T) {
	m := New(&fakeAPI{}, nil, WithRoom(1)).(appModel)
	page := viewstate.RoomPage{
		RoomID: 1,
		Status: viewstate.StatusReady,
		Room:   model.Room{Id: 1, Name: "Main", Capacity: 50},
	}

	m, _ = update(t, m, roomMsg{token: m.token, page: page})

	view := m.View()
	if !strings.Contains(view, "Main Room") {
		t.Fatalf("expected room header, got %q", view)
	}
	if !strings.Contains(view, "Capacity: 50 seats") {
		t.Fatalf("expected capacity, got %q", view)
	}
	if !strings.Contains(view, viewstate.NoScreeningsMessage) {
		t.Fatalf("expected no screenings message, got %q", view)
	}
}

func TestRoomMsg_NotFoundShowsError(t *testing.T) {
	m := New(&fakeAPI{}, nil, WithRoom(99)).(appModel)

	m, _ = update(t, m, roomMsg{token: m.token, page: viewstate.RoomPage{RoomID: 99, Status: viewstate.StatusNotFound}})

	if m.state != stateError {
		t.Fatalf("expected error state, got %v", m.state)
	}
	if !strings.Contains(m.View(), "Room not found") {
		t.Fatalf("expected not found message, got %q", m.View())
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	m := New(&fakeAPI{}, nil, WithRoom(1)).(appModel)
	stale := m.token
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m, _ = update(t, m, roomMsg{token: stale, page: viewstate.RoomPage{RoomID: 1, Status: viewstate.StatusReady}})

	if m.state == stateSelectScreening {
		t.Fatal("expected stale room result to be ignored")
	}
}

func TestSeatMap_BookedSeatCannotBeSelected(t *testing.T) {
	m := seatMapModel(t,
		model.Seat{Id: 1, Row: "A", Number: 1},
		model.Seat{Id: 2, Row: "A", Number: 2, IsBooked: true},
	)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screening.Selected == nil || m.screening.Selected.Id != 1 {
		t.Fatalf("expected seat 1 to be selected, got %+v", m.screening.Selected)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screening.Selected == nil || m.screening.Selected.Id != 1 {
		t.Fatalf("expected selection to stay on seat 1, got %+v", m.screening.Selected)
	}
}

func fillForm(t *testing.T, m appModel, name string, email string) appModel {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusName {
		t.Fatalf("expected name focus, got %v", m.focus)
	}
	m, _ = update(t, m, runes(name))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes(email))
	return m
}

func TestSeatMap_SubmitIsNoopWhileBookingInProgress(t *testing.T) {
	m := seatMapModel(t, model.Seat{Id: 1, Row: "A", Number: 1})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = fillForm(t, m, "Ada", "ada@example.com")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected booking command")
	}
	if !m.screening.Booking.InProgress {
		t.Fatal("expected booking to be in progress")
	}
	if !strings.Contains(m.View(), "Booking...") {
		t.Fatalf("expected in-progress label, got %q", m.View())
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("expected second submit to be ignored")
	}
	m, _ = update(t, m, runes("x"))
	if m.screening.CustomerName != "Ada" {
		t.Fatalf("expected name to stay %q, got %q", "Ada", m.screening.CustomerName)
	}
}

func TestSeatMap_InvalidFormDoesNotSubmit(t *testing.T) {
	m := seatMapModel(t, model.Seat{Id: 1, Row: "A", Number: 1})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = fillForm(t, m, "Ada", "not-an-email")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.screening.Booking.InProgress {
		t.Fatal("expected no booking to start")
	}
	if m.formErr != "email must be a valid address" {
		t.Fatalf("unexpected form error %q", m.formErr)
	}
}

func TestBookingMsg_SuccessMarksSeatBooked(t *testing.T) {
	m := seatMapModel(t, model.Seat{Id: 1, Row: "A", Number: 1}, model.Seat{Id: 2, Row: "A", Number: 2})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = fillForm(t, m, "Ada", "ada@example.com")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	m, _ = update(t, m, bookingMsg{token: m.token})

	if m.screening.Booking.InProgress {
		t.Fatal("expected booking to be finished")
	}
	if m.screening.Selected != nil {
		t.Fatal("expected selection to be cleared")
	}
	if !m.screening.Seats[0].IsBooked || m.screening.Seats[1].IsBooked {
		t.Fatalf("expected only seat 1 booked, got %+v", m.screening.Seats)
	}
	if m.nameInput.Value() != "" || m.emailInput.Value() != "" {
		t.Fatal("expected inputs to be cleared")
	}
	if !strings.Contains(m.View(), viewstate.BookingSucceededMessage) {
		t.Fatalf("expected success message, got %q", m.View())
	}
}

func TestBookingMsg_FailureKeepsForm(t *testing.T) {
	m := seatMapModel(t, model.Seat{Id: 1, Row: "A", Number: 1})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = fillForm(t, m, "Ada", "ada@example.com")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	m, _ = update(t, m, bookingMsg{token: m.token, err: errors.New("boom")})

	if m.screening.Selected == nil || m.screening.Selected.Id != 1 {
		t.Fatalf("expected selection to be kept, got %+v", m.screening.Selected)
	}
	if m.screening.Seats[0].IsBooked {
		t.Fatal("expected seat to stay available")
	}
	if m.nameInput.Value() != "Ada" || m.emailInput.Value() != "ada@example.com" {
		t.Fatal("expected inputs to be kept")
	}
	if !strings.Contains(m.View(), viewstate.BookingFailedMessage) {
		t.Fatalf("expected failure message, got %q", m.View())
	}
}

func TestBookingMsg_AfterNavigationIsDropped(t *testing.T) {
	m := seatMapModel(t, model.Seat{Id: 1, Row: "A", Number: 1})
	token := m.token
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m, _ = update(t, m, bookingMsg{token: token})

	if m.state == stateSeatMap {
		t.Fatal("expected to have left the seat map")
	}
}

func navigationAPI() *fakeAPI {
	start := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	return &fakeAPI{
		rooms:      []model.Room{{Id: 1, Name: "Main", Capacity: 50}},
		room:       model.Room{Id: 1, Name: "Main", Capacity: 50},
		screenings: []model.Screening{{Id: 7, Movie: 3, Room: 1, StartTime: start, MovieTitle: "Heat", RoomName: "Main"}},
		screening:  model.Screening{Id: 7, Movie: 3, Room: 1, StartTime: start, MovieTitle: "Heat", RoomName: "Main"},
		seats:      []model.Seat{{Id: 1, Row: "A", Number: 1}},
	}
}

func openSeatMap(t *testing.T, api *fakeAPI) appModel {
	t.Helper()
	m := New(api, nil).(appModel)
	m = settle(t, m, m.Init())
	if m.state != stateSelectRoom {
		t.Fatalf("expected select room state, got %v", m.state)
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m, cmd)
	if m.state != stateSelectScreening {
		t.Fatalf("expected select screening state, got %v", m.state)
	}
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m, cmd)
	if m.state != stateSeatMap {
		t.Fatalf("expected seat map state, got %v", m.state)
	}
	return m
}

func TestGoBack_ReloadsParentPage(t *testing.T) {
	setTestConfigDir(t)
	api := navigationAPI()
	m := openSeatMap(t, api)

	api.screenings = append(api.screenings, model.Screening{Id: 8, Movie: 4, Room: 1, StartTime: time.Date(2025, 1, 1, 22, 0, 0, 0, time.UTC), MovieTitle: "Ronin"})
	api.rooms = append(api.rooms, model.Room{Id: 2, Name: "Blue", Capacity: 30})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || m.state != stateLoadingRoom {
		t.Fatalf("expected the room to load again, got state %v", m.state)
	}
	m = settle(t, m, cmd)
	if m.state != stateSelectScreening {
		t.Fatalf("expected select screening state, got %v", m.state)
	}
	if got := len(m.screeningList.Items()); got != 2 {
		t.Fatalf("expected 2 screenings after going back, got %d", got)
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = settle(t, m, cmd)
	if m.state != stateSelectRoom {
		t.Fatalf("expected select room state, got %v", m.state)
	}
	if got := len(m.roomList.Items()); got != 2 {
		t.Fatalf("expected 2 rooms after going back, got %d", got)
	}
}

func TestGoBack_DuringBookingStopsSpinner(t *testing.T) {
	setTestConfigDir(t)
	m := openSeatMap(t, navigationAPI())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = fillForm(t, m, "Ada", "ada@example.com")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.screening.Booking.InProgress || m.focus != focusSeats {
		t.Fatalf("expected booking in flight from the seat grid, got %+v focus %v", m.screening.Booking, m.focus)
	}
	token := m.token

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = settle(t, m, cmd)

	if m.state != stateSelectScreening {
		t.Fatalf("expected select screening state, got %v", m.state)
	}
	if m.screening.Booking.InProgress {
		t.Fatal("expected the booking flag to be cleared")
	}
	if _, cmd := update(t, m, spinner.TickMsg{}); cmd != nil {
		t.Fatal("expected the spinner to stop ticking")
	}

	m, _ = update(t, m, bookingMsg{token: token})
	if m.state != stateSelectScreening {
		t.Fatalf("expected late booking result to be ignored, got state %v", m.state)
	}
}

func TestCreateBookingCmd_SavesReceipt(t *testing.T) {
	setTestConfigDir(t)
	id := 11
	api := &fakeAPI{booking: model.Booking{Id: &id, Screening: 7, Seat: 1, CustomerName: "Ada", CustomerEmail: "ada@example.com"}}
	m := New(api, nil).(appModel)
	req := model.BookingRequest{Screening: 7, Seat: 1, CustomerName: "Ada", CustomerEmail: "ada@example.com"}

	msg, ok := m.createBookingCmd(3, req, model.Screening{Id: 7, MovieTitle: "Heat"}, model.Seat{Id: 1, Row: "A", Number: 1})().(bookingMsg)
	if !ok {
		t.Fatal("expected bookingMsg")
	}
	if msg.err != nil || msg.token != 3 {
		t.Fatalf("unexpected msg %+v", msg)
	}
	if len(api.requests) != 1 || api.requests[0] != req {
		t.Fatalf("unexpected requests %+v", api.requests)
	}

	receipts, err := store.LoadReceipts()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(receipts) != 1 || receipts[0].Seat != "A-1" || receipts[0].MovieTitle != "Heat" {
		t.Fatalf("unexpected receipts %+v", receipts)
	}
}

func TestRenderSeatMap_OrdersRowsAndSeats(t *testing.T) {
	page := viewstate.ScreeningPage{
		Status: viewstate.StatusReady,
		Seats: []model.Seat{
			{Id: 3, Row: "B", Number: 1},
			{Id: 2, Row: "A", Number: 2, IsBooked: true},
			{Id: 1, Row: "A", Number: 1},
		},
	}

	out := renderSeatMap(page, seatCursor{}, true)

	if strings.Index(out, "SCREEN") > strings.Index(out, "A ") {
		t.Fatal("expected screen bar above the rows")
	}
	if strings.Index(out, "A ") > strings.Index(out, "B ") {
		t.Fatal("expected row A before row B")
	}
	if !strings.Contains(out, "Available: 2 • Booked: 1 • Total: 3") {
		t.Fatalf("expected counts, got %q", out)
	}
}

func TestPadCell(t *testing.T) {
	if got := padCell("1", 3); got != " 1 " {
		t.Fatalf("expected %q, got %q", " 1 ", got)
	}
	if got := padCell("123", 2); got != "12" {
		t.Fatalf("expected %q, got %q", "12", got)
	}
	if got := padCell("é", 3); got != " é " {
		t.Fatalf("expected %q, got %q", " é ", got)
	}
	if got := padCell("", 2); got != "  " {
		t.Fatalf("expected %q, got %q", "  ", got)
	}
}
