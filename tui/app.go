package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinema-tui/model"
	"cinema-tui/store"
	"cinema-tui/viewstate"
)

type appState int

const (
	stateLoadingRooms appState = iota
	stateSelectRoom
	stateLoadingRoom
	stateSelectScreening
	stateLoadingScreening
	stateSeatMap
	stateError
)

type formFocus int

const (
	focusSeats formFocus = iota
	focusName
	focusEmail
)

type appModel struct {
	api    viewstate.Backend
	logger *slog.Logger

	state     appState
	lastState appState
	errText   string

	width  int
	height int

	// token identifies the page currently on screen; results of loads
	// started for another page are dropped.
	token int

	startRoom      int
	startScreening int

	rooms     viewstate.RoomList
	room      viewstate.RoomPage
	screening viewstate.ScreeningPage

	roomList      list.Model
	screeningList list.Model

	cursor          seatCursor
	focus           formFocus
	nameInput       textinput.Model
	emailInput      textinput.Model
	formErr         string
	showSeatNumbers bool

	spinner spinner.Model
}

type seatCursor struct {
	row int
	col int
}

type roomsMsg struct {
	token int
	list  viewstate.RoomList
}

type roomMsg struct {
	token int
	page  viewstate.RoomPage
}

type screeningMsg struct {
	token int
	page  viewstate.ScreeningPage
}

type bookingMsg struct {
	token   int
	req     model.BookingRequest
	booking model.Booking
	err     error
}

type Option func(*appModel)

// WithRoom opens the room with the given id instead of the room list.
func WithRoom(roomID int) Option {
	return func(m *appModel) {
		m.startRoom = roomID
	}
}

// WithScreening opens the seat map of the given screening directly.
func WithScreening(screeningID int) Option {
	return func(m *appModel) {
		m.startScreening = screeningID
	}
}

func New(api viewstate.Backend, logger *slog.Logger, opts ...Option) tea.Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := appModel{
		api:    api,
		logger: logger,
		state:  stateLoadingRooms,
	}
	for _, opt := range opts {
		opt(&m)
	}
	switch {
	case m.startScreening > 0:
		m.state = stateLoadingScreening
	case m.startRoom > 0:
		m.state = stateLoadingRoom
	}

	m.roomList = newList("Select Room")
	m.screeningList = newList("Screenings")

	m.nameInput = newInput("Your Name", 200)
	m.emailInput = newInput("Email Address", 254)
	m.showSeatNumbers = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	switch m.state {
	case stateLoadingScreening:
		return tea.Batch(m.fetchScreeningCmd(m.token, m.startScreening), m.spinner.Tick)
	case stateLoadingRoom:
		return tea.Batch(m.fetchRoomCmd(m.token, m.startRoom), m.spinner.Tick)
	default:
		return tea.Batch(m.fetchRoomsCmd(m.token), m.spinner.Tick)
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.state == stateSeatMap && m.focus != focusSeats {
			return m.handleFormKey(msg)
		}
		if m.handleFilterInput(msg) {
			return m, nil
		}
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		// fallthrough to component update

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() || (m.state == stateSeatMap && m.screening.Booking.InProgress) {
			return m, cmd
		}
		return m, nil

	case roomsMsg:
		if msg.token != m.token {
			return m, nil
		}
		m.rooms = msg.list
		if m.rooms.Status != viewstate.StatusReady {
			return m.showError(m.rooms.Message(), stateLoadingRooms), nil
		}
		m.roomList.SetItems(buildRoomItems(m.rooms.Rooms))
		m.roomList.Select(0)
		m.state = stateSelectRoom
		return m, nil

	case roomMsg:
		if msg.token != m.token {
			return m, nil
		}
		m.room = msg.page
		if m.room.Status != viewstate.StatusReady {
			return m.showError(m.room.Message(), stateSelectRoom), nil
		}
		m.screeningList.Title = fmt.Sprintf("Screenings • %s", m.room.Room.Name)
		m.screeningList.SetItems(buildScreeningItems(m.room.Screenings))
		m.screeningList.Select(0)
		m.state = stateSelectScreening
		return m, nil

	case screeningMsg:
		if msg.token != m.token {
			return m, nil
		}
		m.screening = msg.page
		if m.screening.Status != viewstate.StatusReady {
			return m.showError(m.screening.Message(), stateSelectScreening), nil
		}
		m.cursor = seatCursor{}
		m.focus = focusSeats
		m.formErr = ""
		m.resetInputs()
		m.state = stateSeatMap
		return m, nil

	case bookingMsg:
		if msg.token != m.token || m.state != stateSeatMap {
			return m, nil
		}
		m.screening.FinishBooking(msg.err)
		if msg.err == nil {
			m.resetInputs()
			m.focus = focusSeats
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectRoom:
		m.roomList, cmd = m.roomList.Update(msg)
	case stateSelectScreening:
		m.screeningList, cmd = m.screeningList.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoadingRooms, stateLoadingRoom, stateLoadingScreening:
		return header + "\n\n" + m.loadingView()
	case stateSelectRoom:
		if len(m.rooms.Rooms) == 0 {
			return header + "\n\n" + emptyView(m.rooms.Message())
		}
		return header + "\n\n" + m.roomList.View()
	case stateSelectScreening:
		body := m.roomHeaderView()
		if len(m.room.Screenings) == 0 {
			return header + "\n\n" + body + "\n\n" + emptyView(m.room.Message())
		}
		return header + "\n\n" + body + "\n\n" + m.screeningList.View()
	case stateSeatMap:
		return header + "\n\n" + m.seatMapView()
	case stateError:
		return header + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.errText) + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Cinema App")
	sub := []string{}
	if m.state == stateSelectScreening && m.room.Room.Name != "" {
		sub = append(sub, fmt.Sprintf("Room: %s", m.room.Room.Name))
	}
	if m.state == stateSeatMap {
		if m.screening.Screening.MovieTitle != "" {
			sub = append(sub, m.screening.Screening.MovieTitle)
		}
		if m.screening.Screening.RoomName != "" {
			sub = append(sub, fmt.Sprintf("%s Room", m.screening.Screening.RoomName))
		}
		if !m.screening.Screening.StartTime.IsZero() {
			sub = append(sub, formatDateTime(m.screening.Screening.StartTime))
		}
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}

	hints := "ctrl+c quit • esc back • type to filter • enter open"
	switch m.state {
	case stateSelectRoom:
		hints = "ctrl+c quit • type to filter • enter view screenings"
	case stateSeatMap:
		switch {
		case m.focus != focusSeats:
			hints = "ctrl+c quit • tab next field • enter/ctrl+s confirm booking • esc cancel"
		case m.screening.Selected != nil:
			hints = "ctrl+c quit • arrows move • enter select • tab booking form • esc cancel selection • n toggle numbers"
		default:
			hints = "ctrl+c quit • esc back • arrows move • enter select seat • n toggle numbers"
		}
	case stateError:
		hints = "ctrl+c quit • esc back"
	}

	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(hints)
}

func (m appModel) roomHeaderView() string {
	nameStyle := lipgloss.NewStyle().Bold(true)
	if color := strings.TrimSpace(m.room.Room.DisplayColor()); color != "" {
		nameStyle = nameStyle.Foreground(lipgloss.Color(color))
	}
	return nameStyle.Render(fmt.Sprintf("%s Room", m.room.Room.Name)) + "\n" +
		hint(fmt.Sprintf("Capacity: %d seats", m.room.Room.Capacity))
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit, true
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		if m.state == stateSeatMap && m.screening.Deselect() {
			m.formErr = ""
			return m, nil, true
		}
		next, cmd := m.goBack()
		return next, cmd, true
	}

	if m.state == stateSeatMap {
		return m.handleSeatMapKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		switch m.state {
		case stateSelectRoom:
			item, ok := m.roomList.SelectedItem().(roomItem)
			if !ok {
				return m, nil, true
			}
			m.nextToken()
			m.state = stateLoadingRoom
			return m, tea.Batch(m.fetchRoomCmd(m.token, item.entry.Room.Id), m.spinner.Tick), true
		case stateSelectScreening:
			item, ok := m.screeningList.SelectedItem().(screeningItem)
			if !ok {
				return m, nil, true
			}
			m.nextToken()
			m.state = stateLoadingScreening
			return m, tea.Batch(m.fetchScreeningCmd(m.token, item.screening.Id), m.spinner.Tick), true
		}
	}
	return m, nil, false
}

func (m appModel) handleSeatMapKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "n":
		m.showSeatNumbers = !m.showSeatNumbers
	case "enter", " ":
		seat, ok := m.seatUnderCursor()
		if !ok {
			return m, nil, true
		}
		if m.screening.IsSelected(seat.Id) {
			cmd := m.focusForm(focusName)
			return m, cmd, true
		}
		if m.screening.Select(seat.Id) {
			m.formErr = ""
		}
	case "tab":
		if m.screening.Selected != nil {
			cmd := m.focusForm(focusName)
			return m, cmd, true
		}
	case "ctrl+s":
		return m.submitBooking()
	}
	return m, nil, true
}

func (m appModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.screening.Booking.InProgress {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.screening.Deselect()
		m.formErr = ""
		m.blurForm()
		return m, nil
	case "tab", "shift+tab", "down", "up":
		if m.focus == focusName {
			cmd := m.focusForm(focusEmail)
			return m, cmd
		}
		cmd := m.focusForm(focusName)
		return m, cmd
	case "enter":
		if m.focus == focusName {
			cmd := m.focusForm(focusEmail)
			return m, cmd
		}
		next, cmd, _ := m.submitBooking()
		return next, cmd
	case "ctrl+s":
		next, cmd, _ := m.submitBooking()
		return next, cmd
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.emailInput, cmd = m.emailInput.Update(msg)
	}
	m.screening.SetCustomer(m.nameInput.Value(), m.emailInput.Value())
	return m, cmd
}

func (m appModel) submitBooking() (appModel, tea.Cmd, bool) {
	if m.screening.Booking.InProgress || m.screening.Selected == nil {
		return m, nil, true
	}
	m.screening.SetCustomer(m.nameInput.Value(), m.emailInput.Value())
	if err := viewstate.ValidateCustomer(m.screening.CustomerName, m.screening.CustomerEmail); err != nil {
		m.formErr = err.Error()
		if m.focus == focusSeats {
			cmd := m.focusForm(focusName)
			return m, cmd, true
		}
		return m, nil, true
	}
	m.formErr = ""

	req, ok := m.screening.BeginBooking()
	if !ok {
		return m, nil, true
	}
	seat := *m.screening.Selected
	return m, tea.Batch(m.createBookingCmd(m.token, req, m.screening.Screening, seat), m.spinner.Tick), true
}

func (m *appModel) focusForm(focus formFocus) tea.Cmd {
	m.focus = focus
	if focus == focusName {
		m.emailInput.Blur()
		return m.nameInput.Focus()
	}
	m.nameInput.Blur()
	return m.emailInput.Focus()
}

func (m *appModel) blurForm() {
	m.focus = focusSeats
	m.nameInput.Blur()
	m.emailInput.Blur()
}

func (m *appModel) resetInputs() {
	m.nameInput.SetValue("")
	m.emailInput.SetValue("")
	m.blurForm()
}

// goBack leaves the current page for its parent and loads the parent again;
// pages never reuse a snapshot from an earlier visit.
func (m appModel) goBack() (appModel, tea.Cmd) {
	switch m.state {
	case stateSelectScreening, stateLoadingRoom:
		return m.reloadRooms()
	case stateSeatMap, stateLoadingScreening:
		roomID := m.screening.Screening.Room
		if roomID <= 0 {
			roomID = m.room.RoomID
		}
		m.leaveScreening()
		return m.reloadRoom(roomID)
	case stateError:
		if m.lastState == stateSelectScreening {
			return m.reloadRoom(m.room.RoomID)
		}
		return m.reloadRooms()
	}
	return m, nil
}

func (m appModel) reloadRooms() (appModel, tea.Cmd) {
	m.nextToken()
	m.state = stateLoadingRooms
	return m, tea.Batch(m.fetchRoomsCmd(m.token), m.spinner.Tick)
}

func (m appModel) reloadRoom(roomID int) (appModel, tea.Cmd) {
	if roomID <= 0 {
		return m.reloadRooms()
	}
	m.nextToken()
	m.state = stateLoadingRoom
	return m, tea.Batch(m.fetchRoomCmd(m.token, roomID), m.spinner.Tick)
}

// leaveScreening drops the seat map page, including a booking still in
// flight; its result is ignored once it arrives.
func (m *appModel) leaveScreening() {
	m.screening = viewstate.ScreeningPage{}
	m.formErr = ""
	m.resetInputs()
}

func (m appModel) showError(text string, returnState appState) appModel {
	m.errText = text
	m.lastState = returnState
	m.state = stateError
	return m
}

func (m *appModel) nextToken() {
	m.token++
}

// handleFilterInput types straight into the filter of the room or screening
// list, so narrowing a list never needs "/" first.
func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	l := m.activeList()
	if l == nil || !l.FilteringEnabled() {
		return false
	}
	filter := l.FilterValue()
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		filter += string(msg.Runes)
	case tea.KeySpace:
		filter += " "
	case tea.KeyBackspace, tea.KeyDelete:
		if filter == "" {
			return false
		}
		_, size := utf8.DecodeLastRuneInString(filter)
		filter = filter[:len(filter)-size]
	default:
		return false
	}
	setFilter(l, filter)
	return true
}

func setFilter(l *list.Model, filter string) {
	if strings.TrimSpace(filter) == "" {
		l.ResetFilter()
		return
	}
	l.SetFilterText(filter)
	l.Select(0)
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateSelectRoom:
		if len(m.roomList.Items()) == 0 {
			return nil
		}
		return &m.roomList
	case stateSelectScreening:
		if len(m.screeningList.Items()) == 0 {
			return nil
		}
		return &m.screeningList
	default:
		return nil
	}
}

func (m appModel) isLoadingState() bool {
	return m.state == stateLoadingRooms ||
		m.state == stateLoadingRoom ||
		m.state == stateLoadingScreening
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateLoadingRooms:
		title = "Loading rooms"
	case stateLoadingRoom:
		title = "Loading room"
	case stateLoadingScreening:
		title = "Loading seats"
	}
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Fetching data..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.roomList.SetSize(m.width, h)
	m.screeningList.SetSize(m.width, h-3)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 40
	return in
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func emptyView(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(text)
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func (m appModel) fetchRoomsCmd(token int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		return roomsMsg{token: token, list: viewstate.LoadRoomList(ctx, m.api, store.RecentRoomIDs(), m.logger)}
	}
}

func (m appModel) fetchRoomCmd(token int, roomID int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		page := viewstate.LoadRoom(ctx, m.api, roomID, m.logger)
		if page.Status == viewstate.StatusReady {
			if err := store.RememberRoom(page.Room); err != nil {
				m.logger.WarnContext(ctx, "remember room", "room_id", roomID, "error", err)
			}
		}
		return roomMsg{token: token, page: page}
	}
}

func (m appModel) fetchScreeningCmd(token int, screeningID int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		return screeningMsg{token: token, page: viewstate.LoadScreening(ctx, m.api, screeningID, m.logger)}
	}
}

func (m appModel) createBookingCmd(token int, req model.BookingRequest, screening model.Screening, seat model.Seat) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		booking, err := m.api.CreateBooking(ctx, req)
		viewstate.LogBookingOutcome(ctx, m.logger, req, err)
		if err == nil {
			if _, storeErr := store.SaveReceipt(booking.Complete(req), screening, seat); storeErr != nil {
				m.logger.WarnContext(ctx, "save receipt", "error", storeErr)
			}
		}
		return bookingMsg{token: token, req: req, booking: booking, err: err}
	}
}

type roomItem struct {
	entry viewstate.RoomEntry
}

func (r roomItem) Title() string {
	return r.entry.Room.Name
}

func (r roomItem) Description() string {
	parts := []string{}
	if r.entry.Recent {
		parts = append(parts, "Recent")
	}
	parts = append(parts, fmt.Sprintf("Capacity: %d seats", r.entry.Room.Capacity))
	return strings.Join(parts, " • ")
}

func (r roomItem) FilterValue() string {
	return strings.ToLower(r.entry.Room.Name)
}

type screeningItem struct {
	screening model.Screening
}

func (s screeningItem) Title() string {
	if strings.TrimSpace(s.screening.MovieTitle) != "" {
		return s.screening.MovieTitle
	}
	return fmt.Sprintf("Screening #%d", s.screening.Id)
}

func (s screeningItem) Description() string {
	if s.screening.StartTime.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s • %s", formatDate(s.screening.StartTime), formatTime(s.screening.StartTime))
}

func (s screeningItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{s.screening.MovieTitle, s.Description()}, " "))
}

func buildRoomItems(entries []viewstate.RoomEntry) []list.Item {
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, roomItem{entry: entry})
	}
	return items
}

func buildScreeningItems(screenings []model.Screening) []list.Item {
	items := make([]list.Item, 0, len(screenings))
	for _, screening := range screenings {
		items = append(items, screeningItem{screening: screening})
	}
	return items
}

func formatDate(t time.Time) string {
	return t.Local().Format("Mon, Jan 2")
}

func formatTime(t time.Time) string {
	return t.Local().Format("3:04 PM")
}

func formatDateTime(t time.Time) string {
	return t.Local().Format("Mon, Jan 2, 3:04 PM")
}
