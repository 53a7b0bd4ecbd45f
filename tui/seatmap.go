package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cinema-tui/model"
	"cinema-tui/viewstate"
)

var (
	seatStyleAvailable = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleBooked    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	seatStyleSelected  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Bold(true)
	seatStyleCursor    = lipgloss.NewStyle().Reverse(true)
)

func (m *appModel) moveCursor(dRow int, dCol int) {
	rows := m.screening.Rows()
	if len(rows) == 0 {
		return
	}
	m.cursor.row = clamp(m.cursor.row+dRow, 0, len(rows)-1)
	m.cursor.col = clamp(m.cursor.col+dCol, 0, len(rows[m.cursor.row].Seats)-1)
}

func (m appModel) seatUnderCursor() (model.Seat, bool) {
	rows := m.screening.Rows()
	if m.cursor.row < 0 || m.cursor.row >= len(rows) {
		return model.Seat{}, false
	}
	seats := rows[m.cursor.row].Seats
	if m.cursor.col < 0 || m.cursor.col >= len(seats) {
		return model.Seat{}, false
	}
	return seats[m.cursor.col], true
}

func (m appModel) seatMapView() string {
	var b strings.Builder
	b.WriteString(renderSeatMap(m.screening, m.cursor, m.showSeatNumbers))

	if result := m.screening.Booking.Result; result != nil && m.screening.Selected == nil {
		b.WriteString("\n\n")
		b.WriteString(resultView(*result))
	}
	if m.screening.Selected != nil {
		b.WriteString("\n\n")
		b.WriteString(m.bookingPanelView())
	}
	return b.String()
}

func (m appModel) bookingPanelView() string {
	seat := m.screening.Selected
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Book your seat"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("You are booking seat %s", seat.Label()))
	b.WriteString("\n")
	if result := m.screening.Booking.Result; result != nil {
		b.WriteString(resultView(*result))
		b.WriteString("\n")
	}
	b.WriteString("\nYour Name\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\nEmail Address\n")
	b.WriteString(m.emailInput.View())
	b.WriteString("\n\n")

	switch {
	case m.screening.Booking.InProgress:
		b.WriteString(m.spinner.View() + " Booking...")
	case m.focus == focusSeats:
		b.WriteString(hint("tab fill in details • ctrl+s confirm booking • esc cancel"))
	default:
		b.WriteString(hint("enter/ctrl+s confirm booking • esc cancel"))
	}
	if m.formErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.formErr))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("4")).
		Padding(0, 1).
		Render(b.String())
}

func resultView(result viewstate.BookingResult) string {
	color := lipgloss.Color("1")
	if result.Success {
		color = lipgloss.Color("2")
	}
	return lipgloss.NewStyle().Foreground(color).Render(result.Message)
}

// renderSeatMap draws the screen bar above the rows, one line per row with
// the row label on both sides, then the legend and the seat counts.
func renderSeatMap(page viewstate.ScreeningPage, cursor seatCursor, showNumbers bool) string {
	rows := page.Rows()
	if len(rows) == 0 {
		return hint("No seats configured for this screening.")
	}

	rowWidth := 1
	maxSeats := 0
	cellWidth := 2
	for _, row := range rows {
		rowWidth = max(rowWidth, len(row.Label))
		maxSeats = max(maxSeats, len(row.Seats))
		if showNumbers {
			for _, seat := range row.Seats {
				cellWidth = max(cellWidth, len(strconv.Itoa(seat.Number)))
			}
		}
	}

	var b strings.Builder
	gridWidth := maxSeats*(cellWidth+1) - 1
	b.WriteString(lipgloss.NewStyle().MarginLeft(rowWidth + 1).Render(screenBar(gridWidth)))
	b.WriteString("\n\n")

	for r, row := range rows {
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, row.Label))
		for c, seat := range row.Seats {
			text := seatToken(seat, page.IsSelected(seat.Id))
			if showNumbers {
				text = strconv.Itoa(seat.Number)
			}
			rendered := padCell(text, cellWidth)
			switch {
			case page.IsSelected(seat.Id):
				rendered = seatStyleSelected.Render(rendered)
			case seat.IsBooked:
				rendered = seatStyleBooked.Render(rendered)
			default:
				rendered = seatStyleAvailable.Render(rendered)
			}
			if r == cursor.row && c == cursor.col {
				rendered = seatStyleCursor.Render(rendered)
			}
			b.WriteString(rendered)
			if c < len(row.Seats)-1 {
				b.WriteString(" ")
			}
		}
		pad := (maxSeats - len(row.Seats)) * (cellWidth + 1)
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(fmt.Sprintf(" %-*s\n", rowWidth, row.Label))
	}

	legend := "Legend: [] available • <> selected • XX booked"
	if showNumbers {
		legend = "Legend: green available • blue selected • gray booked"
	}
	counts := page.Counts()
	summary := fmt.Sprintf("Available: %d • Booked: %d • Total: %d", counts.Available, counts.Booked, counts.Total)
	return b.String() + "\n" + hint(legend) + "\n" + hint(summary)
}

func seatToken(seat model.Seat, selected bool) string {
	switch {
	case selected:
		return "<>"
	case seat.IsBooked:
		return "XX"
	default:
		return "[]"
	}
}

// padCell centers text in a cell of width runes, cutting it when too long.
func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}
	gap := width - len(runes)
	return strings.Repeat(" ", gap/2) + string(runes) + strings.Repeat(" ", gap-gap/2)
}

const screenLabel = "SCREEN"

// screenBar is the boxed label drawn above the first row, as wide as the grid.
func screenBar(width int) string {
	width = max(width, len(screenLabel)+4, 10)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("250")).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("250")).
		Bold(true).
		Width(width - 2).
		Align(lipgloss.Center).
		Render(screenLabel)
}

func clamp(v int, lo int, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
