package viewstate

import (
	"sort"

	"cinema-tui/model"
)

// SeatRow is one row of the seat map in display order.
type SeatRow struct {
	Label string
	Seats []model.Seat
}

// Layout groups seats by row label. Rows are ordered lexicographically and
// seats within a row by number. The input slice is left untouched.
func Layout(seats []model.Seat) []SeatRow {
	byRow := make(map[string][]model.Seat)
	for _, seat := range seats {
		byRow[seat.Row] = append(byRow[seat.Row], seat)
	}

	labels := make([]string, 0, len(byRow))
	for label := range byRow {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([]SeatRow, 0, len(labels))
	for _, label := range labels {
		rowSeats := byRow[label]
		sort.SliceStable(rowSeats, func(i, j int) bool {
			return rowSeats[i].Number < rowSeats[j].Number
		})
		rows = append(rows, SeatRow{Label: label, Seats: rowSeats})
	}
	return rows
}

type SeatCount struct {
	Available int
	Booked    int
	Total     int
}

func CountSeats(seats []model.Seat) SeatCount {
	var count SeatCount
	for _, seat := range seats {
		count.Total++
		if seat.IsBooked {
			count.Booked++
		} else {
			count.Available++
		}
	}
	return count
}
