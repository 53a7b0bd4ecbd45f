package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"cinema-tui/model"
)

const (
	appDir         = "cinema-tui"
	maxRecentRooms = 8
	maxReceipts    = 50
)

type RecentRoom struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type roomHistory struct {
	Rooms []RecentRoom `json:"rooms"`
}

// Receipt is the local record of a booking the backend confirmed.
type Receipt struct {
	BookingID     *int      `json:"booking_id,omitempty"`
	ScreeningID   int       `json:"screening_id"`
	MovieTitle    string    `json:"movie_title"`
	RoomName      string    `json:"room_name"`
	StartTime     time.Time `json:"start_time"`
	SeatID        int       `json:"seat_id"`
	Seat          string    `json:"seat"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	BookedAt      time.Time `json:"booked_at"`
}

type receiptJournal struct {
	Receipts []Receipt `json:"receipts"`
}

func LoadRecentRooms() ([]RecentRoom, error) {
	var history roomHistory
	if err := readJSON("rooms.json", &history); err != nil {
		return nil, errors.Wrap(err, "invalid room history format")
	}
	return history.Rooms, nil
}

// RecentRoomIDs returns recently opened room ids, most recent first. A
// missing or unreadable history yields no ids.
func RecentRoomIDs() []int {
	rooms, err := LoadRecentRooms()
	if err != nil {
		return nil
	}
	ids := make([]int, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	return ids
}

func RememberRoom(room model.Room) error {
	if room.Id <= 0 {
		return errors.New("room id is required")
	}
	history, _ := LoadRecentRooms()
	next := []RecentRoom{{ID: room.Id, Name: room.Name}}
	for _, existing := range history {
		if existing.ID == room.Id {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentRooms {
			break
		}
	}
	return writeJSON("rooms.json", roomHistory{Rooms: next})
}

func LoadReceipts() ([]Receipt, error) {
	var journal receiptJournal
	if err := readJSON("receipts.json", &journal); err != nil {
		return nil, errors.Wrap(err, "invalid receipt journal format")
	}
	return journal.Receipts, nil
}

// SaveReceipt records a confirmed booking at the head of the journal.
func SaveReceipt(booking model.Booking, screening model.Screening, seat model.Seat) (Receipt, error) {
	if booking.Screening <= 0 || booking.Seat <= 0 {
		return Receipt{}, errors.New("screening and seat are required")
	}
	bookedAt := time.Now()
	if booking.BookingTime != nil {
		bookedAt = *booking.BookingTime
	}
	receipt := Receipt{
		BookingID:     booking.Id,
		ScreeningID:   booking.Screening,
		MovieTitle:    screening.MovieTitle,
		RoomName:      screening.RoomName,
		StartTime:     screening.StartTime,
		SeatID:        booking.Seat,
		Seat:          seat.Label(),
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		BookedAt:      bookedAt,
	}

	existing, _ := LoadReceipts()
	next := append([]Receipt{receipt}, existing...)
	if len(next) > maxReceipts {
		next = next[:maxReceipts]
	}
	if err := writeJSON("receipts.json", receiptJournal{Receipts: next}); err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func readJSON(name string, out any) error {
	path, err := configPath(name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, out)
}

func writeJSON(name string, value any) error {
	path, err := configPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}
