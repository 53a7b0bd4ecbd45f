package viewstate

import (
	"context"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"

	"cinema-tui/model"
	"cinema-tui/service"
)

type fakeBackend struct {
	mu sync.Mutex

	rooms    []model.Room
	roomsErr error

	room          model.Room
	roomErr       error
	screenings    []model.Screening
	screeningsErr error

	screening    model.Screening
	screeningErr error
	seats        []model.Seat
	seatsErr     error

	booking     model.Booking
	bookingErr  error
	bookingReqs []model.BookingRequest
}

func (f *fakeBackend) ListRooms(context.Context) ([]model.Room, error) {
	return f.rooms, f.roomsErr
}

func (f *fakeBackend) GetRoom(context.Context, int) (model.Room, error) {
	return f.room, f.roomErr
}

func (f *fakeBackend) ListScreeningsByRoom(context.Context, int) ([]model.Screening, error) {
	return f.screenings, f.screeningsErr
}

func (f *fakeBackend) GetScreening(context.Context, int) (model.Screening, error) {
	return f.screening, f.screeningErr
}

func (f *fakeBackend) ListSeatsByScreening(context.Context, int) ([]model.Seat, error) {
	return f.seats, f.seatsErr
}

func (f *fakeBackend) CreateBooking(_ context.Context, req model.BookingRequest) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookingReqs = append(f.bookingReqs, req)
	return f.booking, f.bookingErr
}

func statusErr(code int) error {
	apiErr := &service.APIError{StatusCode: code, Status: http.StatusText(code)}
	switch code {
	case http.StatusNotFound:
		return errors.Mark(apiErr, service.ErrNotFound)
	case http.StatusConflict:
		return errors.Mark(apiErr, service.ErrConflict)
	}
	return apiErr
}

func networkErr() error {
	return errors.Mark(errors.New("connection refused"), service.ErrNetwork)
}

func readyPage(seats ...model.Seat) ScreeningPage {
	page := NewScreeningPage(7)
	page.Status = StatusReady
	page.Seats = seats
	return page
}
