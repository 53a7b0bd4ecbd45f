// Package viewstate holds the per-page state of the client and the loaders
// that fill it. Nothing here renders; the TUI and the CLI both drive these
// containers so the booking rules live in one place.
package viewstate

import (
	"context"
	"log/slog"

	"cinema-tui/model"
)

type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

type RoomLister interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
}

type RoomReader interface {
	GetRoom(ctx context.Context, roomID int) (model.Room, error)
	ListScreeningsByRoom(ctx context.Context, roomID int) ([]model.Screening, error)
}

type ScreeningReader interface {
	GetScreening(ctx context.Context, screeningID int) (model.Screening, error)
	ListSeatsByScreening(ctx context.Context, screeningID int) ([]model.Seat, error)
}

type Booker interface {
	CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error)
}

// Backend is everything the pages need from the cinema API.
type Backend interface {
	RoomLister
	RoomReader
	ScreeningReader
	Booker
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
