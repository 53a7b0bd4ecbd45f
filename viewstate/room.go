package viewstate

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"cinema-tui/model"
	"cinema-tui/service"
)

const (
	NoScreeningsMessage   = "No screenings scheduled for this room at the moment."
	roomNotFoundMessage   = "Room not found"
	roomLoadFailedMessage = "Failed to load room data. Please try again later."
)

type RoomPage struct {
	RoomID     int
	Status     Status
	Err        error
	Room       model.Room
	Screenings []model.Screening
}

func (p RoomPage) Message() string {
	switch p.Status {
	case StatusNotFound:
		return roomNotFoundMessage
	case StatusError:
		return roomLoadFailedMessage
	case StatusReady:
		if len(p.Screenings) == 0 {
			return NoScreeningsMessage
		}
	}
	return ""
}

// LoadRoom fetches the room and its screenings in parallel and settles only
// once both requests have returned.
func LoadRoom(ctx context.Context, api RoomReader, roomID int, logger *slog.Logger) RoomPage {
	logger = loggerOrDiscard(logger)
	page := RoomPage{RoomID: roomID, Status: StatusLoading}
	if roomID <= 0 {
		page.Status = StatusNotFound
		return page
	}

	var (
		g          errgroup.Group
		room       model.Room
		roomErr    error
		screenings []model.Screening
	)
	g.Go(func() error {
		room, roomErr = api.GetRoom(ctx, roomID)
		return roomErr
	})
	g.Go(func() error {
		var err error
		screenings, err = api.ListScreeningsByRoom(ctx, roomID)
		return err
	})

	if err := g.Wait(); err != nil {
		page.Err = err
		if service.IsNotFound(roomErr) {
			page.Err = roomErr
			page.Status = StatusNotFound
			logger.InfoContext(ctx, "room not found", "room_id", roomID)
			return page
		}
		page.Status = StatusError
		logger.ErrorContext(ctx, "load room", "room_id", roomID, "error", err)
		return page
	}

	sort.SliceStable(screenings, func(i, j int) bool {
		return screenings[i].StartTime.Before(screenings[j].StartTime)
	})
	page.Room = room
	page.Screenings = screenings
	page.Status = StatusReady
	return page
}
