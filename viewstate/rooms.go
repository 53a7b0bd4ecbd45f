package viewstate

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"cinema-tui/model"
	"cinema-tui/service"
)

const (
	NoRoomsMessage         = "No cinema rooms available. Please come back later."
	roomsLoadFailedMessage = "Failed to load rooms. Please try again later."
)

type RoomEntry struct {
	Room   model.Room
	Recent bool
}

type RoomList struct {
	Status Status
	Err    error
	Rooms  []RoomEntry
}

func (l RoomList) Message() string {
	switch l.Status {
	case StatusError:
		return roomsLoadFailedMessage
	case StatusReady:
		if len(l.Rooms) == 0 {
			return NoRoomsMessage
		}
	}
	return ""
}

// LoadRoomList fetches the rooms once. A failed fetch degrades to an empty
// list; only an unusable response puts the page in the error state.
// recentIDs lists recently opened rooms, most recent first.
func LoadRoomList(ctx context.Context, api RoomLister, recentIDs []int, logger *slog.Logger) RoomList {
	logger = loggerOrDiscard(logger)

	rooms, err := api.ListRooms(ctx)
	if err != nil {
		if !service.IsFetchError(err) {
			logger.ErrorContext(ctx, "load rooms", "error", err)
			return RoomList{Status: StatusError, Err: err}
		}
		logger.WarnContext(ctx, "rooms unavailable, showing empty list", "error", err)
		rooms = nil
	}
	return RoomList{Status: StatusReady, Rooms: orderRooms(rooms, recentIDs)}
}

func orderRooms(rooms []model.Room, recentIDs []int) []RoomEntry {
	byID := make(map[int]model.Room, len(rooms))
	for _, room := range rooms {
		byID[room.Id] = room
	}

	entries := make([]RoomEntry, 0, len(rooms))
	used := map[int]bool{}
	for _, id := range recentIDs {
		room, ok := byID[id]
		if !ok || used[id] {
			continue
		}
		entries = append(entries, RoomEntry{Room: room, Recent: true})
		used[id] = true
	}

	remaining := make([]model.Room, 0, len(rooms))
	for _, room := range rooms {
		if !used[room.Id] {
			remaining = append(remaining, room)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return strings.ToLower(remaining[i].Name) < strings.ToLower(remaining[j].Name)
	})
	for _, room := range remaining {
		entries = append(entries, RoomEntry{Room: room})
	}
	return entries
}
