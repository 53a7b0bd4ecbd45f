package model

import "time"

type Screening struct {
	Id         int       `json:"id"`
	Movie      int       `json:"movie"`
	Room       int       `json:"room"`
	StartTime  time.Time `json:"start_time"`
	MovieTitle string    `json:"movie_title,omitempty"`
	RoomName   string    `json:"room_name,omitempty"`
}

// EndTime is the start time plus the runtime of the given movie.
func (s Screening) EndTime(movie Movie) time.Time {
	return s.StartTime.Add(movie.Runtime())
}
