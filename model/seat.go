package model

import "fmt"

// Seat is a seat as seen for one screening. IsBooked is the availability at
// fetch time, not a lock.
type Seat struct {
	Id       int    `json:"id"`
	Row      string `json:"row"`
	Number   int    `json:"number"`
	IsBooked bool   `json:"is_booked,omitempty"`
}

func (s Seat) Label() string {
	return fmt.Sprintf("%s-%d", s.Row, s.Number)
}
