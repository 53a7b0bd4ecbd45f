package model

import "time"

type Movie struct {
	Id          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Poster      *string `json:"poster"`
	Duration    int     `json:"duration"`
}

// Runtime is the movie duration; the backend reports it in minutes.
func (m Movie) Runtime() time.Duration {
	return time.Duration(m.Duration) * time.Minute
}
