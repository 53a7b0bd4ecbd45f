package model

type Room struct {
	Id       int     `json:"id"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Color    *string `json:"color"`
}

// DisplayColor returns the room color or an empty string when none is set.
func (r Room) DisplayColor() string {
	if r.Color == nil {
		return ""
	}
	return *r.Color
}

// Page is the paginated envelope returned by the list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
