package model

import "time"

type Booking struct {
	Id            *int       `json:"id,omitempty"`
	Screening     int        `json:"screening"`
	Seat          int        `json:"seat"`
	CustomerName  string     `json:"customer_name,omitempty"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	BookingTime   *time.Time `json:"booking_time,omitempty"`
}

// BookingRequest is the body posted to create a booking.
type BookingRequest struct {
	Screening     int    `json:"screening"`
	Seat          int    `json:"seat"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// Complete fills the fields a booking response left out from the request that
// created it.
func (b Booking) Complete(req BookingRequest) Booking {
	if b.Screening == 0 {
		b.Screening = req.Screening
	}
	if b.Seat == 0 {
		b.Seat = req.Seat
	}
	if b.CustomerName == "" {
		b.CustomerName = req.CustomerName
	}
	if b.CustomerEmail == "" {
		b.CustomerEmail = req.CustomerEmail
	}
	return b
}
