package viewstate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"cinema-tui/model"
	"cinema-tui/service"
)

const (
	BookingSucceededMessage = "Your seat has been successfully booked!"
	// BookingFailedMessage covers every failure. The backend does not tell
	// a taken seat apart from other errors.
	BookingFailedMessage = "Failed to book the seat. It might already be taken."

	screeningNotFoundMessage   = "Screening not found"
	screeningLoadFailedMessage = "Failed to load screening data. Please try again later."
)

var (
	ErrNoSeatSelected    = errors.New("no seat selected")
	ErrBookingInProgress = errors.New("a booking is already in progress")
	ErrPageNotReady      = errors.New("screening is not loaded")
)

type BookingResult struct {
	Success bool
	Message string
}

type BookingState struct {
	InProgress bool
	Result     *BookingResult

	seatID int
}

// ScreeningPage is the state of one visit to a screening: the seat snapshot,
// at most one selected seat, the customer fields and the booking sub-state.
// The snapshot only changes after the backend confirms a booking.
type ScreeningPage struct {
	ScreeningID   int
	Status        Status
	Err           error
	Screening     model.Screening
	Seats         []model.Seat
	Selected      *model.Seat
	CustomerName  string
	CustomerEmail string
	Booking       BookingState
}

func NewScreeningPage(screeningID int) ScreeningPage {
	return ScreeningPage{ScreeningID: screeningID, Status: StatusLoading}
}

// LoadScreening fetches the screening and its seats in parallel and settles
// only once both requests have returned.
func LoadScreening(ctx context.Context, api ScreeningReader, screeningID int, logger *slog.Logger) ScreeningPage {
	logger = loggerOrDiscard(logger)
	page := NewScreeningPage(screeningID)
	if screeningID <= 0 {
		page.Status = StatusNotFound
		return page
	}

	var (
		g            errgroup.Group
		screening    model.Screening
		screeningErr error
		seats        []model.Seat
	)
	g.Go(func() error {
		screening, screeningErr = api.GetScreening(ctx, screeningID)
		return screeningErr
	})
	g.Go(func() error {
		var err error
		seats, err = api.ListSeatsByScreening(ctx, screeningID)
		return err
	})

	if err := g.Wait(); err != nil {
		if service.IsNotFound(screeningErr) {
			page.Err = screeningErr
			page.Status = StatusNotFound
			logger.InfoContext(ctx, "screening not found", "screening_id", screeningID)
			return page
		}
		page.Err = err
		page.Status = StatusError
		logger.ErrorContext(ctx, "load screening", "screening_id", screeningID, "error", err)
		return page
	}

	page.Screening = screening
	page.Seats = seats
	page.Status = StatusReady
	return page
}

func (p ScreeningPage) Message() string {
	switch p.Status {
	case StatusNotFound:
		return screeningNotFoundMessage
	case StatusError:
		return screeningLoadFailedMessage
	}
	return ""
}

// Rows derives the seat map from the current snapshot.
func (p ScreeningPage) Rows() []SeatRow {
	return Layout(p.Seats)
}

func (p ScreeningPage) Counts() SeatCount {
	return CountSeats(p.Seats)
}

func (p ScreeningPage) Seat(seatID int) (model.Seat, bool) {
	for _, seat := range p.Seats {
		if seat.Id == seatID {
			return seat, true
		}
	}
	return model.Seat{}, false
}

func (p ScreeningPage) IsSelected(seatID int) bool {
	return p.Selected != nil && p.Selected.Id == seatID
}

// Select makes seatID the selected seat and clears the last booking result.
// Booked or unknown seats are ignored, as is any change while a booking is
// in flight.
func (p *ScreeningPage) Select(seatID int) bool {
	if p.Status != StatusReady || p.Booking.InProgress {
		return false
	}
	seat, ok := p.Seat(seatID)
	if !ok || seat.IsBooked {
		return false
	}
	p.Selected = &seat
	p.Booking.Result = nil
	return true
}

// Deselect clears the selection and keeps the snapshot.
func (p *ScreeningPage) Deselect() bool {
	if p.Booking.InProgress || p.Selected == nil {
		return false
	}
	p.Selected = nil
	return true
}

// SetCustomer stores the customer fields without surrounding whitespace.
func (p *ScreeningPage) SetCustomer(name string, email string) bool {
	if p.Booking.InProgress {
		return false
	}
	p.CustomerName = strings.TrimSpace(name)
	p.CustomerEmail = strings.TrimSpace(email)
	return true
}

// BeginBooking moves the page into the in-progress state and returns the
// request to send. It reports false, changing nothing, when no seat is
// selected or a booking is already in flight.
func (p *ScreeningPage) BeginBooking() (model.BookingRequest, bool) {
	if p.Status != StatusReady || p.Selected == nil || p.Booking.InProgress {
		return model.BookingRequest{}, false
	}
	p.Booking.InProgress = true
	p.Booking.Result = nil
	p.Booking.seatID = p.Selected.Id
	return model.BookingRequest{
		Screening:     p.ScreeningID,
		Seat:          p.Selected.Id,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
	}, true
}

// FinishBooking reconciles the page with the backend's answer to the request
// returned by BeginBooking. On success the booked seat is marked in a fresh
// snapshot and the selection and customer fields are cleared; on failure
// only the result message changes.
func (p *ScreeningPage) FinishBooking(err error) bool {
	if !p.Booking.InProgress {
		return false
	}
	seatID := p.Booking.seatID
	p.Booking.InProgress = false
	p.Booking.seatID = 0

	if err != nil {
		p.Booking.Result = &BookingResult{Success: false, Message: BookingFailedMessage}
		return true
	}

	p.Seats = markBooked(p.Seats, seatID)
	p.Selected = nil
	p.CustomerName = ""
	p.CustomerEmail = ""
	p.Booking.Result = &BookingResult{Success: true, Message: BookingSucceededMessage}
	return true
}

// Submit validates the customer fields and runs one booking round trip.
func (p *ScreeningPage) Submit(ctx context.Context, api Booker, logger *slog.Logger) (model.Booking, error) {
	logger = loggerOrDiscard(logger)
	switch {
	case p.Status != StatusReady:
		return model.Booking{}, ErrPageNotReady
	case p.Booking.InProgress:
		return model.Booking{}, ErrBookingInProgress
	case p.Selected == nil:
		return model.Booking{}, ErrNoSeatSelected
	}
	if err := ValidateCustomer(p.CustomerName, p.CustomerEmail); err != nil {
		return model.Booking{}, err
	}

	req, ok := p.BeginBooking()
	if !ok {
		return model.Booking{}, ErrNoSeatSelected
	}
	booking, err := api.CreateBooking(ctx, req)
	p.FinishBooking(err)
	LogBookingOutcome(ctx, logger, req, err)
	if err != nil {
		return model.Booking{}, errors.Wrap(err, "create booking")
	}
	return booking, nil
}

func LogBookingOutcome(ctx context.Context, logger *slog.Logger, req model.BookingRequest, err error) {
	if err != nil {
		logger.WarnContext(ctx, "booking failed",
			"screening_id", req.Screening,
			"seat_id", req.Seat,
			"conflict", service.IsConflict(err),
			"error", err,
		)
		return
	}
	logger.InfoContext(ctx, "booking confirmed", "screening_id", req.Screening, "seat_id", req.Seat)
}

func markBooked(seats []model.Seat, seatID int) []model.Seat {
	next := make([]model.Seat, len(seats))
	for i, seat := range seats {
		if seat.Id == seatID {
			seat.IsBooked = true
		}
		next[i] = seat
	}
	return next
}
