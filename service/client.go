package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"cinema-tui/model"
)

const (
	DefaultBaseURL   = "http://localhost:8000/api"
	defaultUserAgent = "cinema-tui"
	maxErrorBody     = 8 << 10
)

// Client wraps HTTP access to the cinema booking API. It makes exactly one
// attempt per call and keeps no state between calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(userAgent) != "" {
			c.userAgent = userAgent
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new API client. If httpClient is nil, a default client is used.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root every endpoint is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListRooms fetches every room.
func (c *Client) ListRooms(ctx context.Context) ([]model.Room, error) {
	var page model.Page[model.Room]
	if err := c.getJSON(ctx, "/rooms/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// GetRoom fetches a single room by id.
func (c *Client) GetRoom(ctx context.Context, roomID int) (model.Room, error) {
	if roomID <= 0 {
		return model.Room{}, errors.Newf("invalid room id %d", roomID)
	}
	var room model.Room
	if err := c.getJSON(ctx, fmt.Sprintf("/rooms/%d/", roomID), &room); err != nil {
		return model.Room{}, err
	}
	return room, nil
}

// ListMovies fetches every movie.
func (c *Client) ListMovies(ctx context.Context) ([]model.Movie, error) {
	var page model.Page[model.Movie]
	if err := c.getJSON(ctx, "/movies/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// GetMovie fetches a single movie by id.
func (c *Client) GetMovie(ctx context.Context, movieID int) (model.Movie, error) {
	if movieID <= 0 {
		return model.Movie{}, errors.Newf("invalid movie id %d", movieID)
	}
	var movie model.Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/movies/%d/", movieID), &movie); err != nil {
		return model.Movie{}, err
	}
	return movie, nil
}

// ListScreeningsByRoom fetches the screenings scheduled in a room.
func (c *Client) ListScreeningsByRoom(ctx context.Context, roomID int) ([]model.Screening, error) {
	if roomID <= 0 {
		return nil, errors.Newf("invalid room id %d", roomID)
	}
	var screenings []model.Screening
	if err := c.getJSON(ctx, fmt.Sprintf("/room/%d/screenings/", roomID), &screenings); err != nil {
		return nil, err
	}
	return screenings, nil
}

// GetScreening fetches a single screening by id.
func (c *Client) GetScreening(ctx context.Context, screeningID int) (model.Screening, error) {
	if screeningID <= 0 {
		return model.Screening{}, errors.Newf("invalid screening id %d", screeningID)
	}
	var screening model.Screening
	if err := c.getJSON(ctx, fmt.Sprintf("/screenings/%d/", screeningID), &screening); err != nil {
		return model.Screening{}, err
	}
	return screening, nil
}

// ListSeatsByScreening fetches the seats of a screening's room together with
// their booking flag for that screening.
func (c *Client) ListSeatsByScreening(ctx context.Context, screeningID int) ([]model.Seat, error) {
	if screeningID <= 0 {
		return nil, errors.Newf("invalid screening id %d", screeningID)
	}
	var seats []model.Seat
	if err := c.getJSON(ctx, fmt.Sprintf("/screenings/%d/seats/", screeningID), &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

// CreateBooking books one seat for one screening.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	if req.Screening <= 0 || req.Seat <= 0 {
		return model.Booking{}, errors.New("screening and seat are required")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return model.Booking{}, errors.Wrap(err, "encode booking request")
	}
	var booking model.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings/", payload, &booking); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte, out any) error {
	endpoint := c.baseURL + path
	requestID := uuid.NewString()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "api request failed",
			"method", method, "endpoint", endpoint, "request_id", requestID, "error", err)
		return errors.Mark(errors.Wrapf(err, "%s %s", method, endpoint), ErrNetwork)
	}
	defer res.Body.Close()

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"endpoint", endpoint,
		"status", res.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return markStatus(&APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(snippet)),
		})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrapf(err, "decode response from %s", endpoint)
	}
	return nil
}
