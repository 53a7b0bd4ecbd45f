package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"cinema-tui/model"
	"cinema-tui/service"
	"cinema-tui/store"
	"cinema-tui/viewstate"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	return t
}

func parseID(kind string, arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, errors.Newf("invalid %s id %q", kind, arg)
	}
	return id, nil
}

func newRoomsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List cinema rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms := viewstate.LoadRoomList(cmd.Context(), a.client, store.RecentRoomIDs(), a.logger)
			out := cmd.OutOrStdout()
			if msg := rooms.Message(); msg != "" {
				fmt.Fprintln(out, msg)
				if rooms.Status == viewstate.StatusError {
					return errors.New(msg)
				}
				return nil
			}

			t := newTable(out)
			t.AppendHeader(table.Row{"ID", "Room", "Capacity", "Color", ""})
			for _, entry := range rooms.Rooms {
				recent := ""
				if entry.Recent {
					recent = "recent"
				}
				t.AppendRow(table.Row{entry.Room.Id, entry.Room.Name, entry.Room.Capacity, entry.Room.DisplayColor(), recent})
			}
			t.Render()
			return nil
		},
	}
}

func newRoomCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "room <id>",
		Short: "Show a room and its screenings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseID("room", args[0])
			if err != nil {
				return err
			}
			page := viewstate.LoadRoom(cmd.Context(), a.client, roomID, a.logger)
			if page.Status != viewstate.StatusReady {
				return errors.New(page.Message())
			}
			if err := store.RememberRoom(page.Room); err != nil {
				a.logger.WarnContext(cmd.Context(), "remember room", "room_id", roomID, "error", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Room\nCapacity: %d seats\n\n", page.Room.Name, page.Room.Capacity)
			if msg := page.Message(); msg != "" {
				fmt.Fprintln(out, msg)
				return nil
			}

			t := newTable(out)
			t.AppendHeader(table.Row{"ID", "Movie", "Date", "Time"})
			for _, s := range page.Screenings {
				start := s.StartTime.Local()
				t.AppendRow(table.Row{s.Id, s.MovieTitle, start.Format("Mon, Jan 2"), start.Format("3:04 PM")})
			}
			t.Render()
			return nil
		},
	}
}

func newMoviesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "movies",
		Short: "List movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			movies, err := a.client.ListMovies(cmd.Context())
			if err != nil {
				if !service.IsFetchError(err) {
					return errors.Wrap(err, "list movies")
				}
				a.logger.WarnContext(cmd.Context(), "list movies failed, showing none", "error", err)
				movies = nil
			}
			out := cmd.OutOrStdout()
			if len(movies) == 0 {
				fmt.Fprintln(out, "No movies available.")
				return nil
			}
			t := newTable(out)
			t.AppendHeader(table.Row{"ID", "Title", "Duration"})
			for _, m := range movies {
				t.AppendRow(table.Row{m.Id, m.Title, formatDuration(m)})
			}
			t.Render()
			return nil
		},
	}
}

func newMovieCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "movie <id>",
		Short: "Show a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := parseID("movie", args[0])
			if err != nil {
				return err
			}
			movie, err := a.client.GetMovie(cmd.Context(), movieID)
			if err != nil {
				return errors.Wrapf(err, "get movie %d", movieID)
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendRow(table.Row{"Title", movie.Title})
			t.AppendRow(table.Row{"Duration", formatDuration(movie)})
			if movie.Poster != nil && *movie.Poster != "" {
				t.AppendRow(table.Row{"Poster", *movie.Poster})
			}
			t.AppendRow(table.Row{"Description", movie.Description})
			t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
			t.Render()
			return nil
		},
	}
}

func newScreeningCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "screening <id>",
		Short: "Show the seat map of a screening",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			screeningID, err := parseID("screening", args[0])
			if err != nil {
				return err
			}
			page := viewstate.LoadScreening(cmd.Context(), a.client, screeningID, a.logger)
			if page.Status != viewstate.StatusReady {
				return errors.New(page.Message())
			}
			var movie *model.Movie
			if m, err := a.client.GetMovie(cmd.Context(), page.Screening.Movie); err != nil {
				a.logger.WarnContext(cmd.Context(), "get screening movie", "movie_id", page.Screening.Movie, "error", err)
			} else {
				movie = &m
			}
			renderScreening(cmd.OutOrStdout(), page, movie)
			return nil
		},
	}
}

// renderScreening prints the screening header and its seat rows. The end time
// is shown only when the movie is known.
func renderScreening(out io.Writer, page viewstate.ScreeningPage, movie *model.Movie) {
	s := page.Screening
	when := s.StartTime.Local().Format("Mon, Jan 2, 3:04 PM")
	if movie != nil && movie.Duration > 0 {
		when += " – " + s.EndTime(*movie).Local().Format("3:04 PM")
	}
	fmt.Fprintf(out, "%s\n%s Room • %s\n\n", s.MovieTitle, s.RoomName, when)

	t := newTable(out)
	t.SetTitle("SCREEN")
	t.AppendHeader(table.Row{"Row", "Seats", "Available"})
	for _, row := range page.Rows() {
		labels := make([]string, 0, len(row.Seats))
		available := 0
		for _, seat := range row.Seats {
			if seat.IsBooked {
				labels = append(labels, "XX")
				continue
			}
			available++
			labels = append(labels, strconv.Itoa(seat.Number))
		}
		t.AppendRow(table.Row{row.Label, strings.Join(labels, " "), available})
	}
	counts := page.Counts()
	t.AppendFooter(table.Row{"", fmt.Sprintf("Booked: %d • Total: %d", counts.Booked, counts.Total), counts.Available})
	t.Render()
}

func formatDuration(m model.Movie) string {
	return fmt.Sprintf("%d min", int(m.Runtime().Minutes()))
}
