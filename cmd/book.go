package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"cinema-tui/model"
	"cinema-tui/store"
	"cinema-tui/viewstate"
)

type bookFlags struct {
	name  string
	email string
}

func newBookCmd(a *app) *cobra.Command {
	flags := &bookFlags{}
	bookCmd := &cobra.Command{
		Use:   "book <screening> <seat>",
		Short: "Book a seat, e.g. book 7 C4",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			screeningID, err := parseID("screening", args[0])
			if err != nil {
				return err
			}
			row, number, err := parseSeat(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			page := viewstate.LoadScreening(ctx, a.client, screeningID, a.logger)
			if page.Status != viewstate.StatusReady {
				return errors.New(page.Message())
			}
			seat, ok := findSeat(page.Seats, row, number)
			if !ok {
				return errors.Newf("seat %s-%d does not exist in this screening", row, number)
			}
			if !page.Select(seat.Id) {
				return errors.Newf("seat %s is already booked", seat.Label())
			}

			name := strings.TrimSpace(flags.name)
			if name == "" {
				if name, err = promptField("Your Name", "name"); err != nil {
					return err
				}
			}
			email := strings.TrimSpace(flags.email)
			if email == "" {
				if email, err = promptField("Email Address", "email"); err != nil {
					return err
				}
			}
			page.SetCustomer(name, email)

			out := cmd.OutOrStdout()
			booking, err := page.Submit(ctx, a.client, a.logger)
			if err != nil {
				if page.Booking.Result != nil {
					fmt.Fprintln(out, page.Booking.Result.Message)
				}
				return err
			}

			req := model.BookingRequest{Screening: screeningID, Seat: seat.Id, CustomerName: name, CustomerEmail: email}
			receipt, err := store.SaveReceipt(booking.Complete(req), page.Screening, seat)
			if err != nil {
				a.logger.WarnContext(ctx, "save receipt", "error", err)
				receipt = store.Receipt{
					BookingID:  booking.Id,
					MovieTitle: page.Screening.MovieTitle,
					RoomName:   page.Screening.RoomName,
					StartTime:  page.Screening.StartTime,
					Seat:       seat.Label(),
				}
			}

			fmt.Fprintln(out, page.Booking.Result.Message)
			t := newTable(out)
			bookingID := "-"
			if receipt.BookingID != nil {
				bookingID = strconv.Itoa(*receipt.BookingID)
			}
			t.AppendRow(table.Row{"Booking", bookingID})
			t.AppendRow(table.Row{"Movie", receipt.MovieTitle})
			t.AppendRow(table.Row{"Room", receipt.RoomName})
			t.AppendRow(table.Row{"Starts", receipt.StartTime.Local().Format("Mon, Jan 2, 3:04 PM")})
			t.AppendRow(table.Row{"Seat", receipt.Seat})
			t.Render()
			return nil
		},
	}
	bookCmd.Flags().StringVar(&flags.name, "name", "", "customer name (prompted when empty)")
	bookCmd.Flags().StringVar(&flags.email, "email", "", "customer email (prompted when empty)")
	return bookCmd
}

func newBookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List bookings made from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			receipts, err := store.LoadReceipts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(receipts) == 0 {
				fmt.Fprintln(out, "No bookings yet.")
				return nil
			}
			t := newTable(out)
			t.AppendHeader(table.Row{"Booking", "Movie", "Room", "Starts", "Seat", "Name", "Email", "Booked At"})
			for _, r := range receipts {
				bookingID := "-"
				if r.BookingID != nil {
					bookingID = strconv.Itoa(*r.BookingID)
				}
				t.AppendRow(table.Row{
					bookingID,
					r.MovieTitle,
					r.RoomName,
					r.StartTime.Local().Format("Jan 2, 3:04 PM"),
					r.Seat,
					r.CustomerName,
					r.CustomerEmail,
					r.BookedAt.Local().Format("Jan 2, 3:04 PM"),
				})
			}
			t.Render()
			return nil
		},
	}
}

// parseSeat accepts "C4", "c4", "C-4" and "C 4".
func parseSeat(arg string) (string, int, error) {
	value := strings.ToUpper(strings.TrimSpace(arg))
	split := strings.IndexFunc(value, func(r rune) bool { return !unicode.IsLetter(r) })
	if split <= 0 {
		return "", 0, errors.Newf("invalid seat %q, expected a row and a number like C4", arg)
	}
	row := value[:split]
	digits := strings.TrimLeft(value[split:], "- ")
	number, err := strconv.Atoi(digits)
	if err != nil || number <= 0 {
		return "", 0, errors.Newf("invalid seat %q, expected a row and a number like C4", arg)
	}
	return row, number, nil
}

func findSeat(seats []model.Seat, row string, number int) (model.Seat, bool) {
	for _, seat := range seats {
		if strings.EqualFold(seat.Row, row) && seat.Number == number {
			return seat, true
		}
	}
	return model.Seat{}, false
}

func promptField(label string, field string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			return viewstate.ValidateField(field, input)
		},
	}
	value, err := prompt.Run()
	if err != nil {
		return "", errors.Wrapf(err, "read %s", field)
	}
	return strings.TrimSpace(value), nil
}
