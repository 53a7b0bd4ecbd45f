package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"cinema-tui/config"
	"cinema-tui/logging"
	"cinema-tui/service"
	"cinema-tui/tui"
)

const appName = "cinema-tui"

type BuildInfo struct {
	Version string
	Commit  string
}

// app holds what every command needs once flags and environment are resolved.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
	client *service.Client
}

type rootFlags struct {
	apiURL    string
	timeout   time.Duration
	logFile   string
	room      int
	screening int
}

func Execute(info BuildInfo) {
	if err := newRootCmd(info).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(info BuildInfo) *cobra.Command {
	flags := &rootFlags{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Cinema booking from the terminal",
		Long:          `Browse cinema rooms, their screenings and seat maps, and book a seat :)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []tui.Option
			if flags.screening > 0 {
				opts = append(opts, tui.WithScreening(flags.screening))
			} else if flags.room > 0 {
				opts = append(opts, tui.WithRoom(flags.room))
			}
			_, err := tea.NewProgram(tui.New(a.client, a.logger, opts...), tea.WithAltScreen()).Run()
			return err
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "cinema API base URL (default from CINEMA_API_URL)")
	pf.DurationVar(&flags.timeout, "timeout", 0, "HTTP timeout, 0 waits indefinitely (default from CINEMA_HTTP_TIMEOUT)")
	pf.StringVar(&flags.logFile, "log-file", "", "write JSON logs to this file (default from CINEMA_LOG_FILE)")
	rootCmd.Flags().IntVar(&flags.room, "room", 0, "open the screenings of this room")
	rootCmd.Flags().IntVar(&flags.screening, "screening", 0, "open the seat map of this screening")

	rootCmd.AddCommand(
		newRoomsCmd(a),
		newRoomCmd(a),
		newMoviesCmd(a),
		newMovieCmd(a),
		newScreeningCmd(a),
		newBookCmd(a),
		newBookingsCmd(),
		newVersionCmd(info),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.API.BaseURL = flags.apiURL
	}
	if cmd.Flags().Changed("timeout") {
		if flags.timeout < 0 {
			return errors.Newf("--timeout must not be negative, got %s", flags.timeout)
		}
		cfg.API.Timeout = flags.timeout
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = flags.logFile
	}

	logger, closer, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.closer = closer
	a.client = service.NewClient(
		&http.Client{Timeout: cfg.API.Timeout},
		service.WithBaseURL(cfg.API.BaseURL),
		service.WithUserAgent(cfg.API.UserAgent),
		service.WithLogger(logger),
	)
	logger.Debug("starting", "command", cmd.Name(), "api_url", a.client.BaseURL())
	return nil
}

func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cinema-tui",
		Args:  cobra.NoArgs,
		// version needs neither config nor a client
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			version := info.Version
			if version == "" {
				version = "dev"
			}
			fmt.Fprintf(out, "%s %s", appName, version)
			if info.Commit != "none" && info.Commit != "" {
				fmt.Fprintf(out, " (%s)", info.Commit)
			}
			fmt.Fprintln(out)
		},
	}
}
