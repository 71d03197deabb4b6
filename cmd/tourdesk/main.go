package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/tourdesk/internal/profile"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	v := profile.NewViper()

	root := &cobra.Command{
		Use:           "tourdesk",
		Short:         "Property tour scheduling against a shared Google Calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return profile.BindFlags(v, cmd.Flags())
		},
	}

	addProfileFlags(root)

	root.AddCommand(newServeCmd(v))
	root.AddCommand(newSlotsCmd(v))
	root.AddCommand(newCheckCmd(v))
	root.AddCommand(newBookCmd(v))
	root.AddCommand(newBookingsCmd(v))
	root.AddCommand(newVersionCmd())
	return root
}

// addProfileFlags registers the flags shared by every command. Their names match profile keys.
func addProfileFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("mode", "dev", `mode of the process, "dev" or "prod"`)
	flags.String("host", "0.0.0.0", "address of the HTTP server")
	flags.Int("port", 8000, "port of the HTTP server")
	flags.String("cors-origins", "*", "comma separated allowed CORS origins")
	flags.String("timezone", "Asia/Kolkata", "IANA time zone of the calendar")
	flags.String("calendar-id", "primary", "Google Calendar id")
	flags.Int("visit-duration-minutes", 60, "length of one tour in minutes")
	flags.Int("travel-buffer-minutes", 30, "travel buffer around every event in minutes")
	flags.Int("working-hours-start", 10, "first working hour")
	flags.Int("working-hours-end", 18, "hour by which every tour must end")
	flags.String("working-days", "mon,tue,wed,thu,fri", "comma separated working days")
	flags.String("listings-path", "", "listings JSON file; empty uses the bundled sample")
	flags.String("db-path", ":memory:", "sqlite DSN of the booking ledger")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// loadProfile reads and validates the profile, then installs the default logger.
func loadProfile(v *viper.Viper) (*profile.Profile, error) {
	p := profile.Load(v)
	p.Version = version
	setupLogger(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func setupLogger(p *profile.Profile) {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
