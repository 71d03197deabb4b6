package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiv1 "github.com/hrygo/tourdesk/server/router/api/v1"
	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/store"
)

// withApp loads the profile, builds the app and runs fn with it.
func withApp(cmd *cobra.Command, v *viper.Viper, fn func(ctx context.Context, a *app) error) error {
	p, err := loadProfile(v)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, p)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSlotsCmd(v *viper.Viper) *cobra.Command {
	var from, to string
	var maxSlots int

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List open tour slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				avail, err := a.tours.Availability(ctx, from, to, maxSlots)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), apiv1.NewAvailabilityResponse(avail, a.tours.Location()))
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "window start (ISO-8601); defaults to now")
	cmd.Flags().StringVar(&to, "to", "", "window end (ISO-8601); defaults to seven days after from")
	cmd.Flags().IntVar(&maxSlots, "max", tour.DefaultMaxSlots, "maximum number of slots")
	return cmd
}

func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check <startISO>",
		Short: "Check whether a tour can start at the given time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				assessment := a.tours.CheckSlot(ctx, args[0])
				return printJSON(cmd.OutOrStdout(), apiv1.NewAssessmentResponse(assessment, a.tours.Location()))
			})
		},
	}
}

func newBookCmd(v *viper.Viper) *cobra.Command {
	req := &tour.BookingRequest{}

	cmd := &cobra.Command{
		Use:   "book <startISO>",
		Short: "Book a tour on the calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.StartISO = args[0]
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				out := apiv1.NewLedgerScheduler(a.tours, a.store).Book(ctx, req)
				if err := printJSON(cmd.OutOrStdout(), apiv1.NewBookingOutcomeResponse(out, a.tours.Location())); err != nil {
					return err
				}
				if !out.Booked() {
					return errors.Errorf("tour not booked: %s", out.Status)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Address, "address", "", "property address")
	cmd.Flags().StringVar(&req.Name, "name", "", "property name")
	cmd.Flags().StringVar(&req.Zpid, "zpid", "", "listing id")
	cmd.Flags().StringVar(&req.CustomerName, "customer-name", "", "customer name")
	cmd.Flags().StringVar(&req.CustomerEmail, "customer-email", "", "customer email")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "notes for the agent")
	return cmd
}

func newBookingsCmd(v *viper.Viper) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List tours recorded in the local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				list, err := a.store.ListTourBookings(ctx, &store.FindTourBooking{Limit: &limit})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), apiv1.NewBookingRecordResponses(list, a.tours.Location()))
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of rows")
	return cmd
}
