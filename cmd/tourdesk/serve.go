package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/tourdesk/server"
	apiv1 "github.com/hrygo/tourdesk/server/router/api/v1"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduling assistant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile(v)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, p)
			if err != nil {
				return err
			}
			defer a.Close()

			tourAgent, err := a.newAgent(apiv1.NewLedgerScheduler(a.tours, a.store))
			if err != nil {
				return err
			}
			var runner apiv1.AgentRunner
			if tourAgent != nil {
				runner = tourAgent
			}

			return server.NewServer(p, a.store, a.tours, runner).Start(ctx)
		},
	}
}
