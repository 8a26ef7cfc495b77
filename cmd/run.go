package cmd

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runCmd(o *overrides) *cobra.Command {
	var (
		withAPI bool
		demo    bool
	)

	var command = &cobra.Command{
		Use:   "run",
		Short: "Run the due-date scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			if demo {
				o.store, o.presenter = "memory", "log"
			}
			a, err := newApp(ctx, o)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx = log.Logger.WithContext(ctx)
			if demo {
				if err := a.SeedDemo(ctx, time.Now()); err != nil {
					return err
				}
			}
			log.Ctx(ctx).Info().Str("store", a.Config.Store.Backend).Bool("demo", demo).Msg("BOOTING UP")
			return a.Run(ctx, withAPI)
		},
	}

	command.Flags().BoolVar(&withAPI, "api", true, "Serve the diagnostic API")
	command.Flags().BoolVar(&demo, "demo", false, "Use an in-memory store seeded with tasks due in the next minutes")
	clickFlags(command, o)
	return command
}
