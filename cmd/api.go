package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func apiCmd(o *overrides) *cobra.Command {
	var port int
	var command = &cobra.Command{
		Use:   "api",
		Short: "Serve the diagnostic API without running the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx, o)
			if err != nil {
				return err
			}
			defer a.Close()

			if port == 0 {
				port = a.Config.API.Port
			}
			return a.ServeAPI(log.Logger.WithContext(ctx), port)
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 0, "Port to run the server on (default from API_PORT)")
	clickFlags(command, o)
	return command
}
