package cmd

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func checkCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one due-date check now and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx, o)
			if err != nil {
				return err
			}
			defer a.Close()

			rep := a.Loop.CheckNow(log.Logger.WithContext(ctx))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
}
