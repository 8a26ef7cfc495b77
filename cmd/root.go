package cmd

import (
	"context"
	"duewatch/internal/app"
	"duewatch/internal/config"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type overrides struct {
	store     string
	timezone  string
	presenter string

	consumer    string
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func Run() {
	var o overrides
	var command = &cobra.Command{
		Use:   "duewatch",
		Short: "Due-date notifications for the task manager",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}
	command.PersistentFlags().StringVar(&o.store, "store", "", "Store backend: memory, file, redis, sqlite")
	command.PersistentFlags().StringVar(&o.timezone, "timezone", "", "User timezone (IANA name or ±HH:MM)")

	command.AddCommand(runCmd(&o))
	command.AddCommand(apiCmd(&o))
	command.AddCommand(checkCmd(&o))

	if err := command.Execute(); err != nil {
		log.Fatal().Msgf("failed to execute command, err: %v", err.Error())
	}
}

// load reads the configuration, applies flag overrides and sets up logging.
func load(o *overrides) *config.Config {
	cfg := config.Load()
	if o.store != "" {
		cfg.Store.Backend = o.store
	}
	if o.timezone != "" {
		cfg.Scheduler.Timezone = o.timezone
	}
	if o.presenter != "" {
		cfg.Scheduler.Presenter = o.presenter
	}
	if o.consumer != "" {
		cfg.Clicks.Consumer = o.consumer
	}
	if o.baseBackoff > 0 {
		cfg.Clicks.BaseBackoff = o.baseBackoff
	}
	if o.maxBackoff > 0 {
		cfg.Clicks.MaxBackoff = o.maxBackoff
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
	return cfg
}

// clickFlags adds the click listener flags; unset flags keep the CLICKS_*
// environment values.
func clickFlags(command *cobra.Command, o *overrides) {
	command.Flags().StringVar(&o.consumer, "consumer", "", "Click consumer name (default duewatch-<host>)")
	command.Flags().DurationVar(&o.baseBackoff, "base-backoff", 0, "Base click read backoff (default from CLICKS_BASE_BACKOFF)")
	command.Flags().DurationVar(&o.maxBackoff, "max-backoff", 0, "Max click read backoff (default from CLICKS_MAX_BACKOFF)")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newApp(ctx context.Context, o *overrides) (*app.App, error) {
	cfg := load(o)
	return app.New(log.Logger.WithContext(ctx), cfg)
}
