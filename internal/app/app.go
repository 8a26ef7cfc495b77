package app

import (
	"context"
	"duewatch/internal/api"
	"duewatch/internal/config"
	"duewatch/internal/infra/filestore"
	"duewatch/internal/infra/memory"
	"duewatch/internal/infra/redisstore"
	"duewatch/internal/infra/sqlitestore"
	"duewatch/internal/notify"
	"duewatch/internal/ports"
	"duewatch/internal/scheduler"
	"duewatch/internal/usecase"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// App wires the scheduler to its store and notification backends. It is
// built once by the command and owns the loop's lifecycle.
type App struct {
	Config *config.Config
	Store  ports.Store
	Loop   *scheduler.Loop
	Editor usecase.Editor

	redis  *redisstore.Client
	clicks *notify.ClickListener
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	if cfg.Store.Backend == "redis" || cfg.Scheduler.Presenter == "stream" {
		a.redis = redisstore.New(cfg.Redis)
		if err := a.redis.Init(ctx); err != nil {
			a.redis.Close()
			return nil, err
		}
	}

	store, err := openStore(ctx, cfg.Store, a.redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	var (
		presenter ports.Presenter = notify.LogPresenter{}
		window    ports.Window    = notify.LogWindow{}
	)
	switch cfg.Scheduler.Presenter {
	case "log", "":
	case "stream":
		sp := notify.NewStreamPresenter(a.redis)
		presenter, window = sp, notify.PubSubWindow{C: a.redis}
		a.clicks = &notify.ClickListener{
			C:            a.redis,
			Presenter:    sp,
			ConsumerName: consumerName(cfg.Clicks.Consumer),
			BaseBackoff:  cfg.Clicks.BaseBackoff,
			MaxBackoff:   cfg.Clicks.MaxBackoff,
		}
	default:
		a.Close()
		return nil, fmt.Errorf("unknown presenter %q", cfg.Scheduler.Presenter)
	}

	d := usecase.Dispatcher{
		Store:        a.Store,
		Presenter:    presenter,
		Window:       window,
		MarkAttempts: cfg.Scheduler.MarkAttempts,
	}
	a.Loop = scheduler.New(a.Store, a.Store, d, scheduler.Config{
		Location:    loc,
		Granularity: cfg.Scheduler.Granularity,
	})
	a.Editor = usecase.Editor{Store: a.Store}
	return a, nil
}

func consumerName(name string) string {
	if name != "" {
		return name
	}
	host, _ := os.Hostname()
	return "duewatch-" + host
}

func openStore(ctx context.Context, cfg config.Store, rc *redisstore.Client) (ports.Store, error) {
	switch cfg.Backend {
	case "memory":
		return memory.New(), nil
	case "redis":
		return rc, nil
	case "file", "":
		return filestore.NewOS(cfg.FilePath)
	case "sqlite":
		return sqlitestore.Open(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Run starts the loop and its helpers and blocks until ctx ends. Hiding the
// window to the tray does not end ctx; quitting the application does.
func (a *App) Run(ctx context.Context, withAPI bool) error {
	a.Loop.Start(ctx)
	defer a.Loop.Stop()

	var jobs []job
	if withAPI {
		jobs = append(jobs, a.apiJob(a.Config.API.Port))
	}
	return a.supervise(ctx, jobs...)
}

// ServeAPI serves the diagnostic API without starting the loop, until ctx
// ends or the server fails. Notifications shown by POST /check still get
// their clicks when the stream presenter is in use.
func (a *App) ServeAPI(ctx context.Context, port int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := a.apiJob(port)
	serve := srv.fn
	srv.fn = func(ctx context.Context) error {
		defer cancel()
		return serve(ctx)
	}
	return a.supervise(ctx, srv)
}

type job struct {
	name string
	fn   func(context.Context) error
}

func (a *App) apiJob(port int) job {
	srv := api.NewServer(a.Loop, a.Editor)
	return job{name: "api", fn: func(ctx context.Context) error { return srv.Run(ctx, port) }}
}

// supervise runs jobs and the click listener, if any, until ctx ends.
func (a *App) supervise(ctx context.Context, jobs ...job) error {
	if a.clicks != nil {
		jobs = append(jobs, job{name: "click listener", fn: a.clicks.Run})
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := j.fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Ctx(ctx).Error().Err(err).Msgf("%s stopped with error", j.name)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", j.name, err))
				mu.Unlock()
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return errors.Join(errs...)
}

func (a *App) Close() error {
	var errs []error
	if a.Store != nil && a.Store != ports.Store(a.redis) {
		errs = append(errs, a.Store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
