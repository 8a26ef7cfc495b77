package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"log"
)

type Config struct {
	Redis     Redis
	Store     Store
	Scheduler Scheduler
	Clicks    Clicks
	API       API
	Log       Log
}

type Redis struct {
	Addr           string `env:"Redis_Address" envDefault:"localhost:6379"`
	Password       string `env:"Redis_Password"`
	DB             int    `env:"Redis_DB"`
	TasksKey       string `env:"Redis_TasksKey" envDefault:"duewatch:tasks"`
	SettingsKey    string `env:"Redis_SettingsKey" envDefault:"duewatch:settings"`
	NotifyStream   string `env:"Redis_NotifyStream" envDefault:"duewatch:notifications"`
	ClickStream    string `env:"Redis_ClickStream" envDefault:"duewatch:clicks"`
	ClickGroup     string `env:"Redis_ClickGroup" envDefault:"duewatch"`
	ForegroundChan string `env:"Redis_ForegroundChannel" envDefault:"duewatch:foreground"`
}

type Store struct {
	// Backend is one of memory, redis, file, sqlite.
	Backend    string `env:"STORE_BACKEND" envDefault:"file"`
	FilePath   string `env:"STORE_FILE" envDefault:"config.json"`
	SQLitePath string `env:"STORE_SQLITE" envDefault:"duewatch.db"`
}

type Scheduler struct {
	// Timezone is an IANA name or a ±HH:MM offset; empty means host local.
	Timezone     string        `env:"SCHEDULER_TIMEZONE"`
	Granularity  time.Duration `env:"SCHEDULER_GRANULARITY" envDefault:"1m"`
	MarkAttempts int           `env:"SCHEDULER_MARK_ATTEMPTS" envDefault:"3"`
	// Presenter is log or stream.
	Presenter string `env:"SCHEDULER_PRESENTER" envDefault:"log"`
}

// Clicks configures the click listener used with the stream presenter.
type Clicks struct {
	// Consumer is the consumer group member name; empty means duewatch-<host>.
	Consumer    string        `env:"CLICKS_CONSUMER"`
	BaseBackoff time.Duration `env:"CLICKS_BASE_BACKOFF" envDefault:"500ms"`
	MaxBackoff  time.Duration `env:"CLICKS_MAX_BACKOFF" envDefault:"30s"`
}

type API struct {
	Port int `env:"API_PORT" envDefault:"8092"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY"`
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	c, err := Parse()
	if err != nil {
		log.Fatal(err)
	}
	return c
}

func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var (
	ErrInvalidTimezone    = errors.New("invalid timezone")
	ErrInvalidGranularity = errors.New("invalid granularity")
)

// Validate rejects a granularity that would step over a minute. Due tasks
// match on the exact minute, so every minute boundary must get a check.
func (s Scheduler) Validate() error {
	g := s.Granularity
	if g == 0 {
		return nil
	}
	if g < 0 || g > time.Minute || time.Minute%g != 0 {
		return fmt.Errorf("%w: %v must divide one minute", ErrInvalidGranularity, g)
	}
	return nil
}

// Location resolves Timezone.
func (s Scheduler) Location() (*time.Location, error) {
	return LocationFromTZ(s.Timezone)
}

func LocationFromTZ(tz string) (*time.Location, error) {
	switch tz {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	if loc, ok := parseOffsetLocation(tz); ok {
		return loc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
}

func parseOffsetLocation(tz string) (*time.Location, bool) {
	if len(tz) != 6 || (tz[0] != '+' && tz[0] != '-') || tz[3] != ':' {
		return nil, false
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil || hours > 23 {
		return nil, false
	}
	minutes, err := strconv.Atoi(tz[4:6])
	if err != nil || minutes > 59 {
		return nil, false
	}
	offset := hours*3600 + minutes*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), true
}
