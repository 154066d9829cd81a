package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type config struct {
	Production         bool          `env:"PRODUCTION" envDefault:"false"`
	Port               string        `env:"PORT" envDefault:"80"`
	PostgresUrl        string        `env:"POSTGRES_URL,required"`
	RedisUrl           string        `env:"REDIS_URL" envDefault:"redis:6379"`
	XPLedgerKey        string        `env:"XP_LEDGER_KEY" envDefault:"xp:ledger"`
	CalendarTimezone   string        `env:"CALENDAR_TIMEZONE" envDefault:"UTC"`
	CompletionFallback string        `env:"COMPLETION_FALLBACK" envDefault:"reject"`
	MaxWindow          time.Duration `env:"MAX_WINDOW" envDefault:"9600h"`
	MaxOccurrences     int           `env:"MAX_OCCURRENCES" envDefault:"5000"`
	PushNotifications  bool          `env:"PUSH_NOTIFICATIONS" envDefault:"false"`
	Migrate            bool          `env:"MIGRATE" envDefault:"true"`
}

var conf config

// Load reads the configuration from the environment. It must run before any getter is used.
func Load() error {
	var c config
	if err := env.Parse(&c); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := time.LoadLocation(c.CalendarTimezone); err != nil {
		return fmt.Errorf("invalid CALENDAR_TIMEZONE: %w", err)
	}

	switch c.CompletionFallback {
	case "reject", "family_admin":
	default:
		return fmt.Errorf("invalid COMPLETION_FALLBACK %q", c.CompletionFallback)
	}

	conf = c
	return nil
}

func Production() bool {
	return conf.Production
}

func Port() string {
	return conf.Port
}

func PostgresURL() string {
	return conf.PostgresUrl
}

func RedisURL() string {
	return conf.RedisUrl
}

func XPLedgerKey() string {
	return conf.XPLedgerKey
}

// CalendarLocation is the zone stored wall-clock times are interpreted in on export.
func CalendarLocation() *time.Location {
	loc, err := time.LoadLocation(conf.CalendarTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func CompletionFallback() string {
	return conf.CompletionFallback
}

func MaxWindow() time.Duration {
	return conf.MaxWindow
}

func MaxOccurrences() int {
	return conf.MaxOccurrences
}

func PushNotifications() bool {
	return conf.PushNotifications
}

func Migrate() bool {
	return conf.Migrate
}
