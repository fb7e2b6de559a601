package config

import (
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Timeout  struct {
			ReadHeaderSeconds int64 `envconfig:"READ_HEADER_SECONDS" default:"10"`
			WriteSeconds      int64 `envconfig:"WRITE_SECONDS"       default:"60"`
		} `envconfig:"TIMEOUT"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
	} `envconfig:"APP"`

	Booking struct {
		Currency            string `envconfig:"CURRENCY"               default:"usd"`
		DisableWeekends     bool   `envconfig:"DISABLE_WEEKENDS"       default:"true"`
		InFlightLockSeconds int    `envconfig:"IN_FLIGHT_LOCK_SECONDS" default:"300"`
	} `envconfig:"BOOKING"`

	Payment struct {
		Stripe struct {
			SecretKey string `envconfig:"SECRET_KEY"`
			URL       string `envconfig:"URL"`
		} `envconfig:"STRIPE"`
	} `envconfig:"PAYMENT"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	DB struct {
		Postgres struct {
			MaxRetry           int              `envconfig:"MAX_RETRY"            default:"3"`
			RetryWaitTime      int              `envconfig:"RETRY_WAIT_TIME"      default:"2"`
			MaxOpenConnections int              `envconfig:"MAX_OPEN_CONNECTIONS"`
			MaxIdleConnections int              `envconfig:"MAX_IDLE_CONNECTIONS"`
			MigrationTable     string           `envconfig:"MIGRATION_TABLE"`
			AutoMigrate        bool             `envconfig:"AUTO_MIGRATE"`
			Prefix             string           `envconfig:"PREFIX"`
			Read               PostgresEndpoint `envconfig:"READ"`
			Write              PostgresEndpoint `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topics struct {
			BookingConfirmed       string `envconfig:"BOOKING_CONFIRMED"       default:"booking.confirmed"`
			ReconciliationRequired string `envconfig:"RECONCILIATION_REQUIRED" default:"booking.reconciliation_required"`
		} `envconfig:"TOPICS"`
	} `envconfig:"KAFKA"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
	}
}

// PostgresEndpoint is one side of the read/write database pair.
type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE"`
}

// Database returns the endpoint's database name behind the optional environment prefix.
func (e PostgresEndpoint) Database(prefix string) string {
	return prefix + e.Name
}

// DSN renders a postgres URL for the endpoint. sslmode is always set; extra adds driver options.
func (e PostgresEndpoint) DSN(prefix string, extra url.Values) string {
	query := url.Values{}
	query.Set("sslmode", e.SSLMode)

	if e.Timezone != "" {
		query.Set("timezone", e.Timezone)
	}

	for key, values := range extra {
		query[key] = values
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + e.Database(prefix),
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

var load = sync.OnceValues(func() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using the process environment")
	}

	var conf Config
	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("processing environment variables: %w", err)
	}

	log.Info().Str("env", conf.Server.Env).Msg("Service configuration loaded")

	return &conf, nil
})

// Load reads the configuration once per process from .env and the environment.
func Load() (*Config, error) {
	return load()
}

// Get is Load for entry points that cannot run without configuration.
func Get() *Config {
	conf, err := load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	return conf
}
