package postgres

//nolint:revive
import (
	"context"
	"cowork/config"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxIdleConnection = 10
	defaultMaxOpenConnection = 10
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(config *config.Config) *Connection {
	return &Connection{
		Read:  connect(config, "read", config.DB.Postgres.Read),
		Write: connect(config, "write", config.DB.Postgres.Write),
	}
}

// WithTx runs fn inside a write transaction. It commits when fn returns nil and rolls back otherwise.
func (c *Connection) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (c *Connection) Close() {
	for _, db := range []*sqlx.DB{c.Read, c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database connection")
		}
	}
}

// connect retries up to MaxRetry times and exits the process when the database never answers.
func connect(cfg *config.Config, name string, ep config.PostgresEndpoint) *sqlx.DB {
	pg := cfg.DB.Postgres
	descriptor := ep.DSN(pg.Prefix, nil)

	logger := log.With().Str("name", name).Str("host", ep.Host).Str("dbName", ep.Database(pg.Prefix)).Logger()

	maxOpen := pg.MaxOpenConnections
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConnection
	}

	maxIdle := pg.MaxIdleConnections
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConnection
	}

	for attempt := 1; attempt <= max(pg.MaxRetry, 1); attempt++ {
		sqlDB, err := sqlx.Connect("postgres", descriptor)
		if err == nil {
			sqlDB.SetMaxIdleConns(maxIdle)
			sqlDB.SetMaxOpenConns(maxOpen)

			logger.Info().Str("port", ep.Port).Msg("Connected to database")

			return sqlDB
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(pg.RetryWaitTime) * time.Second)
	}

	logger.Fatal().Msg("Giving up connecting to database")

	return nil
}
