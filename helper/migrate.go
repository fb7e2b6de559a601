package helper

//nolint:revive
import (
	"cowork/config"
	"cowork/migrations"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionStepUp = "step-up"
	ActionDrop   = "drop"
)

type step struct {
	run     func(mig *migrate.Migrate) error
	failure string
	success string
}

var steps = map[string]step{
	ActionUp: {
		run:     func(mig *migrate.Migrate) error { return mig.Up() },
		failure: "error running migrations",
		success: "Database migrations completed successfully",
	},
	ActionStepUp: {
		run:     func(mig *migrate.Migrate) error { return mig.Steps(1) },
		failure: "error running migrations",
		success: "Database migrations completed successfully",
	},
	ActionDown: {
		run:     func(mig *migrate.Migrate) error { return mig.Steps(-1) },
		failure: "error rolling back migrations",
		success: "Database migrations rolled back successfully",
	},
	ActionDrop: {
		run:     func(mig *migrate.Migrate) error { return mig.Down() },
		failure: "error rolling back migrations",
		success: "Database migrations rolled back successfully",
	},
}

// ConnectionString points at the write database. The migrations table is only
// overridden when configured.
func ConnectionString(config *config.Config) string {
	extra := url.Values{}

	if table := config.DB.Postgres.MigrationTable; table != "" {
		extra.Set("x-migrations-table", table)
	}

	return config.DB.Postgres.Write.DSN(config.DB.Postgres.Prefix, extra)
}

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, migrations.PostgresDir)
	if err != nil {
		return nil, fmt.Errorf("error opening embedded migrations: %w", err)
	}

	mig, err := migrate.NewWithSourceInstance("iofs", source, ConnectionString(config))
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func Runner(config *config.Config, action string) error {
	current, ok := steps[action]
	if !ok {
		return fmt.Errorf("unknown migration action %q", action)
	}

	mig, err := getConnection(config)
	if err != nil {
		return err
	}

	defer mig.Close()

	if err := current.run(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", current.failure, err)
	}

	log.Info().Str("action", action).Msg(current.success)

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, ActionUp)
}

func StepUp(config *config.Config) error {
	return Runner(config, ActionStepUp)
}

func Down(config *config.Config) error {
	return Runner(config, ActionDown)
}

func Drop(config *config.Config) error {
	return Runner(config, ActionDrop)
}
