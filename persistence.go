package auth

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// DBConfig is the persistence configuration plus the DSN the driver
// opens. persistence.Config itself does not carry the DSN, callers
// satisfy both with one config type.
type DBConfig interface {
	persistence.Config
	GetDSN() string
}

// OpenDatabase wires the sqlite-backed bun client: registers the models,
// mounts the embedded migrations and runs them. The users table carries
// the UNIQUE email constraint the signup race relies on, so skipping
// migrations is not an option for a functional store.
func OpenDatabase(ctx context.Context, cfg DBConfig) (*bun.DB, error) {
	db, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel((*User)(nil))

	client, err := persistence.New(cfg, db, sqlitedialect.New())
	if err != nil {
		return nil, err
	}

	migrationsFS, err := fs.Sub(GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return nil, err
	}

	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}

	return client.DB(), nil
}
