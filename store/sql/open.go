package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config satisfies the go-persistence-bun client config.
type Config struct {
	Driver         string        `koanf:"driver" mapstructure:"driver"`
	DSN            string        `koanf:"dsn" mapstructure:"dsn"`
	Debug          bool          `koanf:"debug" mapstructure:"debug"`
	PingTimeout    time.Duration `koanf:"ping_timeout" mapstructure:"ping_timeout"`
	OtelIdentifier string        `koanf:"otel_identifier" mapstructure:"otel_identifier"`
}

func (c Config) GetDebug() bool {
	return c.Debug
}

func (c Config) GetDriver() string {
	return normalizeDriver(c.Driver)
}

func (c Config) GetServer() string {
	return c.DSN
}

func (c Config) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c Config) GetOtelIdentifier() string {
	if strings.TrimSpace(c.OtelIdentifier) == "" {
		return "go-accounts"
	}
	return c.OtelIdentifier
}

// Open connects to postgres or sqlite and returns a persistence client with
// the account migrations registered for the matching dialect. Call Migrate
// on the client to apply them.
func Open(ctx context.Context, cfg Config) (*persistence.Client, error) {
	driver := cfg.GetDriver()
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}

	var dialect schema.Dialect
	var migrationDialect string
	switch driver {
	case DriverPostgres:
		dialect = pgdialect.New()
		migrationDialect = migrations.DialectPostgres
	case DriverSQLite:
		dialect = sqlitedialect.New()
		migrationDialect = migrations.DialectSQLite
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := migrations.Register(migrationDialect, func(fsys fs.FS) {
		client.RegisterSQLMigrations(fsys)
	}); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func normalizeDriver(driver string) string {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	default:
		return strings.TrimSpace(strings.ToLower(driver))
	}
}
