package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
)

const (
	defaultConnAttempts = 10
	connRetryDelay      = time.Second
	connTimeout         = 5 * time.Second
)

// NewPostgresClient connects to postgres with retries and applies subscription store migrations.
func NewPostgresClient(ctx context.Context, cfg *config.Config) *sqlx.DB {
	dataSourceName := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.DbName,
		cfg.Postgres.Password,
	)

	var db *sqlx.DB
	var err error

	for attemptsLeft := defaultConnAttempts; attemptsLeft > 0; attemptsLeft-- {
		db, err = connect(ctx, dataSourceName)
		if err == nil {
			break
		}

		slog.Info("Postgres is trying to connect", slog.Int("attempts left", attemptsLeft-1), slog.String("err", err.Error()))

		time.Sleep(connRetryDelay)
	}

	if err != nil {
		slog.Error("Postgres connection attempts exhausted")
		panic(err)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)
	slog.Info("Postgres connected")

	migratePostgres(db, cfg.Postgres.MigrationDir)
	slog.Info("postgres migrated successfully", slog.String("dir", cfg.Postgres.MigrationDir))

	return db
}

func connect(ctx context.Context, dataSourceName string) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connTimeout)
	defer cancel()

	return sqlx.ConnectContext(ctx, "pgx", dataSourceName)
}

func migratePostgres(db *sqlx.DB, migrationDir string) {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		slog.Error("postgres migration failed on postgres.WithInstance", slog.String("err", err.Error()))
		panic(err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationDir),
		"postgres",
		driver,
	)
	if err != nil {
		slog.Error("postgres migration failed on migrate.NewWithDatabaseInstance", slog.String("err", err.Error()))
		panic(err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		slog.Error("postgres migration failed on m.Up()", slog.String("err", err.Error()))
		panic(err)
	}
}
