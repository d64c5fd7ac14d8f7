package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"agenthub/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type DB struct {
	*sqlx.DB
	log *zap.Logger
}

func New(db *sqlx.DB, log *zap.Logger) *DB {
	return &DB{DB: db, log: log}
}

func DSN(cfg config.DB) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DbHOST,
		cfg.DbPORT,
		cfg.DbUSER,
		cfg.DbPASSWORD,
		cfg.DbNAME,
		cfg.DbSSLMODE,
	)
}

func ConnectDB(ctx context.Context, cfg config.DB, log *zap.Logger) (*DB, error) {
	log.Info("connecting to database", zap.String("host", cfg.DbHOST), zap.String("dbname", cfg.DbNAME))

	conn, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	db := New(conn, log)

	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		conn.Close()
		return nil, err
	}

	if err := db.HealthCheck(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database health check: %w", err)
	}

	log.Info("connected to postgres")
	return db, nil
}

// RunMigrations executes the schema file. Every statement in it is idempotent.
func (db *DB) RunMigrations(ctx context.Context, migrationFilePath string) error {
	migrationSQL, err := os.ReadFile(migrationFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("migration file not found: %s", migrationFilePath)
		}
		return fmt.Errorf("read migration file: %w", err)
	}

	db.log.Info("applying migrations", zap.String("path", migrationFilePath))

	if _, err := db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return errors.New("database connection is not initialized")
	}

	return db.PingContext(ctx)
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}
