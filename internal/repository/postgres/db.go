package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// RunMigrations applies any pending migrations from migrationsPath.
// golang-migrate only accepts the postgres:// scheme form of the DSN.
func RunMigrations(dsn string, migrationsPath string) error {
	migrateDSN := dsn
	if strings.HasPrefix(migrateDSN, "postgresql://") {
		migrateDSN = "postgres://" + strings.TrimPrefix(migrateDSN, "postgresql://")
	}
	m, err := migrate.New("file://"+migrationsPath, migrateDSN)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
