package postgres

import (
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

// Client represents a Postgres client.
type Client struct {
	db *sqlx.DB
}

// DB returns the underlying database handle.
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection for graceful shutdown.
func (c *Client) Close() error {
	return c.db.Close()
}

// MustNewClient creates a new Postgres client and applies pending migrations.
func MustNewClient() *Client {
	connStr := fmt.Sprintf(
		"host=%s port=5432 user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("MARKETSYNC_PG_HOST"),
		os.Getenv("MARKETSYNC_PG_USER"),
		os.Getenv("MARKETSYNC_PG_PASSWORD"),
		os.Getenv("MARKETSYNC_PG_DB"),
	)

	db, err := sqlx.Open("pgx", connStr)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		panic(err)
	}

	if err := goose.Up(db.DB, viper.GetString("postgres.migrations_path")); err != nil {
		panic(err)
	}

	return &Client{
		db: db,
	}
}
