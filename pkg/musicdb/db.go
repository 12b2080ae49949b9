// Package musicdb implements the customer identity, billing, and music
// catalog stores on Postgres via bun. All stores are read-only to the
// workflow core; schema setup and sample data live here with the rest of the
// database glue.
package musicdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// lookupLimit caps every catalog result set.
const lookupLimit = 5

type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"10"`
}

type DB struct {
	bun *bun.DB
}

func Open(cfg Config) (*DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("musicdb: dsn is required")
	}

	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
	)
	sqldb := sql.OpenDB(connector)
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return &DB{bun: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.bun.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.bun.Close()
}

/* --------------------------------- models -------------------------------- */

type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID          string `bun:"id,pk"`
	PhoneNumber string `bun:"phone_number,notnull,unique"`
	Email       string `bun:"email,notnull,unique"`
}

type InvoiceRow struct {
	bun.BaseModel `bun:"table:invoices,alias:i"`

	ID           string  `bun:"id,pk"`
	CustomerID   string  `bun:"customer_id,notnull"`
	Amount       float64 `bun:"amount"`
	Date         string  `bun:"date,notnull"`
	EmployeeName string  `bun:"employee_name,notnull"`
}

type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:ar"`

	ID   int64  `bun:"id,pk"`
	Name string `bun:"name,notnull,unique"`
}

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID   int64  `bun:"id,pk"`
	Name string `bun:"name,notnull,unique"`
}

type Album struct {
	bun.BaseModel `bun:"table:albums,alias:al"`

	ID       int64  `bun:"id,pk"`
	ArtistID int64  `bun:"artist_id,notnull"`
	Title    string `bun:"title,notnull"`
}

type Track struct {
	bun.BaseModel `bun:"table:tracks,alias:t"`

	ID      int64  `bun:"id,pk"`
	AlbumID int64  `bun:"album_id,notnull"`
	GenreID int64  `bun:"genre_id,notnull"`
	Name    string `bun:"name,notnull"`
}

/* --------------------------------- schema -------------------------------- */

// EnsureSchema creates the tables when they do not exist yet.
func (d *DB) EnsureSchema(ctx context.Context) error {
	models := []any{
		(*Customer)(nil),
		(*InvoiceRow)(nil),
		(*Artist)(nil),
		(*Genre)(nil),
		(*Album)(nil),
		(*Track)(nil),
	}
	for _, model := range models {
		if _, err := d.bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("musicdb: create table for %T: %w", model, err)
		}
	}
	return nil
}
