package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
// Returns nil if the URL is empty (postgres not configured).
func Open(url string) (*sql.DB, error) {
	if url == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Schema is the full DDL for the service. Applied by deployment tooling in
// production and by integration tests directly.
const Schema = `
CREATE TABLE IF NOT EXISTS regions (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	lat DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng DOUBLE PRECISION NOT NULL DEFAULT 0,
	tier TEXT NOT NULL DEFAULT 'sensing',
	waitlist_count INTEGER NOT NULL DEFAULT 0,
	launch_readiness INTEGER NOT NULL DEFAULT 0,
	legacy_units TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS stores (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	region_id UUID NOT NULL REFERENCES regions(id),
	chain TEXT NOT NULL DEFAULT '',
	is_premium BOOLEAN NOT NULL DEFAULT false,
	district TEXT NOT NULL DEFAULT '',
	locality TEXT NOT NULL DEFAULT '',
	lat DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	brand TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	unit TEXT NOT NULL DEFAULT '',
	tags TEXT[] NOT NULL DEFAULT '{}',
	image_ref TEXT NOT NULL DEFAULT '',
	region_id UUID NOT NULL REFERENCES regions(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS prices (
	product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	store_id UUID NOT NULL,
	cents BIGINT NOT NULL CHECK (cents >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (product_id, store_id)
);

CREATE TABLE IF NOT EXISTS signups (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	region_id UUID NOT NULL REFERENCES regions(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (email, region_id)
);

CREATE INDEX IF NOT EXISTS idx_stores_region ON stores(region_id);
CREATE INDEX IF NOT EXISTS idx_products_region ON products(region_id);
CREATE INDEX IF NOT EXISTS idx_signups_region ON signups(region_id);
`
