package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"basketwise/internal/catalog/models"
	"basketwise/pkg/domain"
	"basketwise/pkg/platform/sentinel"
)

// Postgres persists products and their per-store prices in PostgreSQL.
// Prices deliberately carry no foreign key onto stores: the catalog and the
// directory evolve independently and a dangling reference is tolerated, not
// rejected.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed catalog store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Upsert(ctx context.Context, p *models.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert product: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO products (id, name, brand, category, unit, tags, image_ref, region_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			category = EXCLUDED.category,
			unit = EXCLUDED.unit,
			tags = EXCLUDED.tags,
			image_ref = EXCLUDED.image_ref,
			region_id = EXCLUDED.region_id
	`
	_, err = tx.ExecContext(ctx, query,
		uuid.UUID(p.ID), p.Name, p.Brand, p.Category, p.Unit,
		pq.Array(p.Tags), p.ImageRef, uuid.UUID(p.RegionID),
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE product_id = $1`, uuid.UUID(p.ID)); err != nil {
		return fmt.Errorf("clear prices: %w", err)
	}
	for storeID, cents := range p.Prices {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO prices (product_id, store_id, cents) VALUES ($1, $2, $3)`,
			uuid.UUID(p.ID), uuid.UUID(storeID), int64(cents))
		if err != nil {
			return fmt.Errorf("insert price: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert product: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ProductID) (*models.Product, error) {
	query := `
		SELECT id, name, brand, category, unit, tags, image_ref, region_id
		FROM products
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(id))
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadPrices(ctx, []*models.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Postgres) ListByRegion(ctx context.Context, regionID domain.RegionID, category string) ([]*models.Product, error) {
	query := `
		SELECT id, name, brand, category, unit, tags, image_ref, region_id
		FROM products
		WHERE region_id = $1 AND ($2 = '' OR lower(category) = lower($2))
		ORDER BY created_at, id
	`
	return s.list(ctx, query, uuid.UUID(regionID), category)
}

func (s *Postgres) ListAll(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT id, name, brand, category, unit, tags, image_ref, region_id
		FROM products
		ORDER BY created_at, id
	`
	return s.list(ctx, query)
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadPrices(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Postgres) loadPrices(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[domain.ProductID]*models.Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		p.Prices = make(map[domain.StoreID]domain.Cents)
		byID[p.ID] = p
		ids = append(ids, uuid.UUID(p.ID))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, store_id, cents FROM prices WHERE product_id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID, storeID uuid.UUID
		var cents int64
		if err := rows.Scan(&productID, &storeID, &cents); err != nil {
			return fmt.Errorf("scan price: %w", err)
		}
		if p, ok := byID[domain.ProductID(productID)]; ok {
			p.Prices[domain.StoreID(storeID)] = domain.Cents(cents)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var id, regionID uuid.UUID
	var tags pq.StringArray
	if err := row.Scan(&id, &p.Name, &p.Brand, &p.Category, &p.Unit, &tags, &p.ImageRef, &regionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.ID = domain.ProductID(id)
	p.RegionID = domain.RegionID(regionID)
	p.Tags = tags
	return &p, nil
}
