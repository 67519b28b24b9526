package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"basketwise/internal/directory/models"
	"basketwise/pkg/domain"
	"basketwise/pkg/platform/sentinel"
)

// Postgres persists the region/store directory in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed directory store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) UpsertRegion(ctx context.Context, region *models.Region) error {
	query := `
		INSERT INTO regions (id, name, slug, lat, lng, tier, waitlist_count, launch_readiness, legacy_units)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			tier = EXCLUDED.tier,
			waitlist_count = EXCLUDED.waitlist_count,
			launch_readiness = EXCLUDED.launch_readiness,
			legacy_units = EXCLUDED.legacy_units
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(region.ID), region.Name, region.Slug, region.Lat, region.Lng,
		string(region.Tier), region.WaitlistCount, region.LaunchReadiness,
		pq.Array(region.LegacyUnits),
	)
	if err != nil {
		return fmt.Errorf("upsert region: %w", err)
	}
	return nil
}

func (s *Postgres) UpsertStore(ctx context.Context, st *models.Store) error {
	query := `
		INSERT INTO stores (id, name, region_id, chain, is_premium, district, locality, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			region_id = EXCLUDED.region_id,
			chain = EXCLUDED.chain,
			is_premium = EXCLUDED.is_premium,
			district = EXCLUDED.district,
			locality = EXCLUDED.locality,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(st.ID), st.Name, uuid.UUID(st.RegionID), st.Chain, st.IsPremium,
		st.District, st.Locality, st.Lat, st.Lng,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("upsert store: %w", err)
	}
	return nil
}

func (s *Postgres) ListRegions(ctx context.Context) ([]*models.Region, error) {
	query := `
		SELECT id, name, slug, lat, lng, tier, waitlist_count, launch_readiness, legacy_units
		FROM regions
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var regions []*models.Region
	for rows.Next() {
		r, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

func (s *Postgres) FindRegionBySlug(ctx context.Context, slug string) (*models.Region, error) {
	query := `
		SELECT id, name, slug, lat, lng, tier, waitlist_count, launch_readiness, legacy_units
		FROM regions
		WHERE lower(slug) = lower($1)
	`
	row := s.db.QueryRowContext(ctx, query, slug)
	r, err := scanRegion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return r, err
}

func (s *Postgres) ListStoresByRegion(ctx context.Context, region *models.Region) ([]*models.Store, error) {
	query := `
		SELECT id, name, region_id, chain, is_premium, district, locality, lat, lng
		FROM stores
		WHERE region_id = $1 OR district ILIKE ANY($2)
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(region.ID), pq.Array(region.LegacyUnits))
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []*models.Store
	for rows.Next() {
		var st models.Store
		var id, regionID uuid.UUID
		if err := rows.Scan(&id, &st.Name, &regionID, &st.Chain, &st.IsPremium,
			&st.District, &st.Locality, &st.Lat, &st.Lng); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		st.ID = domain.StoreID(id)
		st.RegionID = domain.RegionID(regionID)
		stores = append(stores, &st)
	}
	return stores, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegion(row rowScanner) (*models.Region, error) {
	var r models.Region
	var id uuid.UUID
	var tier string
	var legacy pq.StringArray
	if err := row.Scan(&id, &r.Name, &r.Slug, &r.Lat, &r.Lng, &tier,
		&r.WaitlistCount, &r.LaunchReadiness, &legacy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan region: %w", err)
	}
	r.ID = domain.RegionID(id)
	r.Tier = models.RegionTier(tier)
	r.LegacyUnits = legacy
	return &r, nil
}
