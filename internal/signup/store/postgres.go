package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"basketwise/internal/signup/models"
	"basketwise/pkg/domain"
	"basketwise/pkg/platform/sentinel"
)

// Postgres persists waitlist signups in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed signup store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Insert(ctx context.Context, signup *models.Signup) error {
	query := `
		INSERT INTO signups (id, name, email, region_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(signup.ID), signup.Name, signup.Email,
		uuid.UUID(signup.RegionID), signup.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert signup: %w", err)
	}
	return nil
}

func (s *Postgres) CountByRegion(ctx context.Context, regionID domain.RegionID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM signups WHERE region_id = $1`,
		uuid.UUID(regionID)).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count signups: %w", err)
	}
	return count, nil
}
