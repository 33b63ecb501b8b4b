package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/locotek/presskit/internal/models"
)

// Postgres inserts submissions into the presskit_requests table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store on an open pool. The schema comes from db.Migrate.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const insertSubmissionSQL = `
	INSERT INTO presskit_requests (id, email, created_at, user_agent, ip, referer, language, country, city)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Append inserts rec as one row.
func (p *Postgres) Append(ctx context.Context, rec models.Submission) error {
	_, err := p.pool.Exec(ctx, insertSubmissionSQL,
		rec.ID,
		rec.Email,
		rec.Timestamp,
		nullable(rec.UserAgent),
		nullable(rec.IP),
		nullable(rec.Referer),
		nullable(rec.Language),
		nullable(rec.Country),
		nullable(rec.City),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

const listSubmissionsSQL = `
	SELECT id, email, created_at,
	       COALESCE(user_agent, ''), COALESCE(ip, ''), COALESCE(referer, ''),
	       COALESCE(language, ''), COALESCE(country, ''), COALESCE(city, '')
	FROM presskit_requests
	ORDER BY created_at ASC, id ASC
`

// List returns every row ordered by receipt time.
func (p *Postgres) List(ctx context.Context) ([]models.Submission, error) {
	rows, err := p.pool.Query(ctx, listSubmissionsSQL)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Submission, error) {
		var s models.Submission
		err := row.Scan(&s.ID, &s.Email, &s.Timestamp, &s.UserAgent, &s.IP, &s.Referer, &s.Language, &s.Country, &s.City)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan submissions: %w", err)
	}
	return records, nil
}

// nullable stores empty optional fields as NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
