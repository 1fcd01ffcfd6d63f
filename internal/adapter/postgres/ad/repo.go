// Package ad implements the Ad repository using PostgreSQL.
package ad

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/cityguide-bot/internal/adapter/postgres"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

const table = "ads"

var columns = []string{"id", "text", "url", "views", "created_at"}

// Repo provides ad persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new ad repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns an ad by id. Returns domain.ErrNotFound if absent.
func (r *Repo) Get(ctx context.Context, id string) (*domain.Ad, error) {
	stmt := postgres.Builder().Select(columns...).From(table).Where(squirrel.Eq{"id": id})

	row, err := postgres.QueryRow(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return nil, fmt.Errorf("build ad query: %w", err)
	}
	a, err := scan(row)
	if err != nil {
		return nil, postgres.MapError(err, "ad", id)
	}
	return &a, nil
}

// List returns all ads, oldest first.
func (r *Repo) List(ctx context.Context) ([]domain.Ad, error) {
	stmt := postgres.Builder().Select(columns...).From(table).OrderBy("created_at ASC", "id ASC")

	rows, err := postgres.Query(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return nil, postgres.MapError(err, "ad", "*")
	}
	defer rows.Close()

	var out []domain.Ad
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, postgres.MapError(err, "ad", "*")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "ad", "*")
	}
	return out, nil
}

// Create inserts an ad. Returns domain.ErrAlreadyExists if the id is taken.
func (r *Repo) Create(ctx context.Context, a domain.Ad) error {
	stmt := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(a.ID, a.Text, a.URL, a.Views, a.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING")

	tag, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return postgres.MapError(err, "ad", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ad %s: %w", a.ID, domain.ErrAlreadyExists)
	}
	return nil
}

// Put upserts an ad by id.
func (r *Repo) Put(ctx context.Context, a domain.Ad) error {
	stmt := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(a.ID, a.Text, a.URL, a.Views, a.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			url = EXCLUDED.url,
			views = EXCLUDED.views`)

	if _, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt); err != nil {
		return postgres.MapError(err, "ad", a.ID)
	}
	return nil
}

// Delete removes an ad. Returns domain.ErrNotFound if absent.
func (r *Repo) Delete(ctx context.Context, id string) error {
	stmt := postgres.Builder().Delete(table).Where(squirrel.Eq{"id": id})

	tag, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return postgres.MapError(err, "ad", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ad %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scan(row pgx.Row) (domain.Ad, error) {
	var a domain.Ad
	err := row.Scan(&a.ID, &a.Text, &a.URL, &a.Views, &a.CreatedAt)
	return a, err
}
