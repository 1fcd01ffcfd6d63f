// Package category implements the Category repository using PostgreSQL.
package category

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/cityguide-bot/internal/adapter/postgres"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

const table = "categories"

var columns = []string{"id", "name", "emoji", "is_custom", "created_at"}

// Repo provides category persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new category repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns a category by id. Returns domain.ErrNotFound if absent.
func (r *Repo) Get(ctx context.Context, id int) (*domain.Category, error) {
	stmt := postgres.Builder().Select(columns...).From(table).Where(squirrel.Eq{"id": id})

	row, err := postgres.QueryRow(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return nil, fmt.Errorf("build category query: %w", err)
	}
	c, err := scan(row)
	if err != nil {
		return nil, postgres.MapError(err, "category", strconv.Itoa(id))
	}
	return &c, nil
}

// List returns all categories ordered by id.
func (r *Repo) List(ctx context.Context) ([]domain.Category, error) {
	stmt := postgres.Builder().Select(columns...).From(table).OrderBy("id ASC")

	rows, err := postgres.Query(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return nil, postgres.MapError(err, "category", "*")
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, postgres.MapError(err, "category", "*")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "category", "*")
	}
	return out, nil
}

// Create inserts a category. A taken id or a case-insensitively taken name
// yields domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, c domain.Category) error {
	stmt := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(c.ID, c.Name, c.Emoji, c.IsCustom, c.CreatedAt)

	if _, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt); err != nil {
		return postgres.MapError(err, "category", strconv.Itoa(c.ID))
	}
	return nil
}

// Put upserts a category by id. created_at of an existing row is kept.
func (r *Repo) Put(ctx context.Context, c domain.Category) error {
	stmt := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(c.ID, c.Name, c.Emoji, c.IsCustom, c.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			emoji = EXCLUDED.emoji,
			is_custom = EXCLUDED.is_custom`)

	if _, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt); err != nil {
		return postgres.MapError(err, "category", strconv.Itoa(c.ID))
	}
	return nil
}

// Delete removes a category. Returns domain.ErrNotFound if absent.
func (r *Repo) Delete(ctx context.Context, id int) error {
	stmt := postgres.Builder().Delete(table).Where(squirrel.Eq{"id": id})

	tag, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return postgres.MapError(err, "category", strconv.Itoa(id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scan(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Emoji, &c.IsCustom, &c.CreatedAt)
	return c, err
}
