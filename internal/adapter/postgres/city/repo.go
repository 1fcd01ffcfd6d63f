// Package city implements the City repository using PostgreSQL.
// A city row holds its places as a JSONB array, mirroring the document
// layout of the fallback store.
package city

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/cityguide-bot/internal/adapter/postgres"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

const table = "cities"

// documentColumn renders a row as the stored city document so both stores
// share one decoder.
const documentColumn = `jsonb_build_object(
	'name', name, 'photo', photo, 'places', places,
	'created_at', created_at, 'updated_at', updated_at)`

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo provides city persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	tx   txManager
	log  *slog.Logger
}

// New creates a new city repository.
func New(pool *pgxpool.Pool, tx txManager, log *slog.Logger) *Repo {
	return &Repo{pool: pool, tx: tx, log: log.With("adapter", "postgres.city")}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a city by key. Returns domain.ErrNotFound if absent.
func (r *Repo) Get(ctx context.Context, key string) (*domain.City, error) {
	return r.get(ctx, key, false)
}

func (r *Repo) get(ctx context.Context, key string, forUpdate bool) (*domain.City, error) {
	stmt := postgres.Builder().
		Select(documentColumn).
		From(table).
		Where(squirrel.Eq{"key": key})
	if forUpdate {
		stmt = stmt.Suffix("FOR UPDATE")
	}

	row, err := postgres.QueryRow(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return nil, fmt.Errorf("build city query: %w", err)
	}

	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return nil, postgres.MapError(err, "city", key)
	}
	return r.decode(ctx, key, doc)
}

// List returns all cities ordered by name.
func (r *Repo) List(ctx context.Context) ([]*domain.City, error) {
	stmt := postgres.Builder().
		Select("key", documentColumn).
		From(table).
		OrderBy("name ASC")

	rows, err := postgres.Query(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return nil, postgres.MapError(err, "city", "*")
	}
	defer rows.Close()

	var cities []*domain.City
	for rows.Next() {
		var (
			key string
			doc []byte
		)
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, postgres.MapError(err, "city", "*")
		}
		c, err := r.decode(ctx, key, doc)
		if err != nil {
			r.log.WarnContext(ctx, "skip unreadable city", slog.String("key", key), slog.String("error", err.Error()))
			continue
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "city", "*")
	}
	return cities, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a city. Returns domain.ErrAlreadyExists if the key is taken.
func (r *Repo) Create(ctx context.Context, c *domain.City) error {
	photo, places, err := encodeParts(c)
	if err != nil {
		return err
	}

	stmt := postgres.Builder().
		Insert(table).
		Columns("key", "name", "photo", "places", "created_at", "updated_at").
		Values(c.Key, c.Name, photo, places, c.CreatedAt, c.UpdatedAt).
		Suffix("ON CONFLICT (key) DO NOTHING")

	tag, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return postgres.MapError(err, "city", c.Key)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("city %s: %w", c.Key, domain.ErrAlreadyExists)
	}
	return nil
}

// Put upserts the whole city document. created_at of an existing row is kept.
func (r *Repo) Put(ctx context.Context, c *domain.City) error {
	photo, places, err := encodeParts(c)
	if err != nil {
		return err
	}

	stmt := postgres.Builder().
		Insert(table).
		Columns("key", "name", "photo", "places", "created_at", "updated_at").
		Values(c.Key, c.Name, photo, places, c.CreatedAt, c.UpdatedAt).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			photo = EXCLUDED.photo,
			places = EXCLUDED.places,
			updated_at = EXCLUDED.updated_at`)

	if _, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt); err != nil {
		return postgres.MapError(err, "city", c.Key)
	}
	return nil
}

// Delete removes a city with all its places. Returns domain.ErrNotFound if absent.
func (r *Repo) Delete(ctx context.Context, key string) error {
	stmt := postgres.Builder().Delete(table).Where(squirrel.Eq{"key": key})

	tag, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt)
	if err != nil {
		return postgres.MapError(err, "city", key)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("city %s: %w", key, domain.ErrNotFound)
	}
	return nil
}

// PutPlace overwrites the place with the same id inside the city, or
// appends it. The city row is locked for the read-modify-write.
func (r *Repo) PutPlace(ctx context.Context, cityKey string, p domain.Place) error {
	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := r.get(ctx, cityKey, true)
		if err != nil {
			return err
		}
		c.UpsertPlace(p)
		return r.updatePlaces(ctx, c, p.UpdatedAt)
	})
}

// DeletePlace removes a place from its city. Returns domain.ErrNotFound if
// either is absent.
func (r *Repo) DeletePlace(ctx context.Context, cityKey, placeID string) error {
	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := r.get(ctx, cityKey, true)
		if err != nil {
			return err
		}
		if !c.RemovePlace(placeID) {
			return fmt.Errorf("place %s: %w", placeID, domain.ErrNotFound)
		}
		return r.updatePlaces(ctx, c, time.Now().UTC())
	})
}

func (r *Repo) updatePlaces(ctx context.Context, c *domain.City, at time.Time) error {
	places, err := domain.EncodePlaces(c.Places)
	if err != nil {
		return fmt.Errorf("encode places of %s: %w", c.Key, err)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	stmt := postgres.Builder().
		Update(table).
		Set("places", places).
		Set("updated_at", at).
		Where(squirrel.Eq{"key": c.Key})

	if _, err := postgres.Exec(ctx, postgres.QuerierFromCtx(ctx, r.pool), stmt); err != nil {
		return postgres.MapError(err, "city", c.Key)
	}
	return nil
}

func (r *Repo) decode(ctx context.Context, key string, doc []byte) (*domain.City, error) {
	c, issues, err := domain.DecodeCity(key, doc)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		r.log.WarnContext(ctx, "malformed city data", slog.String("key", key), slog.String("issue", issue.Error()))
	}
	return c, nil
}

func encodeParts(c *domain.City) (photo, places []byte, err error) {
	if c.Photo != nil {
		if photo, err = json.Marshal(c.Photo); err != nil {
			return nil, nil, fmt.Errorf("encode photo of %s: %w", c.Key, err)
		}
	}
	if places, err = domain.EncodePlaces(c.Places); err != nil {
		return nil, nil, fmt.Errorf("encode places of %s: %w", c.Key, err)
	}
	return photo, places, nil
}
