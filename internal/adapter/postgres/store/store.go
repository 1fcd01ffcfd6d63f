// Package store assembles the PostgreSQL repositories into the
// authoritative store used by the sync coordinator.
package store

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/cityguide-bot/internal/adapter/postgres"
	"github.com/heartmarshall/cityguide-bot/internal/adapter/postgres/ad"
	"github.com/heartmarshall/cityguide-bot/internal/adapter/postgres/category"
	"github.com/heartmarshall/cityguide-bot/internal/adapter/postgres/city"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Store is the authoritative store.
type Store struct {
	pool       *pgxpool.Pool
	cities     *city.Repo
	categories *category.Repo
	ads        *ad.Repo
}

// New wires the repositories over one pool.
func New(pool *pgxpool.Pool, log *slog.Logger) *Store {
	txm := postgres.NewTxManager(pool)
	return &Store{
		pool:       pool,
		cities:     city.New(pool, txm, log),
		categories: category.New(pool),
		ads:        ad.New(pool),
	}
}

func (s *Store) Name() string { return postgres.StoreName }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return domain.Unavailable(postgres.StoreName, err)
	}
	return nil
}

func (s *Store) GetCity(ctx context.Context, key string) (*domain.City, error) {
	return s.cities.Get(ctx, key)
}

func (s *Store) ListCities(ctx context.Context) ([]*domain.City, error) {
	return s.cities.List(ctx)
}

func (s *Store) CreateCity(ctx context.Context, c *domain.City) error {
	return s.cities.Create(ctx, c)
}

func (s *Store) PutCity(ctx context.Context, c *domain.City) error {
	return s.cities.Put(ctx, c)
}

func (s *Store) DeleteCity(ctx context.Context, key string) error {
	return s.cities.Delete(ctx, key)
}

func (s *Store) PutPlace(ctx context.Context, cityKey string, p domain.Place) error {
	return s.cities.PutPlace(ctx, cityKey, p)
}

func (s *Store) DeletePlace(ctx context.Context, cityKey, placeID string) error {
	return s.cities.DeletePlace(ctx, cityKey, placeID)
}

func (s *Store) GetCategory(ctx context.Context, id int) (*domain.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) error {
	return s.categories.Create(ctx, c)
}

func (s *Store) PutCategory(ctx context.Context, c domain.Category) error {
	return s.categories.Put(ctx, c)
}

func (s *Store) DeleteCategory(ctx context.Context, id int) error {
	return s.categories.Delete(ctx, id)
}

func (s *Store) GetAd(ctx context.Context, id string) (*domain.Ad, error) {
	return s.ads.Get(ctx, id)
}

func (s *Store) ListAds(ctx context.Context) ([]domain.Ad, error) {
	return s.ads.List(ctx)
}

func (s *Store) CreateAd(ctx context.Context, a domain.Ad) error {
	return s.ads.Create(ctx, a)
}

func (s *Store) PutAd(ctx context.Context, a domain.Ad) error {
	return s.ads.Put(ctx, a)
}

func (s *Store) DeleteAd(ctx context.Context, id string) error {
	return s.ads.Delete(ctx, id)
}
