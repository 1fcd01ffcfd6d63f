package datasync

import (
	"context"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Store is one persistence backend. Both the authoritative database and the
// local fallback files implement it with the same semantics:
//   - Get* return domain.ErrNotFound when the entity is absent
//   - Create* return domain.ErrAlreadyExists instead of overwriting
//   - Put* are idempotent upserts keyed by the entity id
//   - transport failures wrap domain.ErrStoreUnavailable
type Store interface {
	Name() string
	Ping(ctx context.Context) error

	GetCity(ctx context.Context, key string) (*domain.City, error)
	ListCities(ctx context.Context) ([]*domain.City, error)
	CreateCity(ctx context.Context, c *domain.City) error
	PutCity(ctx context.Context, c *domain.City) error
	DeleteCity(ctx context.Context, key string) error
	PutPlace(ctx context.Context, cityKey string, p domain.Place) error
	DeletePlace(ctx context.Context, cityKey, placeID string) error

	GetCategory(ctx context.Context, id int) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) error
	PutCategory(ctx context.Context, c domain.Category) error
	DeleteCategory(ctx context.Context, id int) error

	GetAd(ctx context.Context, id string) (*domain.Ad, error)
	ListAds(ctx context.Context) ([]domain.Ad, error)
	CreateAd(ctx context.Context, a domain.Ad) error
	PutAd(ctx context.Context, a domain.Ad) error
	DeleteAd(ctx context.Context, id string) error
}
