package datasync

import (
	"context"
	"errors"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// ErrDisabled is the cause reported by a store that was not configured.
var ErrDisabled = errors.New("store is not configured")

// Disabled returns a Store that answers every call as unavailable. It
// stands in for the authoritative store when no database is configured, so
// the coordinator runs in permanent degraded mode.
func Disabled(name string) Store {
	return disabledStore{err: domain.Unavailable(name, ErrDisabled), name: name}
}

type disabledStore struct {
	name string
	err  error
}

func (d disabledStore) Name() string { return d.name }
func (d disabledStore) Ping(context.Context) error { return d.err }

func (d disabledStore) GetCity(context.Context, string) (*domain.City, error) { return nil, d.err }
func (d disabledStore) ListCities(context.Context) ([]*domain.City, error) { return nil, d.err }
func (d disabledStore) CreateCity(context.Context, *domain.City) error { return d.err }
func (d disabledStore) PutCity(context.Context, *domain.City) error { return d.err }
func (d disabledStore) DeleteCity(context.Context, string) error { return d.err }
func (d disabledStore) PutPlace(context.Context, string, domain.Place) error { return d.err }
func (d disabledStore) DeletePlace(context.Context, string, string) error { return d.err }

func (d disabledStore) GetCategory(context.Context, int) (*domain.Category, error) { return nil, d.err }
func (d disabledStore) ListCategories(context.Context) ([]domain.Category, error) { return nil, d.err }
func (d disabledStore) CreateCategory(context.Context, domain.Category) error { return d.err }
func (d disabledStore) PutCategory(context.Context, domain.Category) error { return d.err }
func (d disabledStore) DeleteCategory(context.Context, int) error { return d.err }

func (d disabledStore) GetAd(context.Context, string) (*domain.Ad, error) { return nil, d.err }
func (d disabledStore) ListAds(context.Context) ([]domain.Ad, error) { return nil, d.err }
func (d disabledStore) CreateAd(context.Context, domain.Ad) error { return d.err }
func (d disabledStore) PutAd(context.Context, domain.Ad) error { return d.err }
func (d disabledStore) DeleteAd(context.Context, string) error { return d.err }
