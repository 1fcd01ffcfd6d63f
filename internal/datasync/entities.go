package datasync

import (
	"context"
	"errors"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// City returns a city with its places.
func (c *Coordinator) City(ctx context.Context, key string) (*domain.City, error) {
	return readOne(ctx, c, cityLockKey(key),
		func(ctx context.Context, s Store) (*domain.City, error) { return s.GetCity(ctx, key) },
		func(ctx context.Context, p Store, v *domain.City) error { return p.CreateCity(ctx, v) },
	)
}

// Cities returns every city.
func (c *Coordinator) Cities(ctx context.Context) ([]*domain.City, error) {
	return readList(ctx, c, "cities",
		func(ctx context.Context, s Store) ([]*domain.City, error) { return s.ListCities(ctx) },
		func(v *domain.City) string { return cityLockKey(v.Key) },
		func(ctx context.Context, p Store, v *domain.City) error { return p.CreateCity(ctx, v) },
	)
}

func (c *Coordinator) Category(ctx context.Context, id int) (*domain.Category, error) {
	return readOne(ctx, c, categoryLockKey(id),
		func(ctx context.Context, s Store) (*domain.Category, error) { return s.GetCategory(ctx, id) },
		func(ctx context.Context, p Store, v *domain.Category) error { return p.CreateCategory(ctx, *v) },
	)
}

func (c *Coordinator) Categories(ctx context.Context) ([]domain.Category, error) {
	return readList(ctx, c, "categories",
		func(ctx context.Context, s Store) ([]domain.Category, error) { return s.ListCategories(ctx) },
		func(v domain.Category) string { return categoryLockKey(v.ID) },
		func(ctx context.Context, p Store, v domain.Category) error { return p.CreateCategory(ctx, v) },
	)
}

func (c *Coordinator) Ad(ctx context.Context, id string) (*domain.Ad, error) {
	return readOne(ctx, c, adLockKey(id),
		func(ctx context.Context, s Store) (*domain.Ad, error) { return s.GetAd(ctx, id) },
		func(ctx context.Context, p Store, v *domain.Ad) error { return p.CreateAd(ctx, *v) },
	)
}

func (c *Coordinator) Ads(ctx context.Context) ([]domain.Ad, error) {
	return readList(ctx, c, "ads",
		func(ctx context.Context, s Store) ([]domain.Ad, error) { return s.ListAds(ctx) },
		func(v domain.Ad) string { return adLockKey(v.ID) },
		func(ctx context.Context, p Store, v domain.Ad) error { return p.CreateAd(ctx, v) },
	)
}

// ---------------------------------------------------------------------------
// City and place writes
// ---------------------------------------------------------------------------

// CreateCity inserts a city; ErrAlreadyExists when the key is taken in the
// store that took the write. The mirror overwrites any stale fallback copy.
func (c *Coordinator) CreateCity(ctx context.Context, city *domain.City) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key:    cityLockKey(city.Key),
		Apply:  func(ctx context.Context, s Store) error { return s.CreateCity(ctx, city) },
		Mirror: func(ctx context.Context, f Store) error { return f.PutCity(ctx, city) },
	})
}

func (c *Coordinator) PutCity(ctx context.Context, city *domain.City) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key:   cityLockKey(city.Key),
		Apply: func(ctx context.Context, s Store) error { return s.PutCity(ctx, city) },
	})
}

// ModifyCity applies mutate to the current document of the store taking the
// write, under the city lock. The fallback mirror receives the
// authoritative result, not a second application of mutate. A city that so
// far exists only in the fallback is copied into the authoritative store
// first.
func (c *Coordinator) ModifyCity(ctx context.Context, key string, mutate func(*domain.City) error) (Outcome, error) {
	var result *domain.City
	return c.Write(ctx, WriteOp{
		Key: cityLockKey(key),
		Apply: func(ctx context.Context, s Store) error {
			city, err := s.GetCity(ctx, key)
			if c.backfilled(ctx, s, key, err) {
				city, err = s.GetCity(ctx, key)
			}
			if err != nil {
				return err
			}
			if err := mutate(city); err != nil {
				return err
			}
			if err := s.PutCity(ctx, city); err != nil {
				return err
			}
			result = city
			return nil
		},
		Mirror: func(ctx context.Context, f Store) error { return f.PutCity(ctx, result) },
	})
}

// DeleteCity removes a city. A city that so far exists only in the fallback
// is copied into the authoritative store and deleted there, so the mirror
// clears the fallback copy too.
func (c *Coordinator) DeleteCity(ctx context.Context, key string) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key: cityLockKey(key),
		Apply: func(ctx context.Context, s Store) error {
			err := s.DeleteCity(ctx, key)
			if c.backfilled(ctx, s, key, err) {
				return s.DeleteCity(ctx, key)
			}
			return err
		},
		Mirror: func(ctx context.Context, f Store) error { return ignoreNotFound(f.DeleteCity(ctx, key)) },
	})
}

// PutPlace overwrites or appends a place. A city that so far exists only in
// the fallback is copied into the authoritative store first. A fallback
// lacking the city receives the whole authoritative document.
func (c *Coordinator) PutPlace(ctx context.Context, cityKey string, p domain.Place) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key: cityLockKey(cityKey),
		Apply: func(ctx context.Context, s Store) error {
			err := s.PutPlace(ctx, cityKey, p)
			if c.backfilled(ctx, s, cityKey, err) {
				return s.PutPlace(ctx, cityKey, p)
			}
			return err
		},
		Mirror: func(ctx context.Context, f Store) error {
			err := f.PutPlace(ctx, cityKey, p)
			if errors.Is(err, domain.ErrNotFound) {
				return c.mirrorCity(ctx, cityKey)
			}
			return err
		},
	})
}

func (c *Coordinator) DeletePlace(ctx context.Context, cityKey, placeID string) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key: cityLockKey(cityKey),
		Apply: func(ctx context.Context, s Store) error {
			err := s.DeletePlace(ctx, cityKey, placeID)
			if c.backfilled(ctx, s, cityKey, err) {
				return s.DeletePlace(ctx, cityKey, placeID)
			}
			return err
		},
		Mirror: func(ctx context.Context, f Store) error {
			err := f.DeletePlace(ctx, cityKey, placeID)
			if errors.Is(err, domain.ErrNotFound) {
				return c.mirrorCity(ctx, cityKey)
			}
			return err
		},
	})
}

// backfilled reports whether err is the authoritative store missing a city
// that was then copied over from the fallback, so the write can be retried.
func (c *Coordinator) backfilled(ctx context.Context, s Store, key string, err error) bool {
	if s != c.primary || !errors.Is(err, domain.ErrNotFound) || !c.opts.Policy.BackfillOnGap {
		return false
	}
	return c.copyCityToPrimary(ctx, key)
}

// copyCityToPrimary inserts the fallback copy of a city if the
// authoritative store lacks it. Caller holds the city lock.
func (c *Coordinator) copyCityToPrimary(ctx context.Context, key string) bool {
	city, err := c.fallback.GetCity(ctx, key)
	if err != nil {
		return false
	}
	err = c.primary.CreateCity(ctx, city)
	return err == nil || errors.Is(err, domain.ErrAlreadyExists)
}

func (c *Coordinator) mirrorCity(ctx context.Context, key string) error {
	var city *domain.City
	err := c.onPrimary(ctx, func(ctx context.Context) error {
		var err error
		city, err = c.primary.GetCity(ctx, key)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return ignoreNotFound(c.fallback.DeleteCity(ctx, key))
	}
	if err != nil {
		return err
	}
	return c.fallback.PutCity(ctx, city)
}

// ---------------------------------------------------------------------------
// Category writes
// ---------------------------------------------------------------------------

func (c *Coordinator) CreateCategory(ctx context.Context, cat domain.Category) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key:    categoryLockKey(cat.ID),
		Apply:  func(ctx context.Context, s Store) error { return s.CreateCategory(ctx, cat) },
		Mirror: func(ctx context.Context, f Store) error { return f.PutCategory(ctx, cat) },
	})
}

func (c *Coordinator) PutCategory(ctx context.Context, cat domain.Category) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key:   categoryLockKey(cat.ID),
		Apply: func(ctx context.Context, s Store) error { return s.PutCategory(ctx, cat) },
	})
}

func (c *Coordinator) DeleteCategory(ctx context.Context, id int) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key:    categoryLockKey(id),
		Apply:  func(ctx context.Context, s Store) error { return s.DeleteCategory(ctx, id) },
		Mirror: func(ctx context.Context, f Store) error { return ignoreNotFound(f.DeleteCategory(ctx, id)) },
	})
}

// ---------------------------------------------------------------------------
// Ad writes
// ---------------------------------------------------------------------------

func (c *Coordinator) CreateAd(ctx context.Context, ad domain.Ad) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key:    adLockKey(ad.ID),
		Apply:  func(ctx context.Context, s Store) error { return s.CreateAd(ctx, ad) },
		Mirror: func(ctx context.Context, f Store) error { return f.PutAd(ctx, ad) },
	})
}

func (c *Coordinator) PutAd(ctx context.Context, ad domain.Ad) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key:   adLockKey(ad.ID),
		Apply: func(ctx context.Context, s Store) error { return s.PutAd(ctx, ad) },
	})
}

func (c *Coordinator) DeleteAd(ctx context.Context, id string) (Outcome, error) {
	return c.Write(ctx, WriteOp{
		Key:    adLockKey(id),
		Apply:  func(ctx context.Context, s Store) error { return s.DeleteAd(ctx, id) },
		Mirror: func(ctx context.Context, f Store) error { return ignoreNotFound(f.DeleteAd(ctx, id)) },
	})
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
