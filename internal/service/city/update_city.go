package city

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Rename changes the display name. The key stays stable so existing
// buttons keep working; a name whose slug belongs to another city is
// rejected.
func (s *Service) Rename(ctx context.Context, key, rawName string) (datasync.Outcome, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return datasync.Outcome{}, err
	}

	if slug := domain.Slugify(name); slug != key {
		_, err := s.cities.City(ctx, slug)
		switch {
		case err == nil:
			return datasync.Outcome{}, fmt.Errorf("city %s: %w", slug, domain.ErrAlreadyExists)
		case !errors.Is(err, domain.ErrNotFound):
			return datasync.Outcome{}, fmt.Errorf("look up city %s: %w", slug, err)
		}
	}

	ts := s.now()
	out, err := s.cities.ModifyCity(ctx, key, func(c *domain.City) error {
		c.Name = name
		c.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("rename city %s: %w", key, err)
	}

	logOutcome(ctx, s.log, "city renamed", key, out)
	return out, nil
}

// SetPhoto replaces the cover picture; an empty URL removes it.
func (s *Service) SetPhoto(ctx context.Context, key string, photo PhotoInput) (datasync.Outcome, error) {
	if err := photo.Validate(); err != nil {
		return datasync.Outcome{}, err
	}

	ts := s.now()
	out, err := s.cities.ModifyCity(ctx, key, func(c *domain.City) error {
		c.Photo = photo.photo()
		c.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("set photo of city %s: %w", key, err)
	}

	logOutcome(ctx, s.log, "city photo updated", key, out)
	return out, nil
}
