package city

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Add creates a city keyed by the slug of its name. Adding a name whose
// slug is taken returns ErrAlreadyExists without writing.
func (s *Service) Add(ctx context.Context, rawName string, photo PhotoInput) (*domain.City, datasync.Outcome, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return nil, datasync.Outcome{}, err
	}
	if err := photo.Validate(); err != nil {
		return nil, datasync.Outcome{}, err
	}

	key := domain.Slugify(name)
	_, err = s.cities.City(ctx, key)
	switch {
	case err == nil:
		return nil, datasync.Outcome{}, fmt.Errorf("city %s: %w", key, domain.ErrAlreadyExists)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, datasync.Outcome{}, fmt.Errorf("look up city %s: %w", key, err)
	}

	ts := s.now()
	city := &domain.City{
		Key:       key,
		Name:      name,
		Photo:     photo.photo(),
		Places:    []domain.Place{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	out, err := s.cities.CreateCity(ctx, city)
	if err != nil {
		return nil, out, fmt.Errorf("create city %s: %w", key, err)
	}

	logOutcome(ctx, s.log, "city created", key, out)
	return city, out, nil
}
