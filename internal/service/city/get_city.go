package city

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Get returns a city with its places.
func (s *Service) Get(ctx context.Context, key string) (*domain.City, error) {
	c, err := s.cities.City(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get city %s: %w", key, err)
	}
	return c, nil
}

// List returns all cities sorted by name, case-insensitively.
func (s *Service) List(ctx context.Context) ([]*domain.City, error) {
	cities, err := s.cities.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	sort.SliceStable(cities, func(i, j int) bool {
		a, b := strings.ToLower(cities[i].Name), strings.ToLower(cities[j].Name)
		if a != b {
			return a < b
		}
		return cities[i].Key < cities[j].Key
	})
	return cities, nil
}
