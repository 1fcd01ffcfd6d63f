package place

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Get returns one place of a city.
func (s *Service) Get(ctx context.Context, cityKey, placeID string) (*domain.Place, error) {
	city, err := s.places.City(ctx, cityKey)
	if err != nil {
		return nil, fmt.Errorf("get city %s: %w", cityKey, err)
	}
	p, ok := city.Place(placeID)
	if !ok {
		return nil, fmt.Errorf("place %s/%s: %w", cityKey, placeID, domain.ErrNotFound)
	}
	out := p.Clone()
	out.CityKey = cityKey
	return &out, nil
}

// List returns the places of a city sorted by name.
func (s *Service) List(ctx context.Context, cityKey string) ([]domain.Place, error) {
	return s.filter(ctx, cityKey, func(domain.Place) bool { return true })
}

// ListByCategory returns the places of a city in one category.
func (s *Service) ListByCategory(ctx context.Context, cityKey string, categoryID int) ([]domain.Place, error) {
	return s.filter(ctx, cityKey, func(p domain.Place) bool { return p.CategoryID == categoryID })
}

// CategoryIDs returns the ids of the categories used in a city, in order
// of first appearance by place name.
func (s *Service) CategoryIDs(ctx context.Context, cityKey string) ([]int, error) {
	places, err := s.List(ctx, cityKey)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var ids []int
	for _, p := range places {
		if !seen[p.CategoryID] {
			seen[p.CategoryID] = true
			ids = append(ids, p.CategoryID)
		}
	}
	return ids, nil
}

func (s *Service) filter(ctx context.Context, cityKey string, keep func(domain.Place) bool) ([]domain.Place, error) {
	city, err := s.places.City(ctx, cityKey)
	if err != nil {
		return nil, fmt.Errorf("get city %s: %w", cityKey, err)
	}
	places := make([]domain.Place, 0, len(city.Places))
	for _, p := range city.Places {
		if keep(p) {
			p.CityKey = cityKey
			places = append(places, p)
		}
	}
	sort.SliceStable(places, func(i, j int) bool {
		return strings.ToLower(places[i].Name) < strings.ToLower(places[j].Name)
	})
	return places, nil
}
