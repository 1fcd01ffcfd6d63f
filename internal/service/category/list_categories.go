package category

import (
	"context"
	"fmt"
	"sort"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

func (s *Service) Get(ctx context.Context, id int) (*domain.Category, error) {
	cat, err := s.categories.Category(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return cat, nil
}

// List returns all categories ordered by id.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	all, err := s.categories.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// Custom returns the categories that may be edited or deleted.
func (s *Service) Custom(ctx context.Context) ([]domain.Category, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, c := range all {
		if c.IsCustom {
			out = append(out, c)
		}
	}
	return out, nil
}
