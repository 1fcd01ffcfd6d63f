package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Update renames a custom category and rewrites the category fields of
// every place that references it. A place that fails to update is logged
// and counted; the others still go through.
func (s *Service) Update(ctx context.Context, id int, input Input) (*domain.Category, FanOutResult, error) {
	if err := input.Validate(); err != nil {
		return nil, FanOutResult{}, err
	}
	input = input.normalized()

	cat, err := s.categories.Category(ctx, id)
	if err != nil {
		return nil, FanOutResult{}, fmt.Errorf("get category %d: %w", id, err)
	}
	if !cat.IsCustom {
		return nil, FanOutResult{}, fmt.Errorf("builtin category %d: %w", id, domain.ErrForbidden)
	}

	all, err := s.categories.Categories(ctx)
	if err != nil {
		return nil, FanOutResult{}, fmt.Errorf("list categories: %w", err)
	}
	if clash, ok := findByName(all, input.Name, id); ok {
		return nil, FanOutResult{}, fmt.Errorf("category %q (id %d): %w", clash.Name, clash.ID, domain.ErrAlreadyExists)
	}

	updated := *cat
	updated.Name = input.Name
	updated.Emoji = input.Emoji
	out, err := s.categories.PutCategory(ctx, updated)
	if err != nil {
		return nil, FanOutResult{}, fmt.Errorf("put category %d: %w", id, err)
	}

	res, err := s.fanOut(ctx, id, updated)
	res.Degraded = res.Degraded || out.Degraded
	if err != nil {
		return &updated, res, err
	}

	s.log.InfoContext(ctx, "category updated",
		slog.Int("category_id", id),
		slog.String("name", updated.Name),
		slog.Int("places_updated", res.Updated),
		slog.Int("places_failed", res.Failed),
	)
	return &updated, res, nil
}

// fanOut points every place referencing fromID at target. Each city is
// rewritten under its own lock from its current document, so place edits
// that land between listing and rewriting are kept.
func (s *Service) fanOut(ctx context.Context, fromID int, target domain.Category) (FanOutResult, error) {
	var res FanOutResult

	cities, err := s.places.Cities(ctx)
	if err != nil {
		return res, fmt.Errorf("fan out category %d: list cities: %w", fromID, err)
	}

	for _, city := range cities {
		if countCategory(city, fromID) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		var moved int
		out, err := s.places.ModifyCity(ctx, city.Key, func(c *domain.City) error {
			moved = 0
			now := s.now()
			for i := range c.Places {
				if c.Places[i].CategoryID != fromID {
					continue
				}
				c.Places[i].SetCategory(target)
				c.Places[i].UpdatedAt = now
				moved++
			}
			return nil
		})
		if err != nil {
			res.Failed += countCategory(city, fromID)
			s.log.WarnContext(ctx, "fan-out city update failed",
				slog.String("city", city.Key),
				slog.Int("category_id", fromID),
				slog.String("error", err.Error()),
			)
			continue
		}
		res.Updated += moved
		res.Degraded = res.Degraded || out.Degraded
	}
	return res, nil
}

func countCategory(c *domain.City, id int) int {
	n := 0
	for _, p := range c.Places {
		if p.CategoryID == id {
			n++
		}
	}
	return n
}
