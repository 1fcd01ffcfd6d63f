package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Delete moves the places of a custom category to the fallback category
// and then removes it. Without a fallback category nothing is changed and
// ErrConflict is returned; if some places could not be moved the category
// is kept so no place is left pointing at a missing id.
func (s *Service) Delete(ctx context.Context, id int) (FanOutResult, error) {
	cat, err := s.categories.Category(ctx, id)
	if err != nil {
		return FanOutResult{}, fmt.Errorf("get category %d: %w", id, err)
	}
	if !cat.IsCustom {
		return FanOutResult{}, fmt.Errorf("builtin category %d: %w", id, domain.ErrForbidden)
	}

	all, err := s.categories.Categories(ctx)
	if err != nil {
		return FanOutResult{}, fmt.Errorf("list categories: %w", err)
	}
	fallback, ok := findByName(all, domain.FallbackCategoryName, id)
	if !ok {
		return FanOutResult{}, fmt.Errorf("no %q category to move places to: %w", domain.FallbackCategoryName, domain.ErrConflict)
	}

	res, err := s.fanOut(ctx, id, fallback)
	if err != nil {
		return res, err
	}
	if res.Failed > 0 {
		return res, fmt.Errorf("%d places still reference category %d: %w", res.Failed, id, domain.ErrConflict)
	}

	out, err := s.categories.DeleteCategory(ctx, id)
	if err != nil {
		return res, fmt.Errorf("delete category %d: %w", id, err)
	}
	res.Degraded = res.Degraded || out.Degraded

	s.log.InfoContext(ctx, "category deleted",
		slog.Int("category_id", id),
		slog.Int("moved_to", fallback.ID),
		slog.Int("places_moved", res.Updated),
	)
	return res, nil
}
