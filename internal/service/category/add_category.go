package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Add creates a custom category with the next free id. Names are unique
// case-insensitively.
func (s *Service) Add(ctx context.Context, input Input) (*domain.Category, datasync.Outcome, error) {
	if err := input.Validate(); err != nil {
		return nil, datasync.Outcome{}, err
	}
	input = input.normalized()

	for attempt := 1; ; attempt++ {
		all, err := s.categories.Categories(ctx)
		if err != nil {
			return nil, datasync.Outcome{}, fmt.Errorf("list categories: %w", err)
		}
		if clash, ok := findByName(all, input.Name, 0); ok {
			return nil, datasync.Outcome{}, fmt.Errorf("category %q (id %d): %w", clash.Name, clash.ID, domain.ErrAlreadyExists)
		}

		cat := domain.Category{
			ID:        nextID(all),
			Name:      input.Name,
			Emoji:     input.Emoji,
			IsCustom:  true,
			CreatedAt: s.now(),
		}
		out, err := s.categories.CreateCategory(ctx, cat)
		if errors.Is(err, domain.ErrAlreadyExists) && attempt < createAttempts {
			continue
		}
		if err != nil {
			return nil, out, fmt.Errorf("create category: %w", err)
		}

		s.log.InfoContext(ctx, "category created",
			slog.Int("category_id", cat.ID),
			slog.String("name", cat.Name),
			slog.Bool("degraded", out.Degraded),
		)
		return &cat, out, nil
	}
}

func nextID(all []domain.Category) int {
	maxID := 0
	for _, c := range all {
		maxID = max(maxID, c.ID)
	}
	for _, c := range domain.BuiltinCategories() {
		maxID = max(maxID, c.ID)
	}
	return maxID + 1
}

// findByName returns a category named like name, ignoring exceptID.
func findByName(all []domain.Category, name string, exceptID int) (domain.Category, bool) {
	for _, c := range all {
		if c.ID != exceptID && domain.SameName(c.Name, name) {
			return c, true
		}
	}
	return domain.Category{}, false
}
