package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// EnsureBuiltins inserts the built-in categories that are missing and
// returns how many were created. Existing ones are left alone.
func (s *Service) EnsureBuiltins(ctx context.Context) (int, error) {
	created := 0
	for _, cat := range domain.BuiltinCategories() {
		cat.CreatedAt = s.now()
		_, err := s.categories.CreateCategory(ctx, cat)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrAlreadyExists):
		default:
			return created, fmt.Errorf("create builtin category %d: %w", cat.ID, err)
		}
	}
	if created > 0 {
		s.log.InfoContext(ctx, "builtin categories created", slog.Int("count", created))
	}
	return created, nil
}
