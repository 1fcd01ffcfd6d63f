package place

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Update applies edit to the stored place under the city lock, so fields the
// edit does not touch keep their current values. id and created_at cannot be
// changed. The category fields follow the stored place unless edit moved it
// to another category, in which case they are read from the category.
func (s *Service) Update(ctx context.Context, cityKey, placeID string, edit func(*domain.Place) error) (*domain.Place, datasync.Outcome, error) {
	var saved domain.Place
	out, err := s.places.ModifyCity(ctx, cityKey, func(city *domain.City) error {
		current, ok := city.Place(placeID)
		if !ok {
			return fmt.Errorf("place %s/%s: %w", cityKey, placeID, domain.ErrNotFound)
		}

		p := current.Clone()
		if err := edit(&p); err != nil {
			return err
		}
		if err := normalize(&p); err != nil {
			return err
		}

		p.ID = current.ID
		p.CreatedAt = current.CreatedAt
		if p.CategoryID == current.CategoryID {
			p.CategoryName, p.CategoryEmoji = current.CategoryName, current.CategoryEmoji
		} else {
			cat, err := s.categories.Category(ctx, p.CategoryID)
			if err != nil {
				return fmt.Errorf("get category %d: %w", p.CategoryID, err)
			}
			p.SetCategory(*cat)
		}
		p.UpdatedAt = s.now()

		city.UpsertPlace(p)
		saved = p
		return nil
	})
	if err != nil {
		return nil, out, fmt.Errorf("update place: %w", err)
	}

	s.log.InfoContext(ctx, "place updated",
		slog.String("city", cityKey),
		slog.String("place_id", placeID),
		slog.Bool("degraded", out.Degraded),
	)
	return &saved, out, nil
}
