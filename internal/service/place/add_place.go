package place

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

func newID() string { return uuid.NewString() }

// Add stores a new place in the city. The draft's id and timestamps are
// assigned here and its category fields are copied from the category.
func (s *Service) Add(ctx context.Context, cityKey string, draft domain.Place) (*domain.Place, datasync.Outcome, error) {
	p := draft.Clone()
	if err := normalize(&p); err != nil {
		return nil, datasync.Outcome{}, err
	}

	if _, err := s.places.City(ctx, cityKey); err != nil {
		return nil, datasync.Outcome{}, fmt.Errorf("get city %s: %w", cityKey, err)
	}
	cat, err := s.categories.Category(ctx, p.CategoryID)
	if err != nil {
		return nil, datasync.Outcome{}, fmt.Errorf("get category %d: %w", p.CategoryID, err)
	}

	ts := s.now()
	p.ID = s.newID()
	p.CityKey = cityKey
	p.SetCategory(*cat)
	p.CreatedAt = ts
	p.UpdatedAt = ts

	out, err := s.places.PutPlace(ctx, cityKey, p)
	if err != nil {
		return nil, out, fmt.Errorf("put place: %w", err)
	}

	s.log.InfoContext(ctx, "place created",
		slog.String("city", cityKey),
		slog.String("place_id", p.ID),
		slog.Bool("degraded", out.Degraded),
	)
	return &p, out, nil
}
