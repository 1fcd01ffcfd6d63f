package ad

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// List returns all ads, oldest first.
func (s *Service) List(ctx context.Context) ([]domain.Ad, error) {
	ads, err := s.ads.Ads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	sort.SliceStable(ads, func(i, j int) bool { return ads[i].CreatedAt.Before(ads[j].CreatedAt) })
	return ads, nil
}

// Next picks the least viewed ad, the oldest on ties, and counts a view.
// The view count is best effort; a failed increment still returns the ad.
// ErrNotFound means there are no ads.
func (s *Service) Next(ctx context.Context) (*domain.Ad, error) {
	ads, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, fmt.Errorf("next ad: %w", domain.ErrNotFound)
	}

	pick := ads[0]
	for _, a := range ads[1:] {
		if a.Views < pick.Views {
			pick = a
		}
	}

	pick.Views++
	if _, err := s.ads.PutAd(ctx, pick); err != nil {
		s.log.WarnContext(ctx, "ad view not counted",
			slog.String("ad_id", pick.ID),
			slog.String("error", err.Error()),
		)
	}
	return &pick, nil
}
