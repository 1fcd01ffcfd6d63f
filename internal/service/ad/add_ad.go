package ad

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

func (s *Service) Add(ctx context.Context, input Input) (*domain.Ad, datasync.Outcome, error) {
	if err := input.Validate(); err != nil {
		return nil, datasync.Outcome{}, err
	}
	text, _ := ValidateText(input.Text)

	ad := domain.Ad{
		ID:        s.newID(),
		Text:      text,
		URL:       domain.NormalizeURL(input.URL),
		CreatedAt: s.now(),
	}
	out, err := s.ads.CreateAd(ctx, ad)
	if err != nil {
		return nil, out, fmt.Errorf("create ad: %w", err)
	}

	s.log.InfoContext(ctx, "ad created", slog.String("ad_id", ad.ID), slog.Bool("degraded", out.Degraded))
	return &ad, out, nil
}

func (s *Service) Delete(ctx context.Context, id string) (datasync.Outcome, error) {
	out, err := s.ads.DeleteAd(ctx, id)
	if err != nil {
		return out, fmt.Errorf("delete ad %s: %w", id, err)
	}

	s.log.InfoContext(ctx, "ad deleted", slog.String("ad_id", id), slog.Bool("degraded", out.Degraded))
	return out, nil
}
