package place

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
)

// Delete removes a place from its city.
func (s *Service) Delete(ctx context.Context, cityKey, placeID string) (datasync.Outcome, error) {
	out, err := s.places.DeletePlace(ctx, cityKey, placeID)
	if err != nil {
		return out, fmt.Errorf("delete place %s/%s: %w", cityKey, placeID, err)
	}

	s.log.InfoContext(ctx, "place deleted",
		slog.String("city", cityKey),
		slog.String("place_id", placeID),
		slog.Bool("degraded", out.Degraded),
	)
	return out, nil
}
