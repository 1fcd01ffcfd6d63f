package city

import (
	"context"
	"fmt"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
)

// Delete removes a city together with its places.
func (s *Service) Delete(ctx context.Context, key string) (datasync.Outcome, error) {
	out, err := s.cities.DeleteCity(ctx, key)
	if err != nil {
		return out, fmt.Errorf("delete city %s: %w", key, err)
	}

	logOutcome(ctx, s.log, "city deleted", key, out)
	return out, nil
}
