package city

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

type cityStore interface {
	City(ctx context.Context, key string) (*domain.City, error)
	Cities(ctx context.Context) ([]*domain.City, error)
	CreateCity(ctx context.Context, city *domain.City) (datasync.Outcome, error)
	ModifyCity(ctx context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error)
	DeleteCity(ctx context.Context, key string) (datasync.Outcome, error)
}

// MaxNameLength is the longest city name accepted, in characters.
const MaxNameLength = 64

// Service manages cities.
type Service struct {
	cities cityStore
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a new City service.
func NewService(log *slog.Logger, cities cityStore) *Service {
	return &Service{
		cities: cities,
		log:    log.With("service", "city"),
		now:    now,
	}
}

// now is microsecond precision so both stores round-trip the same value.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func logOutcome(ctx context.Context, log *slog.Logger, msg, key string, out datasync.Outcome) {
	log.InfoContext(ctx, msg,
		slog.String("city", key),
		slog.Bool("degraded", out.Degraded),
	)
}
