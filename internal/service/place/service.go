package place

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

type placeStore interface {
	City(ctx context.Context, key string) (*domain.City, error)
	PutPlace(ctx context.Context, cityKey string, p domain.Place) (datasync.Outcome, error)
	ModifyCity(ctx context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error)
	DeletePlace(ctx context.Context, cityKey, placeID string) (datasync.Outcome, error)
}

type categoryReader interface {
	Category(ctx context.Context, id int) (*domain.Category, error)
}

// Service manages the places of a city.
type Service struct {
	places     placeStore
	categories categoryReader
	log        *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewService creates a new Place service.
func NewService(log *slog.Logger, places placeStore, categories categoryReader) *Service {
	return &Service{
		places:     places,
		categories: categories,
		log:        log.With("service", "place"),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:      newID,
	}
}
